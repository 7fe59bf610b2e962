// Package events carries change and permission signals between the services
// and the live views that render them.
package events

import (
	"context"
	"time"
)

// Topic names a class of change.
type Topic string

const (
	ApplicationsChanged Topic = "applications.changed"
	ResumesChanged      Topic = "resumes.changed"
	UsersChanged        Topic = "users.changed"
	PermissionsChanged  Topic = "permissions.changed"
)

// Event is a change notification. UserID is the owner of the changed data,
// or the subject of a permission change. Subscribers re-read the source of
// truth; events carry no payload beyond identifiers.
type Event struct {
	Topic  Topic     `json:"topic"`
	UserID string    `json:"userId,omitempty"`
	ID     string    `json:"id,omitempty"`
	At     time.Time `json:"at"`
}

// Broker publishes events and fans them out to subscribers.
type Broker interface {
	Publish(ctx context.Context, evt Event) error
	// Subscribe returns a channel of events for the given topics (all topics
	// when none are given). The channel is closed when ctx is done.
	Subscribe(ctx context.Context, topics ...Topic) <-chan Event
}

// New builds an event stamped with the current time.
func New(topic Topic, userID, id string) Event {
	return Event{Topic: topic, UserID: userID, ID: id, At: time.Now().UTC()}
}

// Nop discards published events and never delivers any.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

func (Nop) Subscribe(ctx context.Context, _ ...Topic) <-chan Event {
	ch := make(chan Event)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch
}

func matches(topics []Topic, t Topic) bool {
	if len(topics) == 0 {
		return true
	}
	for _, want := range topics {
		if want == t {
			return true
		}
	}
	return false
}
