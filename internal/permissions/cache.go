// Package permissions answers capability questions for the signed-in user of
// one session, memoizing the admin flag.
package permissions

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"job-tracker/internal/events"
	"job-tracker/internal/session"
	"job-tracker/internal/shared/metrics"
	"job-tracker/internal/shared/telemetry"
)

// AdminLookup resolves whether uid holds the admin role.
type AdminLookup interface {
	IsAdmin(ctx context.Context, uid string) (bool, error)
}

// AdminLookupFunc adapts a function to AdminLookup.
type AdminLookupFunc func(ctx context.Context, uid string) (bool, error)

func (f AdminLookupFunc) IsAdmin(ctx context.Context, uid string) (bool, error) {
	return f(ctx, uid)
}

// Cache memoizes the admin flag for the identity of one session. At most one
// lookup per identity is made; concurrent callers share it.
type Cache struct {
	sess   *session.Session
	lookup AdminLookup
	group  singleflight.Group

	mu    sync.Mutex
	gen   uint64
	uid   string
	admin bool
	known bool
}

// New builds a cache over sess.
func New(sess *session.Session, lookup AdminLookup) *Cache {
	return &Cache{sess: sess, lookup: lookup}
}

// Session returns the session the cache is scoped to.
func (c *Cache) Session() *session.Session { return c.sess }

// Invalidate drops the memoized flag; the next question re-resolves it.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.gen++
	c.known = false
	c.mu.Unlock()
}

// Run invalidates the cache on identity changes and on permission-change
// events for the current user. It returns when ctx is done.
func (c *Cache) Run(ctx context.Context, broker events.Broker) {
	idCh := c.sess.Watch(ctx)
	var evCh <-chan events.Event
	if broker != nil {
		evCh = broker.Subscribe(ctx, events.PermissionsChanged)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-idCh:
			if !ok {
				return
			}
			c.Invalidate()
		case evt, ok := <-evCh:
			if !ok {
				evCh = nil
				continue
			}
			if evt.UserID == "" || evt.UserID == c.sess.UserID() {
				c.Invalidate()
			}
		}
	}
}

// IsAdmin reports whether the signed-in user is an admin. No user means
// false. A failed lookup is logged and treated as not admin, and is not
// memoized.
func (c *Cache) IsAdmin(ctx context.Context) bool {
	uid := c.sess.UserID()
	if uid == "" {
		return false
	}

	c.mu.Lock()
	if c.known && c.uid == uid {
		admin := c.admin
		c.mu.Unlock()
		return admin
	}
	gen := c.gen
	c.mu.Unlock()

	key := uid + "#" + strconv.FormatUint(gen, 10)
	v, err, _ := c.group.Do(key, func() (any, error) {
		metrics.IncAdminLookup()
		return c.lookup.IsAdmin(ctx, uid)
	})
	if err != nil {
		telemetry.Warn("permissions.admin_lookup_failed", map[string]any{
			"user_id": uid,
			"error":   err,
		})
		return false
	}
	admin := v.(bool)

	c.mu.Lock()
	if c.gen == gen && c.sess.UserID() == uid {
		c.uid = uid
		c.admin = admin
		c.known = true
	}
	c.mu.Unlock()
	return admin
}
