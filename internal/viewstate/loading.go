package viewstate

import (
	"sort"
	"sync"
)

// Loading flag names used by views.
const (
	FlagInitial = "initial"
	FlagRefresh = "refresh"
	FlagAuth    = "auth"
)

// Loading is the OR of named in-flight flags.
type Loading struct {
	mu    sync.Mutex
	flags map[string]struct{}
}

// Set raises a flag.
func (l *Loading) Set(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.flags == nil {
		l.flags = make(map[string]struct{})
	}
	l.flags[name] = struct{}{}
}

// Clear lowers a flag.
func (l *Loading) Clear(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.flags, name)
}

// Any is true while at least one flag is raised.
func (l *Loading) Any() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.flags) > 0
}

// Active lists raised flags in name order.
func (l *Loading) Active() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.flags))
	for name := range l.flags {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Reset lowers every flag. Views call it when their stream ends so a
// spinner never outlives the data source.
func (l *Loading) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.flags = nil
}
