package viewstate

import (
	"context"
	"sync"
	"time"

	"job-tracker/internal/shared/telemetry"
)

// DefaultDebounce is the quiet period applied to free-text filters.
const DefaultDebounce = 300 * time.Millisecond

// DefaultNotifyDelay is the settle period for change notifications.
const DefaultNotifyDelay = 50 * time.Millisecond

// Fetcher reads the screen's raw list from the backing store.
type Fetcher[T any] func(ctx context.Context) ([]T, error)

// FilterFunc narrows items by the current filter values. It must be pure and
// must not reorder beyond dropping items.
type FilterFunc[T any] func(items []T, filters Filters) []T

// Filters holds the current filter values by name.
type Filters map[string]string

// Get returns the value of a filter, or "".
func (f Filters) Get(name string) string { return f[name] }

func (f Filters) clone() Filters {
	out := make(Filters, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Snapshot is one rendered state of a view.
type Snapshot[T any] struct {
	Items   []T     `json:"items"`
	Total   int     `json:"total"`
	Filters Filters `json:"filters"`
	Loading bool    `json:"loading"`
	Err     error   `json:"-"`
	Error   string  `json:"error,omitempty"`
}

// Options configures a View.
type Options struct {
	// Debounce is the quiet period for SetText. Zero means DefaultDebounce.
	Debounce time.Duration
	// Filters seeds the filter values, e.g. {"status": "all"}.
	Filters Filters
	// NotifyDelay is how long change notifications settle before the view
	// re-reads. Zero means DefaultNotifyDelay.
	NotifyDelay time.Duration
	// Name labels log lines.
	Name string
}

type cmdKind int

const (
	cmdText cmdKind = iota
	cmdOption
	cmdRefresh
	cmdNotify
	cmdTrack
	cmdUntrack
)

type command struct {
	kind  cmdKind
	name  string
	value string
	at    time.Time
}

type result[T any] struct {
	seq   uint64
	items []T
	err   error
}

// View runs one screen's state machine on its own goroutine: Idle, then
// Loading(initial), then Ready, with re-enterable Loading(refresh). A failed
// fetch surfaces Err on one snapshot and keeps the last good items.
type View[T any] struct {
	fetch    Fetcher[T]
	filter   FilterFunc[T]
	debounce time.Duration
	settle   time.Duration
	initial  Filters
	name     string

	loading Loading
	cmds    chan command
	out     chan Snapshot[T]
	done    chan struct{}
	once    sync.Once
}

// New builds a view. It does nothing until Start.
func New[T any](fetch Fetcher[T], filter FilterFunc[T], opts Options) *View[T] {
	d := opts.Debounce
	if d <= 0 {
		d = DefaultDebounce
	}
	settle := opts.NotifyDelay
	if settle <= 0 {
		settle = DefaultNotifyDelay
	}
	initial := opts.Filters
	if initial == nil {
		initial = Filters{}
	}
	return &View[T]{
		fetch:    fetch,
		filter:   filter,
		debounce: d,
		settle:   settle,
		initial:  initial.clone(),
		name:     opts.Name,
		cmds:     make(chan command, 64),
		out:      make(chan Snapshot[T], 1),
		done:     make(chan struct{}),
	}
}

// Start triggers the initial fetch and returns the snapshot stream. The
// stream keeps only the latest unread snapshot. It is closed after ctx is
// done, following a final snapshot with Loading false.
func (v *View[T]) Start(ctx context.Context) <-chan Snapshot[T] {
	v.once.Do(func() { go v.run(ctx) })
	return v.out
}

// Done is closed once the view has stopped.
func (v *View[T]) Done() <-chan struct{} { return v.done }

// SetText updates a free-text filter. Rapid calls collapse into one update
// after the debounce period; each call restarts the timer.
func (v *View[T]) SetText(name, value string) { v.send(command{kind: cmdText, name: name, value: value}) }

// SetOption updates a discrete filter immediately.
func (v *View[T]) SetOption(name, value string) {
	v.send(command{kind: cmdOption, name: name, value: value})
}

// Refresh re-reads the backing store. Every call is one fetch.
func (v *View[T]) Refresh() { v.send(command{kind: cmdRefresh}) }

// Notify re-reads after an upstream change without raising a loading flag.
func (v *View[T]) Notify() { v.NotifyChange(time.Now()) }

// NotifyChange reports an upstream change made at the given time. Changes
// arriving within the settle period share one re-read, which is skipped when
// a fetch started after the newest of them.
func (v *View[T]) NotifyChange(at time.Time) {
	if at.IsZero() {
		at = time.Now()
	}
	v.send(command{kind: cmdNotify, at: at})
}

// Track raises a loading flag until the returned func is called.
func (v *View[T]) Track(flag string) (done func()) {
	v.send(command{kind: cmdTrack, name: flag})
	var once sync.Once
	return func() {
		once.Do(func() { v.send(command{kind: cmdUntrack, name: flag}) })
	}
}

func (v *View[T]) send(c command) {
	select {
	case v.cmds <- c:
	case <-v.done:
	}
}

func (v *View[T]) run(ctx context.Context) {
	defer close(v.done)

	var (
		items    []T
		filters  = v.initial.clone()
		pending  = map[string]string{}
		timer    *time.Timer
		timerC   <-chan time.Time
		settle   *time.Timer
		settleC  <-chan time.Time
		changed  time.Time
		started  time.Time
		seq      uint64
		applied  uint64
		results  = make(chan result[T])
		emitWith = func(err error) {
			offerLatest(v.out, v.snapshot(items, filters, err))
		}
	)

	startFetch := func(flag string) {
		seq++
		n := seq
		started = time.Now()
		if flag != "" {
			v.loading.Set(flag)
		}
		go func() {
			got, err := v.fetch(ctx)
			select {
			case results <- result[T]{seq: n, items: got, err: err}:
			case <-ctx.Done():
			}
		}()
	}

	startFetch(FlagInitial)
	emitWith(nil)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			if settle != nil {
				settle.Stop()
			}
			v.loading.Reset()
			emitWith(nil)
			close(v.out)
			return

		case cmd := <-v.cmds:
			switch cmd.kind {
			case cmdText:
				pending[cmd.name] = cmd.value
				if timer != nil {
					timer.Stop()
				}
				timer = time.NewTimer(v.debounce)
				timerC = timer.C
			case cmdOption:
				filters[cmd.name] = cmd.value
				emitWith(nil)
			case cmdRefresh:
				startFetch(FlagRefresh)
				emitWith(nil)
			case cmdNotify:
				if cmd.at.After(changed) {
					changed = cmd.at
				}
				if settleC == nil {
					settle = time.NewTimer(v.settle)
					settleC = settle.C
				}
			case cmdTrack:
				v.loading.Set(cmd.name)
				emitWith(nil)
			case cmdUntrack:
				v.loading.Clear(cmd.name)
				emitWith(nil)
			}

		case <-timerC:
			timerC = nil
			for name, value := range pending {
				filters[name] = value
			}
			pending = map[string]string{}
			emitWith(nil)

		case <-settleC:
			settleC = nil
			if !started.After(changed) {
				startFetch("")
			}
			changed = time.Time{}

		case res := <-results:
			if res.seq < applied {
				continue
			}
			applied = res.seq
			if res.seq == seq {
				v.loading.Clear(FlagInitial)
				v.loading.Clear(FlagRefresh)
			}
			if res.err != nil {
				telemetry.Warn("viewstate.fetch_failed", map[string]any{
					"view":  v.name,
					"error": res.err,
				})
				emitWith(res.err)
				continue
			}
			items = res.items
			emitWith(nil)
		}
	}
}

func (v *View[T]) snapshot(items []T, filters Filters, err error) Snapshot[T] {
	fs := filters.clone()
	visible := items
	if v.filter != nil {
		visible = v.filter(items, fs)
	}
	if visible == nil {
		visible = []T{}
	}
	snap := Snapshot[T]{
		Items:   visible,
		Total:   len(items),
		Filters: fs,
		Loading: v.loading.Any(),
		Err:     err,
	}
	if err != nil {
		snap.Error = err.Error()
	}
	return snap
}
