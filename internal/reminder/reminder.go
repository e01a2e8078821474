// Package reminder polls the task collection and raises a due-soon
// event at most once per task. The monitor tracks per-task delivery
// state independently of the polling cadence, so a slow or fast tick
// never double-fires.
package reminder

import (
	"time"

	"github.com/taskpilot/taskpilot/internal/registry"
	"github.com/taskpilot/taskpilot/internal/task"
)

// Defaults match a once-a-minute scan over a fifteen-minute due window.
const (
	DefaultInterval = 60 * time.Second
	DefaultWindow   = 15 * time.Minute
)

// state tracks per-task delivery. Tasks the monitor has never seen are
// implicitly untracked.
type state int

const (
	armed state = iota
	fired
	retired
)

// Monitor watches the registry and emits each qualifying task once.
type Monitor struct {
	reg      *registry.Registry
	now      func() time.Time
	interval time.Duration
	window   time.Duration

	states      map[string]state
	subscribers []func(*task.Task)
	unsubscribe func()
	stop        chan struct{}
	done        chan struct{}
}

// New arms every task currently in the registry and subscribes to
// collection changes so later additions are armed and removals dropped.
func New(reg *registry.Registry) *Monitor {
	m := &Monitor{
		reg:      reg,
		now:      time.Now,
		interval: DefaultInterval,
		window:   DefaultWindow,
		states:   make(map[string]state),
	}
	for _, t := range reg.Tasks() {
		m.states[t.ID] = armed
	}
	m.unsubscribe = reg.Subscribe(func(c registry.Change) {
		switch c.Kind {
		case registry.Added:
			m.states[c.Task.ID] = armed
		case registry.Removed:
			delete(m.states, c.Task.ID)
		case registry.Reset:
			m.states = make(map[string]state)
			for _, t := range m.reg.Tasks() {
				m.states[t.ID] = armed
			}
		}
	})
	return m
}

// SetNow overrides the clock. Tests pin it for deterministic windows.
func (m *Monitor) SetNow(fn func() time.Time) {
	m.now = fn
}

// SetInterval overrides the polling cadence. Only read by Start.
func (m *Monitor) SetInterval(d time.Duration) {
	if d > 0 {
		m.interval = d
	}
}

// SetWindow overrides how far ahead of the due date a reminder fires.
func (m *Monitor) SetWindow(d time.Duration) {
	if d > 0 {
		m.window = d
	}
}

// Inherit copies per-task delivery state from a previous monitor, so a
// rebuild after an external data reload does not re-fire reminders that
// already went out. Ids the new registry no longer holds are ignored.
func (m *Monitor) Inherit(prev *Monitor) {
	if prev == nil {
		return
	}
	for id, s := range prev.states {
		if _, ok := m.states[id]; ok && s != armed {
			m.states[id] = s
		}
	}
}

// Subscribe registers a listener for reminder events. The returned
// function removes the listener.
func (m *Monitor) Subscribe(fn func(*task.Task)) (unsubscribe func()) {
	m.subscribers = append(m.subscribers, fn)
	i := len(m.subscribers) - 1
	return func() { m.subscribers[i] = nil }
}

// Scan runs one poll pass at the given instant. Armed tasks due within
// the window fire exactly once; completed or already past-due tasks
// retire silently. Fired and retired tasks are skipped on later passes.
func (m *Monitor) Scan(now time.Time) []*task.Task {
	var triggered []*task.Task
	for _, t := range m.reg.Tasks() {
		if m.states[t.ID] != armed {
			continue
		}
		if t.Completed {
			m.states[t.ID] = retired
			continue
		}
		until := t.Due.Sub(now)
		if until <= 0 {
			m.states[t.ID] = retired
			continue
		}
		if until <= m.window {
			m.states[t.ID] = fired
			triggered = append(triggered, t)
			m.emit(t)
		}
	}
	return triggered
}

// Start begins polling on the configured interval until Stop is called.
// One scan runs immediately so a task already inside the window does
// not wait a full tick.
func (m *Monitor) Start() {
	if m.stop != nil {
		return
	}
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	go m.run()
}

// Stop halts polling and detaches from the registry. Safe to call on a
// monitor that was never started.
func (m *Monitor) Stop() {
	if m.stop != nil {
		close(m.stop)
		<-m.done
		m.stop = nil
	}
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

func (m *Monitor) run() {
	defer close(m.done)

	m.Scan(m.now())
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.Scan(m.now())
		case <-m.stop:
			return
		}
	}
}

func (m *Monitor) emit(t *task.Task) {
	for _, fn := range m.subscribers {
		if fn != nil {
			fn(t)
		}
	}
}
