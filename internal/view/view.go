package view

import (
	"time"

	"github.com/taskpilot/taskpilot/internal/registry"
	"github.com/taskpilot/taskpilot/internal/task"
)

// View filters and sorts a task snapshot in one pass. The input slice is
// never mutated; the result is a fresh slice whose order reflects key
// and direction, with ties keeping the incoming relative order.
func View(tasks []*task.Task, c Criteria, key string, reverse bool, categoryNames map[string]string) []*task.Task {
	result := Filter(tasks, c)
	Sort(result, key, reverse, categoryNames)
	return result
}

// Snapshot is one consistent read of the collection: the visible tasks
// under the current criteria plus statistics over the full set.
type Snapshot struct {
	Tasks []*task.Task
	Stats Stats
}

// Coordinator recomputes the derived view whenever the registry
// collection changes. It holds no task state of its own; every
// Recompute reads a fresh snapshot from the registry.
type Coordinator struct {
	reg      *registry.Registry
	now      func() time.Time
	criteria Criteria
	sortKey  string
	reverse  bool

	names       map[string]string
	subscribers []func(Snapshot)
	unsubscribe func()
}

// NewCoordinator wires a coordinator to the registry. categoryNames
// resolves category ids for the category sort and may be nil.
func NewCoordinator(reg *registry.Registry, categoryNames map[string]string) *Coordinator {
	c := &Coordinator{
		reg:     reg,
		now:     time.Now,
		sortKey: SortDue,
		names:   categoryNames,
	}
	c.unsubscribe = reg.Subscribe(func(registry.Change) {
		c.publish()
	})
	return c
}

// SetNow overrides the clock used for overdue counting. Tests pin it.
func (c *Coordinator) SetNow(fn func() time.Time) {
	c.now = fn
}

// SetCriteria replaces the filter criteria and recomputes.
func (c *Coordinator) SetCriteria(criteria Criteria) {
	c.criteria = criteria
	c.publish()
}

// SetSort replaces the ordering and recomputes.
func (c *Coordinator) SetSort(key string, reverse bool) {
	c.sortKey = key
	c.reverse = reverse
	c.publish()
}

// Subscribe registers a listener for recomputed snapshots. The returned
// function removes the listener.
func (c *Coordinator) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.subscribers = append(c.subscribers, fn)
	i := len(c.subscribers) - 1
	return func() { c.subscribers[i] = nil }
}

// Recompute reads the registry and derives the current snapshot.
func (c *Coordinator) Recompute() Snapshot {
	tasks := c.reg.Tasks()
	return Snapshot{
		Tasks: View(tasks, c.criteria, c.sortKey, c.reverse, c.names),
		Stats: Aggregate(tasks, c.now()),
	}
}

// Close detaches the coordinator from the registry.
func (c *Coordinator) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

func (c *Coordinator) publish() {
	snap := c.Recompute()
	for _, fn := range c.subscribers {
		if fn != nil {
			fn(snap)
		}
	}
}
