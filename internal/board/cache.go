package board

import (
	"iter"
	"slices"
	"sync"

	"github.com/tgienger/kanban/internal/models"
)

type entry struct {
	task models.Task
	rev  uint64
}

// Cache holds the known tasks keyed by ID, in fetch/insertion order.
// Every value stored or returned is a clone; callers never share slices with it.
type Cache struct {
	mu    sync.RWMutex
	order []string
	tasks map[string]entry
	gen   uint64 // bumped by every mutation
	rev   uint64
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{tasks: make(map[string]entry)}
}

// ReplaceAll swaps the whole collection. A repeated ID keeps its first position
// and its last value.
func (c *Cache) ReplaceAll(tasks []models.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replaceLocked(tasks)
}

func (c *Cache) replaceLocked(tasks []models.Task) {
	order := make([]string, 0, len(tasks))
	byID := make(map[string]entry, len(tasks))
	for _, t := range tasks {
		if _, ok := byID[t.ID]; !ok {
			order = append(order, t.ID)
		}
		c.rev++
		byID[t.ID] = entry{task: t.Clone(), rev: c.rev}
	}
	c.order = order
	c.tasks = byID
	c.gen++
}

// Upsert inserts a new task at the end or replaces an existing one wholesale,
// keeping its position. It returns the entry's new revision.
func (c *Cache) Upsert(task models.Task) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.upsertLocked(task)
}

func (c *Cache) upsertLocked(task models.Task) uint64 {
	if _, ok := c.tasks[task.ID]; !ok {
		c.order = append(c.order, task.ID)
	}
	c.rev++
	c.tasks[task.ID] = entry{task: task.Clone(), rev: c.rev}
	c.gen++
	return c.rev
}

// Replace overwrites an existing task and keeps its position. Unknown IDs are
// left alone; it reports whether the task was cached.
func (c *Cache) Replace(task models.Task) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.tasks[task.ID]; !ok {
		return false
	}
	c.upsertLocked(task)
	return true
}

// Restore puts task back only if the entry is still at revision rev,
// i.e. nothing wrote to it since. It reports whether it did.
func (c *Cache) Restore(id string, rev uint64, task models.Task) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.tasks[id]
	if !ok || e.rev != rev {
		return false
	}
	c.upsertLocked(task)
	return true
}

// Patch replaces the cached task with fn's result in one step. It returns the
// value before the change and the new revision; ok is false if id is not cached.
func (c *Cache) Patch(id string, fn func(models.Task) models.Task) (prev models.Task, rev uint64, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, found := c.tasks[id]
	if !found {
		return models.Task{}, 0, false
	}
	prev = e.task.Clone()
	next := fn(e.task.Clone())
	next.ID = id
	return prev, c.upsertLocked(next), true
}

// Remove deletes a task. Removing an unknown ID is a no-op.
func (c *Cache) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.tasks[id]; !ok {
		return false
	}
	delete(c.tasks, id)
	c.order = slices.DeleteFunc(c.order, func(s string) bool { return s == id })
	c.gen++
	return true
}

// Get returns a copy of the task with the given ID
func (c *Cache) Get(id string) (models.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.tasks[id]
	if !ok {
		return models.Task{}, false
	}
	return e.task.Clone(), true
}

// All returns every task in natural order
func (c *Cache) All() []models.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Task, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.tasks[id].task.Clone())
	}
	return out
}

// Len is the number of cached tasks
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Generation changes whenever the cache is mutated; derived views compare it
// to decide whether to recompute.
func (c *Cache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// ByStatus yields the tasks in the given column in natural order. The sequence
// is lazy and can be ranged over again; each pass sees the cache as it is when
// the pass starts.
func (c *Cache) ByStatus(status models.Status) iter.Seq[models.Task] {
	return func(yield func(models.Task) bool) {
		c.mu.RLock()
		matched := make([]models.Task, 0, len(c.order))
		for _, id := range c.order {
			if e := c.tasks[id]; e.task.Status == status {
				matched = append(matched, e.task.Clone())
			}
		}
		c.mu.RUnlock()

		for _, t := range matched {
			if !yield(t) {
				return
			}
		}
	}
}
