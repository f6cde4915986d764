package board

import (
	"sync"

	"github.com/tgienger/kanban/internal/models"
)

// Columns is the filtered, per-status projection of a Cache. It recomputes only
// when the cache generation or the filter version changed since the last call.
type Columns struct {
	cache   *Cache
	filters *FilterState

	mu      sync.Mutex
	gen     uint64
	version uint64
	valid   bool
	columns map[models.Status][]models.Task
}

func NewColumns(cache *Cache, filters *FilterState) *Columns {
	return &Columns{cache: cache, filters: filters}
}

// Column returns the visible tasks of one status in natural order
func (v *Columns) Column(status models.Status) []models.Task {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.refreshLocked()
	return cloneTasks(v.columns[status])
}

// All returns every column keyed by status
func (v *Columns) All() map[models.Status][]models.Task {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.refreshLocked()
	out := make(map[models.Status][]models.Task, len(v.columns))
	for s, tasks := range v.columns {
		out[s] = cloneTasks(tasks)
	}
	return out
}

func cloneTasks(tasks []models.Task) []models.Task {
	if tasks == nil {
		return nil
	}
	out := make([]models.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

func (v *Columns) refreshLocked() {
	gen := v.cache.Generation()
	version := v.filters.Version()
	if v.valid && gen == v.gen && version == v.version {
		return
	}
	f := v.filters.Snapshot()
	cols := make(map[models.Status][]models.Task, 3)
	for _, s := range models.Statuses() {
		var tasks []models.Task
		for t := range v.cache.ByStatus(s) {
			if f.Matches(t) {
				tasks = append(tasks, t)
			}
		}
		cols[s] = tasks
	}
	v.columns = cols
	v.gen = gen
	v.version = version
	v.valid = true
}

// Stats is the board summary shown in the status bar
type Stats struct {
	Total    int
	ByStatus map[models.Status]int
	Overdue  int
}

// ComputeStats counts every cached task, ignoring the filter
func ComputeStats(c *Cache, today models.Date) Stats {
	st := Stats{ByStatus: make(map[models.Status]int, 3)}
	for _, s := range models.Statuses() {
		for t := range c.ByStatus(s) {
			st.Total++
			st.ByStatus[s]++
			if t.Overdue(today) {
				st.Overdue++
			}
		}
	}
	return st
}
