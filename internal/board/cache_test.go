package board

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/kanban/internal/models"
)

func task(id, title string, status models.Status) models.Task {
	return models.Task{ID: id, Title: title, Status: status}
}

func ids(seq func(func(models.Task) bool)) []string {
	var out []string
	for t := range seq {
		out = append(out, t.ID)
	}
	return out
}

func TestByStatusPartitionsCache(t *testing.T) {
	c := NewCache()
	c.ReplaceAll([]models.Task{
		task("1", "a", models.StatusTodo),
		task("2", "b", models.StatusDone),
		task("3", "c", models.StatusInProgress),
		task("4", "d", models.StatusTodo),
		task("5", "e", models.StatusDone),
	})

	var union []string
	for _, s := range models.Statuses() {
		for tk := range c.ByStatus(s) {
			assert.Equal(t, s, tk.Status)
			union = append(union, tk.ID)
		}
	}
	slices.Sort(union)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, union)
	assert.Equal(t, []string{"1", "4"}, ids(c.ByStatus(models.StatusTodo)))
}

func TestByStatusIsRestartableAndSeesLaterWrites(t *testing.T) {
	c := NewCache()
	c.Upsert(task("1", "a", models.StatusTodo))
	seq := c.ByStatus(models.StatusTodo)

	assert.Equal(t, []string{"1"}, ids(seq))
	c.Upsert(task("2", "b", models.StatusTodo))
	assert.Equal(t, []string{"1", "2"}, ids(seq))
	assert.Equal(t, []string{"1", "2"}, ids(seq))
}

func TestByStatusStopsEarly(t *testing.T) {
	c := NewCache()
	c.ReplaceAll([]models.Task{task("1", "a", models.StatusTodo), task("2", "b", models.StatusTodo)})
	n := 0
	for range c.ByStatus(models.StatusTodo) {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestUpsertIsIdempotent(t *testing.T) {
	c := NewCache()
	tk := task("7", "Fix login bug", models.StatusTodo)
	c.Upsert(tk)
	once := c.All()
	c.Upsert(tk)
	assert.Equal(t, once, c.All())
	assert.Equal(t, 1, c.Len())
}

func TestUpsertReplacesWholesaleAndKeepsPosition(t *testing.T) {
	c := NewCache()
	c.ReplaceAll([]models.Task{task("1", "a", models.StatusTodo), task("2", "b", models.StatusTodo)})

	withComments := task("1", "a", models.StatusTodo)
	withComments.Comments = []models.Comment{{ID: "c1", Content: "old"}}
	c.Upsert(withComments)

	c.Upsert(task("1", "renamed", models.StatusDone))
	got, ok := c.Get("1")
	require.True(t, ok)
	assert.Equal(t, "renamed", got.Title)
	assert.Empty(t, got.Comments, "nested lists must not survive a replace")
	assert.Equal(t, []string{"1", "2"}, ids(slices.Values(c.All())))
}

func TestReplaceAllDropsDuplicates(t *testing.T) {
	c := NewCache()
	c.ReplaceAll([]models.Task{
		task("1", "first", models.StatusTodo),
		task("2", "b", models.StatusTodo),
		task("1", "second", models.StatusTodo),
	})
	require.Equal(t, 2, c.Len())
	got, _ := c.Get("1")
	assert.Equal(t, "second", got.Title)
	assert.Equal(t, "1", c.All()[0].ID)
}

func TestRemove(t *testing.T) {
	c := NewCache()
	c.Upsert(task("1", "a", models.StatusTodo))
	gen := c.Generation()

	assert.False(t, c.Remove("missing"))
	assert.Equal(t, gen, c.Generation())

	assert.True(t, c.Remove("1"))
	assert.Zero(t, c.Len())
	assert.Greater(t, c.Generation(), gen)
}

func TestCacheDoesNotAliasCallerSlices(t *testing.T) {
	c := NewCache()
	tk := task("1", "a", models.StatusTodo)
	tk.Labels = []models.Label{{ID: "l1"}}
	c.Upsert(tk)
	tk.Labels[0].ID = "changed"

	got, _ := c.Get("1")
	assert.Equal(t, "l1", got.Labels[0].ID)
	got.Labels[0].ID = "changed again"

	again, _ := c.Get("1")
	assert.Equal(t, "l1", again.Labels[0].ID)
}

func TestRestoreOnlyAtSameRevision(t *testing.T) {
	c := NewCache()
	c.Upsert(task("1", "a", models.StatusTodo))
	prev, rev, ok := c.Patch("1", func(t models.Task) models.Task {
		t.Status = models.StatusDone
		return t
	})
	require.True(t, ok)
	assert.Equal(t, models.StatusTodo, prev.Status)

	assert.True(t, c.Restore("1", rev, prev))
	got, _ := c.Get("1")
	assert.Equal(t, models.StatusTodo, got.Status)

	assert.False(t, c.Restore("1", rev, task("1", "stale", models.StatusDone)))
}

func TestReplaceOnlyTouchesCachedTasks(t *testing.T) {
	c := NewCache()
	c.ReplaceAll([]models.Task{task("1", "a", models.StatusTodo), task("2", "b", models.StatusTodo)})
	gen := c.Generation()

	assert.False(t, c.Replace(task("3", "c", models.StatusDone)))
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, gen, c.Generation())

	assert.True(t, c.Replace(task("1", "renamed", models.StatusDone)))
	got, _ := c.Get("1")
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, []string{"1", "2"}, ids(slices.Values(c.All())))
}
