package board

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/tgienger/kanban/internal/models"
)

// fakeGateway is an in-memory server. Setting an error field makes the next
// matching call fail with it.
type fakeGateway struct {
	mu     sync.Mutex
	nextID int
	tasks  []models.Task
	labels []models.Label
	users  []models.User

	listErr, createErr, updateErr, statusErr, deleteErr, getErr, commentErr, uploadErr error

	// listHook, when set, runs inside ListTasks before it returns; tests use it
	// to hold a response back.
	listHook func(f Filter)

	calls map[string]int
}

func newFakeGateway(tasks ...models.Task) *fakeGateway {
	return &fakeGateway{nextID: 41, tasks: tasks, calls: make(map[string]int)}
}

func (g *fakeGateway) count(op string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[op]
}

func (g *fakeGateway) record(op string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[op]++
}

func (g *fakeGateway) find(id string) (int, bool) {
	i := slices.IndexFunc(g.tasks, func(t models.Task) bool { return t.ID == id })
	return i, i >= 0
}

func (g *fakeGateway) ListTasks(_ context.Context, f Filter) ([]models.Task, error) {
	g.record("list")
	if g.listHook != nil {
		g.listHook(f)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listErr != nil {
		return nil, g.listErr
	}
	var out []models.Task
	for _, t := range g.tasks {
		if f.Matches(t) {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (g *fakeGateway) CreateTask(_ context.Context, d models.TaskDraft) (*models.Task, error) {
	g.record("create")
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.nextID++
	t := models.Task{
		ID:          strconv.Itoa(g.nextID),
		Title:       d.Title,
		Description: d.Description,
		Status:      d.Status,
		AssigneeID:  d.AssigneeID,
		DueDate:     d.DueDate,
		CreatedAt:   time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	g.tasks = append(g.tasks, t)
	return &t, nil
}

func (g *fakeGateway) UpdateTask(_ context.Context, id string, p models.TaskPatch) (*models.Task, error) {
	g.record("update")
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.updateErr != nil {
		return nil, g.updateErr
	}
	i, ok := g.find(id)
	if !ok {
		return nil, ErrNotFound
	}
	g.tasks[i] = p.Apply(g.tasks[i])
	t := g.tasks[i].Clone()
	return &t, nil
}

func (g *fakeGateway) PatchTaskStatus(_ context.Context, id string, s models.Status) (*models.Task, error) {
	g.record("status")
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.statusErr != nil {
		return nil, g.statusErr
	}
	i, ok := g.find(id)
	if !ok {
		return nil, ErrNotFound
	}
	g.tasks[i].Status = s
	t := g.tasks[i].Clone()
	return &t, nil
}

func (g *fakeGateway) DeleteTask(_ context.Context, id string) error {
	g.record("delete")
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.deleteErr != nil {
		return g.deleteErr
	}
	i, ok := g.find(id)
	if !ok {
		return ErrNotFound
	}
	g.tasks = slices.Delete(g.tasks, i, i+1)
	return nil
}

func (g *fakeGateway) GetTask(_ context.Context, id string) (*models.Task, error) {
	g.record("get")
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.getErr != nil {
		return nil, g.getErr
	}
	i, ok := g.find(id)
	if !ok {
		return nil, ErrNotFound
	}
	t := g.tasks[i].Clone()
	return &t, nil
}

func (g *fakeGateway) AddComment(_ context.Context, taskID, content string) (*models.Comment, error) {
	g.record("comment")
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.commentErr != nil {
		return nil, g.commentErr
	}
	i, ok := g.find(taskID)
	if !ok {
		return nil, ErrNotFound
	}
	c := models.Comment{
		ID:        fmt.Sprintf("c%d", len(g.tasks[i].Comments)+1),
		TaskID:    taskID,
		Content:   content,
		CreatedAt: time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC),
	}
	g.tasks[i].Comments = append(g.tasks[i].Comments, c)
	return &c, nil
}

func (g *fakeGateway) UploadAttachment(_ context.Context, taskID string, f models.Upload) (*models.Attachment, error) {
	g.record("upload")
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.uploadErr != nil {
		return nil, g.uploadErr
	}
	i, ok := g.find(taskID)
	if !ok {
		return nil, ErrNotFound
	}
	body, err := io.ReadAll(f.Body)
	if err != nil {
		return nil, err
	}
	a := models.Attachment{
		ID:     fmt.Sprintf("a%d", len(g.tasks[i].Attachments)+1),
		TaskID: taskID,
		Name:   f.Name,
		Type:   f.ContentType,
		Size:   int64(len(body)),
	}
	g.tasks[i].Attachments = append(g.tasks[i].Attachments, a)
	return &a, nil
}

func (g *fakeGateway) ListLabels(context.Context) ([]models.Label, error) {
	g.record("labels")
	return slices.Clone(g.labels), nil
}

func (g *fakeGateway) ListUsers(context.Context) ([]models.User, error) {
	g.record("users")
	return slices.Clone(g.users), nil
}
