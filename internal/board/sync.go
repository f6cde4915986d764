package board

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/tgienger/kanban/internal/models"
)

// Option configures a Synchronizer
type Option func(*Synchronizer)

// WithLogger sets the logger; the default discards everything
func WithLogger(l *slog.Logger) Option {
	return func(s *Synchronizer) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRegistry shares a label/user registry used to fill assignee names
func WithRegistry(r *Registry) Option {
	return func(s *Synchronizer) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithRollback makes failed updates and moves restore the value the task had
// before the optimistic write, unless something else wrote to it meanwhile.
// Off by default: the optimistic value is kept and the error returned.
func WithRollback(enabled bool) Option {
	return func(s *Synchronizer) { s.rollback = enabled }
}

// WithUnauthorizedHandler is called with every unauthorized failure, so the
// session layer can ask for a new credential.
func WithUnauthorizedHandler(fn func(error)) Option {
	return func(s *Synchronizer) { s.onUnauthorized = fn }
}

// Synchronizer is the only component that talks to the Gateway and the only
// writer of the Cache.
type Synchronizer struct {
	gw             Gateway
	cache          *Cache
	filters        *FilterState
	registry       *Registry
	logger         *slog.Logger
	rollback       bool
	onUnauthorized func(error)

	mu       sync.Mutex
	fetchSeq uint64
}

// NewSynchronizer wires a gateway to a cache. filters may be nil, in which case
// Refresh fetches with an empty filter.
func NewSynchronizer(gw Gateway, cache *Cache, filters *FilterState, opts ...Option) *Synchronizer {
	if filters == nil {
		filters = NewFilterState(Filter{})
	}
	s := &Synchronizer{
		gw:       gw,
		cache:    cache,
		filters:  filters,
		registry: NewRegistry(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Synchronizer) Cache() *Cache         { return s.cache }
func (s *Synchronizer) Filters() *FilterState { return s.filters }
func (s *Synchronizer) Registry() *Registry   { return s.registry }

// Fetch lists tasks matching f and replaces the cache with them. If another
// Fetch was issued after this one, the response is dropped and ErrSuperseded
// returned, whether it succeeded or not. On failure the cache is unchanged.
func (s *Synchronizer) Fetch(ctx context.Context, f Filter) error {
	s.mu.Lock()
	s.fetchSeq++
	seq := s.fetchSeq
	s.mu.Unlock()

	tasks, err := s.gw.ListTasks(ctx, f)

	s.mu.Lock()
	if seq != s.fetchSeq {
		s.mu.Unlock()
		s.logger.Debug("dropping superseded fetch", "seq", seq, "error", err)
		return ErrSuperseded
	}
	if err == nil {
		normalized := make([]models.Task, len(tasks))
		for i, t := range tasks {
			normalized[i] = s.normalize(t)
		}
		s.cache.ReplaceAll(normalized)
	}
	s.mu.Unlock()

	if err != nil {
		return s.fail("fetch", err)
	}
	s.logger.Debug("fetched tasks", "count", len(tasks), "seq", seq)
	return nil
}

// Refresh fetches with the current filter
func (s *Synchronizer) Refresh(ctx context.Context) error {
	return s.Fetch(ctx, s.filters.Snapshot())
}

// Create sends the draft and reconciles with a full refresh. No client-side ID
// is invented; the task shows up once the server has assigned one.
func (s *Synchronizer) Create(ctx context.Context, draft models.TaskDraft) (*models.Task, error) {
	const op = "create"
	if err := draft.Validate(); err != nil {
		return nil, s.fail(op, err)
	}
	created, err := s.gw.CreateTask(ctx, draft)
	if err != nil {
		return nil, s.fail(op, err)
	}
	s.logger.Info("task created", "id", created.ID, "title", created.Title)

	if err := s.Refresh(ctx); err != nil {
		if errors.Is(err, ErrSuperseded) {
			return created, nil
		}
		// The task exists on the server; show the acknowledged copy.
		s.cache.Upsert(s.normalize(*created))
		return created, err
	}
	return created, nil
}

// Update applies patch to the cached task right away, then sends it.
func (s *Synchronizer) Update(ctx context.Context, id string, patch models.TaskPatch) error {
	const op = "update"
	if err := patch.Validate(); err != nil {
		return s.fail(op, err)
	}
	if patch.Empty() {
		return nil
	}
	prev, rev, cached := s.cache.Patch(id, func(t models.Task) models.Task {
		return s.normalize(patch.Apply(t))
	})

	updated, err := s.gw.UpdateTask(ctx, id, patch)
	if err != nil {
		if cached {
			s.revert(id, rev, prev)
		}
		return s.fail(op, err)
	}
	if updated != nil {
		s.cache.Replace(s.normalize(*updated))
	}
	return nil
}

// Assign changes only the task's assignee; "" unassigns
func (s *Synchronizer) Assign(ctx context.Context, id, userID string) error {
	return s.Update(ctx, id, models.AssigneePatch(userID))
}

// Move changes a task's column. It has the same optimistic contract as Update.
// Moving a task to the column it is already in is allowed.
func (s *Synchronizer) Move(ctx context.Context, id string, status models.Status) error {
	const op = "move"
	if !status.Valid() {
		return s.fail(op, Errorf(KindValidation, op, "invalid status %q", status))
	}
	prev, rev, cached := s.cache.Patch(id, func(t models.Task) models.Task {
		t.Status = status
		return t
	})
	if cached && prev.Status != status {
		s.logger.Info("moving task", "id", id, "from", prev.Status, "to", status)
	}

	moved, err := s.gw.PatchTaskStatus(ctx, id, status)
	if err != nil {
		if cached {
			s.revert(id, rev, prev)
		}
		return s.fail(op, err)
	}
	if moved != nil {
		s.cache.Replace(s.normalize(*moved))
	}
	return nil
}

// Delete removes a task once the server acknowledged it. Unknown IDs are a
// no-op, and a task the server no longer has is dropped locally as well.
func (s *Synchronizer) Delete(ctx context.Context, id string) error {
	const op = "delete"
	if _, ok := s.cache.Get(id); !ok {
		return nil
	}
	if err := s.gw.DeleteTask(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return s.fail(op, err)
	}
	s.cache.Remove(id)
	s.logger.Info("task deleted", "id", id)
	return nil
}

// AddComment posts a comment, then reloads the task to pick up the server's
// comment ID and timestamp.
func (s *Synchronizer) AddComment(ctx context.Context, taskID, content, authorID, authorName string) error {
	const op = "add comment"
	content = strings.TrimSpace(content)
	if content == "" {
		return s.fail(op, Errorf(KindValidation, op, "comment cannot be empty"))
	}
	c, err := s.gw.AddComment(ctx, taskID, content)
	if err != nil {
		return s.fail(op, err)
	}
	if err := s.reload(ctx, taskID); err != nil {
		if c != nil {
			comment := *c
			if comment.AuthorID == "" {
				comment.AuthorID = authorID
			}
			if comment.AuthorName == "" {
				comment.AuthorName = authorName
			}
			s.cache.Patch(taskID, func(t models.Task) models.Task {
				t.Comments = append(t.Comments, comment)
				return t
			})
		}
		return s.fail(op, err)
	}
	return nil
}

// AddAttachment uploads a file, then reloads the task
func (s *Synchronizer) AddAttachment(ctx context.Context, taskID string, file models.Upload, uploadedBy string) error {
	const op = "add attachment"
	if strings.TrimSpace(file.Name) == "" || file.Body == nil {
		return s.fail(op, Errorf(KindValidation, op, "no file selected"))
	}
	a, err := s.gw.UploadAttachment(ctx, taskID, file)
	if err != nil {
		return s.fail(op, err)
	}
	s.logger.Info("attachment uploaded", "task", taskID, "name", file.Name, "by", uploadedBy)
	if err := s.reload(ctx, taskID); err != nil {
		if a != nil {
			att := *a
			if att.UploadedBy == "" {
				att.UploadedBy = uploadedBy
			}
			s.cache.Patch(taskID, func(t models.Task) models.Task {
				t.Attachments = append(t.Attachments, att)
				return t
			})
		}
		return s.fail(op, err)
	}
	return nil
}

// Load fetches one task with its comments and attachments. A task the server
// no longer has is dropped from the cache.
func (s *Synchronizer) Load(ctx context.Context, id string) error {
	if err := s.reload(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			s.cache.Remove(id)
		}
		return s.fail("load", err)
	}
	return nil
}

// LoadRegistry refreshes labels and users. Whatever loads is kept even if the
// other call fails.
func (s *Synchronizer) LoadRegistry(ctx context.Context) error {
	labels, lerr := s.gw.ListLabels(ctx)
	if lerr == nil {
		s.registry.SetLabels(labels)
	}
	users, uerr := s.gw.ListUsers(ctx)
	if uerr == nil {
		s.registry.SetUsers(users)
	}
	if lerr != nil {
		return s.fail("list labels", lerr)
	}
	if uerr != nil {
		return s.fail("list users", uerr)
	}
	return nil
}

// reload refreshes a cached task from the server. Tasks outside the cache,
// e.g. ones the active filter excluded, stay out of it.
func (s *Synchronizer) reload(ctx context.Context, id string) error {
	t, err := s.gw.GetTask(ctx, id)
	if err != nil {
		return err
	}
	s.cache.Replace(s.normalize(*t))
	return nil
}

func (s *Synchronizer) revert(id string, rev uint64, prev models.Task) {
	if !s.rollback {
		return
	}
	if s.cache.Restore(id, rev, prev) {
		s.logger.Info("rolled back optimistic change", "id", id)
	}
}

func (s *Synchronizer) normalize(t models.Task) models.Task {
	t.Labels = models.DedupeLabels(t.Labels)
	switch {
	case t.AssigneeID == "":
		t.AssigneeName = ""
	case t.AssigneeName == "":
		t.AssigneeName = s.registry.UserName(t.AssigneeID)
	}
	return t
}

func (s *Synchronizer) fail(op string, err error) error {
	e := classify(op, err)
	s.logger.Warn("operation failed", "op", op, "error", e)
	if KindOf(e) == KindUnauthorized && s.onUnauthorized != nil {
		s.onUnauthorized(e)
	}
	return e
}
