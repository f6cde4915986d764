package board

import (
	"slices"
	"sync"

	"github.com/tgienger/kanban/internal/models"
)

// Registry keeps the board's labels and users. It is read-mostly: the client
// never creates or deletes users, and labels change only through a reload.
type Registry struct {
	mu          sync.RWMutex
	labels      []models.Label
	users       []models.User
	labelsByID  map[string]models.Label
	usersByID   map[string]models.User
	labelsKnown bool
}

func NewRegistry() *Registry {
	return &Registry{
		labelsByID: make(map[string]models.Label),
		usersByID:  make(map[string]models.User),
	}
}

func (r *Registry) SetLabels(labels []models.Label) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.labels = slices.Clone(labels)
	r.labelsByID = make(map[string]models.Label, len(labels))
	for _, l := range labels {
		r.labelsByID[l.ID] = l
	}
	r.labelsKnown = true
}

func (r *Registry) SetUsers(users []models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = slices.Clone(users)
	r.usersByID = make(map[string]models.User, len(users))
	for _, u := range users {
		r.usersByID[u.ID] = u
	}
}

func (r *Registry) Labels() []models.Label {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.labels)
}

func (r *Registry) Users() []models.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.users)
}

func (r *Registry) Label(id string) (models.Label, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.labelsByID[id]
	return l, ok
}

func (r *Registry) User(id string) (models.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.usersByID[id]
	return u, ok
}

// UserName returns the display name for a user id, or "" if unknown
func (r *Registry) UserName(id string) string {
	if u, ok := r.User(id); ok {
		return u.Name
	}
	return ""
}

// ResolveLabels drops references to labels that are no longer in the registry
// and refreshes name and color from it. Before the first SetLabels the input is
// returned unchanged.
func (r *Registry) ResolveLabels(labels []models.Label) []models.Label {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.labelsKnown {
		return labels
	}
	out := make([]models.Label, 0, len(labels))
	for _, l := range labels {
		if current, ok := r.labelsByID[l.ID]; ok {
			out = append(out, current)
		}
	}
	return out
}

// LabelsFor turns label ids into registry labels, skipping unknown ids
func (r *Registry) LabelsFor(ids []string) []models.Label {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Label, 0, len(ids))
	for _, id := range models.DedupeIDs(ids) {
		if l, ok := r.labelsByID[id]; ok {
			out = append(out, l)
		}
	}
	return out
}
