package board

import (
	"maps"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/tgienger/kanban/internal/models"
)

// Filter narrows the board. Zero values mean "no filter".
type Filter struct {
	Search   string
	Labels   map[string]bool
	Assignee string
}

// NewFilter builds a filter from a label id list
func NewFilter(search string, labelIDs []string, assignee string) Filter {
	f := Filter{Search: strings.TrimSpace(search), Assignee: strings.TrimSpace(assignee)}
	for _, id := range models.DedupeIDs(labelIDs) {
		if f.Labels == nil {
			f.Labels = make(map[string]bool)
		}
		f.Labels[id] = true
	}
	return f
}

// Empty reports whether the filter lets every task through
func (f Filter) Empty() bool {
	return f.Search == "" && len(f.Labels) == 0 && f.Assignee == ""
}

// LabelIDs returns the selected label ids, sorted
func (f Filter) LabelIDs() []string {
	return slices.Sorted(maps.Keys(f.Labels))
}

// Matches is the client-side predicate behind every filtered view
func (f Filter) Matches(t models.Task) bool {
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), term) &&
			!strings.Contains(strings.ToLower(t.Description), term) &&
			!strings.Contains(strings.ToLower(t.AssigneeName), term) {
			return false
		}
	}
	if len(f.Labels) > 0 && !slices.ContainsFunc(t.Labels, func(l models.Label) bool { return f.Labels[l.ID] }) {
		return false
	}
	if f.Assignee != "" && f.Assignee != t.AssigneeID {
		return false
	}
	return true
}

// Query encodes the filter as list-tasks query parameters
func (f Filter) Query() url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Assignee != "" {
		q.Set("assignee", f.Assignee)
	}
	if len(f.Labels) > 0 {
		q.Set("labels", strings.Join(f.LabelIDs(), ","))
	}
	return q
}

// ParseFilterQuery is the inverse of Filter.Query
func ParseFilterQuery(q url.Values) Filter {
	var labels []string
	if raw := q.Get("labels"); raw != "" {
		labels = strings.Split(raw, ",")
	}
	return NewFilter(q.Get("search"), labels, q.Get("assignee"))
}

// Equal compares two filters by value
func (f Filter) Equal(o Filter) bool {
	return f.Search == o.Search && f.Assignee == o.Assignee && slices.Equal(f.LabelIDs(), o.LabelIDs())
}

func (f Filter) clone() Filter {
	f.Labels = maps.Clone(f.Labels)
	return f
}

// FilterState holds the active filter. Setters report whether anything changed
// and notify subscribers, which typically trigger a re-fetch.
type FilterState struct {
	mu        sync.Mutex
	filter    Filter
	version   uint64
	listeners []func(Filter)
}

// NewFilterState starts from an initial filter
func NewFilterState(initial Filter) *FilterState {
	return &FilterState{filter: initial.clone()}
}

// Snapshot returns a copy of the active filter
func (s *FilterState) Snapshot() Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter.clone()
}

// Version increases every time the filter changes
func (s *FilterState) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// OnChange registers fn to be called with the new filter after each change
func (s *FilterState) OnChange(fn func(Filter)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *FilterState) SetSearch(term string) bool {
	return s.update(func(f *Filter) { f.Search = strings.TrimSpace(term) })
}

func (s *FilterState) SetAssignee(userID string) bool {
	return s.update(func(f *Filter) { f.Assignee = strings.TrimSpace(userID) })
}

func (s *FilterState) SetLabels(ids []string) bool {
	return s.update(func(f *Filter) { f.Labels = NewFilter("", ids, "").Labels })
}

// ToggleLabel adds or removes one label from the selection
func (s *FilterState) ToggleLabel(id string) bool {
	return s.update(func(f *Filter) {
		if f.Labels[id] {
			delete(f.Labels, id)
			return
		}
		if f.Labels == nil {
			f.Labels = make(map[string]bool)
		}
		f.Labels[id] = true
	})
}

// Clear drops every filter
func (s *FilterState) Clear() bool {
	return s.update(func(f *Filter) { *f = Filter{} })
}

func (s *FilterState) update(mutate func(*Filter)) bool {
	s.mu.Lock()
	next := s.filter.clone()
	mutate(&next)
	if next.Equal(s.filter) {
		s.mu.Unlock()
		return false
	}
	s.filter = next
	s.version++
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(next.clone())
	}
	return true
}
