// Package memory provides in-memory store implementations for development
// and testing.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/linkboard/linkboard/internal/directory"
)

// LinkStore keeps links in process memory. All mutations run under one
// mutex, so counter increments are atomic with respect to concurrent calls.
type LinkStore struct {
	mu         sync.RWMutex
	links      map[string]directory.Link
	order      []string
	categories *CategoryStore
	users      *UserStore
}

// NewLinkStore constructs a LinkStore. The category and user stores supply
// the display fields for the read-time join.
func NewLinkStore(categories *CategoryStore, users *UserStore) *LinkStore {
	return &LinkStore{
		links:      make(map[string]directory.Link),
		categories: categories,
		users:      users,
	}
}

// Insert stores a new link.
func (s *LinkStore) Insert(_ context.Context, link directory.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.links[link.ID]; exists {
		return errors.New("link already exists")
	}
	s.links[link.ID] = link
	s.order = append(s.order, link.ID)
	return nil
}

// Get fetches a link by ID.
func (s *LinkStore) Get(_ context.Context, id string) (directory.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	link, ok := s.links[id]
	if !ok {
		return directory.Link{}, directory.ErrNotFound
	}
	return link, nil
}

// Update applies the non-nil fields of upd and returns the updated link.
func (s *LinkStore) Update(_ context.Context, id string, upd directory.LinkUpdate) (directory.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.links[id]
	if !ok {
		return directory.Link{}, directory.ErrNotFound
	}
	if upd.Status != nil {
		link.Status = *upd.Status
	}
	if upd.ApprovedAt != nil {
		at := *upd.ApprovedAt
		link.ApprovedAt = &at
	}
	if upd.ApprovedBy != nil {
		link.ApprovedBy = *upd.ApprovedBy
	}
	s.links[id] = link
	return link, nil
}

// IncrementViews adds one view and returns the new count.
func (s *LinkStore) IncrementViews(_ context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.links[id]
	if !ok {
		return 0, directory.ErrNotFound
	}
	link.Views++
	s.links[id] = link
	return link.Views, nil
}

// IncrementClicks adds one click and returns the new count.
func (s *LinkStore) IncrementClicks(_ context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.links[id]
	if !ok {
		return 0, directory.ErrNotFound
	}
	link.Clicks++
	s.links[id] = link
	return link.Clicks, nil
}

// Delete removes a link.
func (s *LinkStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.links[id]; !ok {
		return directory.ErrNotFound
	}
	delete(s.links, id)
	for i, candidate := range s.order {
		if candidate == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns links matching the filter, newest first, joined with category
// and submitter display fields. Ties on creation time keep insertion order.
func (s *LinkStore) List(ctx context.Context, filter directory.ListFilter) ([]directory.LinkView, error) {
	s.mu.RLock()
	matched := make([]directory.Link, 0, len(s.order))
	for _, id := range s.order {
		link := s.links[id]
		if matches(link, filter) {
			matched = append(matched, link)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	views := make([]directory.LinkView, 0, len(matched))
	for _, link := range matched {
		views = append(views, s.project(ctx, link))
	}
	return views, nil
}

// CountByCategory returns how many links reference the category.
func (s *LinkStore) CountByCategory(_ context.Context, categoryID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, link := range s.links {
		if link.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

// Stats aggregates directory-wide totals.
func (s *LinkStore) Stats(_ context.Context) (directory.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var stats directory.Stats
	for _, link := range s.links {
		stats.TotalLinks++
		stats.TotalViews += link.Views
		stats.TotalClicks += link.Clicks
		switch link.Status {
		case directory.StatusApproved:
			stats.ApprovedLinks++
		case directory.StatusPending:
			stats.PendingLinks++
		}
	}
	return stats, nil
}

func (s *LinkStore) project(ctx context.Context, link directory.Link) directory.LinkView {
	view := directory.LinkView{Link: link}
	if s.categories != nil {
		if category, err := s.categories.Get(ctx, link.CategoryID); err == nil {
			view.CategoryName = category.Name
			view.CategoryIcon = category.Icon
			view.CategoryColor = category.Color
		}
	}
	if s.users != nil {
		if user, err := s.users.Get(ctx, link.SubmittedBy); err == nil {
			view.SubmitterName = user.Name
		}
	}
	return view
}

func matches(link directory.Link, filter directory.ListFilter) bool {
	if filter.Status != "" && link.Status != filter.Status {
		return false
	}
	if filter.CategoryID != "" && link.CategoryID != filter.CategoryID {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(link.Title), needle) &&
			!strings.Contains(strings.ToLower(link.Description), needle) {
			return false
		}
	}
	return true
}
