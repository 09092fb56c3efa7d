package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/linkboard/linkboard/internal/directory"
)

// CategoryStore keeps categories in process memory.
type CategoryStore struct {
	mu         sync.RWMutex
	categories map[string]directory.Category
}

// NewCategoryStore constructs a CategoryStore.
func NewCategoryStore() *CategoryStore {
	return &CategoryStore{categories: make(map[string]directory.Category)}
}

// Insert stores a new category. Names are unique.
func (s *CategoryStore) Insert(_ context.Context, category directory.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.categories[category.ID]; exists {
		return errors.New("category already exists")
	}
	for _, existing := range s.categories {
		if existing.Name == category.Name {
			return errors.New("category name already exists")
		}
	}
	s.categories[category.ID] = category
	return nil
}

// Get fetches a category by ID.
func (s *CategoryStore) Get(_ context.Context, id string) (directory.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	category, ok := s.categories[id]
	if !ok {
		return directory.Category{}, directory.ErrNotFound
	}
	return category, nil
}

// Update replaces the stored display fields and returns the result.
func (s *CategoryStore) Update(_ context.Context, category directory.Category) (directory.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.categories[category.ID]
	if !ok {
		return directory.Category{}, directory.ErrNotFound
	}
	if category.Name != "" {
		existing.Name = category.Name
		existing.Slug = category.Slug
	}
	if category.Description != "" {
		existing.Description = category.Description
	}
	if category.Icon != "" {
		existing.Icon = category.Icon
	}
	if category.Color != "" {
		existing.Color = category.Color
	}
	s.categories[category.ID] = existing
	return existing, nil
}

// Delete removes a category.
func (s *CategoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return directory.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

// List returns all categories sorted by name.
func (s *CategoryStore) List(_ context.Context) ([]directory.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]directory.Category, 0, len(s.categories))
	for _, category := range s.categories {
		out = append(out, category)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
