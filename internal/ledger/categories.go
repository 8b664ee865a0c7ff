package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hucha-app/hucha/internal/common"
	"github.com/hucha-app/hucha/internal/model"
)

// AddCategory creates a category in the active group.
func (s *Store) AddCategory(ctx context.Context, name, icon, color string) (model.Category, error) {
	if !s.profile.InGroup() {
		return model.Category{}, common.ErrNoGroup
	}

	cat := model.Category{
		ID:        uuid.NewString(),
		Name:      name,
		Icon:      icon,
		Color:     color,
		GroupID:   s.profile.GroupID,
		CreatedAt: time.Now(),
	}

	err := s.commit(ctx,
		func() { s.categories = append(s.categories, cat) },
		func() {
			if i := s.categoryIndex(cat.ID); i >= 0 {
				s.categories = append(s.categories[:i], s.categories[i+1:]...)
			}
		},
		func(ctx context.Context) error { return s.storage.SaveCategory(ctx, &cat) },
	)
	if err != nil {
		return model.Category{}, fmt.Errorf("failed to add category: %w", err)
	}
	return cat, nil
}

// EditCategory updates a category's display fields. Transactions keep
// referencing categories by name, so renames intentionally leave old
// entries pointing at the previous name.
func (s *Store) EditCategory(ctx context.Context, id, name, icon, color string) error {
	s.mu.RLock()
	i := s.categoryIndex(id)
	if i < 0 {
		s.mu.RUnlock()
		return common.ErrNotFound
	}
	prev := s.categories[i]
	s.mu.RUnlock()

	updated := prev
	updated.Name = name
	updated.Icon = icon
	updated.Color = color

	err := s.commit(ctx,
		func() {
			if i := s.categoryIndex(id); i >= 0 {
				s.categories[i] = updated
			}
		},
		func() {
			if i := s.categoryIndex(id); i >= 0 {
				s.categories[i] = prev
			}
		},
		func(ctx context.Context) error { return s.storage.UpdateCategory(ctx, &updated) },
	)
	if err != nil {
		return fmt.Errorf("failed to edit category: %w", err)
	}
	return nil
}

// DeleteCategory removes a category. Existing transactions keep their
// category name and simply dangle.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	s.mu.RLock()
	i := s.categoryIndex(id)
	if i < 0 {
		s.mu.RUnlock()
		return common.ErrNotFound
	}
	prev := s.categories[i]
	s.mu.RUnlock()

	err := s.commit(ctx,
		func() {
			if i := s.categoryIndex(id); i >= 0 {
				s.categories = append(s.categories[:i], s.categories[i+1:]...)
			}
		},
		func() {
			// Rollback restores the row at its original position.
			at := min(i, len(s.categories))
			rest := append([]model.Category{prev}, s.categories[at:]...)
			s.categories = append(s.categories[:at:at], rest...)
		},
		func(ctx context.Context) error { return s.storage.DeleteCategory(ctx, id) },
	)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

// categoryIndex returns the cache position of a category id, or -1.
// Callers must hold the lock.
func (s *Store) categoryIndex(id string) int {
	for i := range s.categories {
		if s.categories[i].ID == id {
			return i
		}
	}
	return -1
}
