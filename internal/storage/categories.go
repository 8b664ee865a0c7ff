package storage

import (
	"context"
	"fmt"
	"log/slog"

	"database/sql"

	"github.com/google/uuid"
	"github.com/hucha-app/hucha/internal/common"
	"github.com/hucha-app/hucha/internal/model"
	"github.com/hucha-app/hucha/internal/service"
)

// defaultCategories is the starter set inserted for brand-new groups.
var defaultCategories = []model.Category{
	{Name: "Comida", Icon: "🍔", Color: "bg-orange-500"},
	{Name: "Casa", Icon: "🏠", Color: "bg-blue-500"},
	{Name: "Servicios", Icon: "💡", Color: "bg-yellow-500"},
	{Name: "Entretenimiento", Icon: "🎬", Color: "bg-purple-500"},
	{Name: "Transporte", Icon: "🚗", Color: "bg-red-500"},
	{Name: "Compras", Icon: "🛍️", Color: "bg-pink-500"},
	{Name: "Viajes", Icon: "✈️", Color: "bg-sky-500"},
	{Name: "Otros", Icon: "📝", Color: "bg-gray-500"},
}

// GetCategories returns a group's categories ordered by name.
func (s *SQLiteStorage) GetCategories(ctx context.Context, groupID string) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, icon, color, group_id, created_at
		FROM categories`
	args := []any{}

	if groupID != "" {
		query += " WHERE group_id = ?"
		args = append(args, groupID)
	} else {
		query += " WHERE group_id IS NULL"
	}
	query += " ORDER BY name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		cat, scanErr := scanCategory(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		categories = append(categories, *cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories), "group", groupID)
	return categories, nil
}

// SaveCategory inserts a new category.
func (s *SQLiteStorage) SaveCategory(ctx context.Context, cat *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(cat); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, icon, color, group_id)
		VALUES (?, ?, ?, ?, ?)`,
		cat.ID, cat.Name, cat.Icon, cat.Color, nullableString(cat.GroupID))
	if err != nil {
		return fmt.Errorf("failed to insert category %s: %w", cat.Name, err)
	}

	s.notifier.publish(service.Change{Table: "categories", ID: cat.ID, Op: service.OpInsert})
	return nil
}

// UpdateCategory updates a category's display fields.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, cat *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(cat); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, icon = ?, color = ? WHERE id = ?`,
		cat.Name, cat.Icon, cat.Color, cat.ID)
	if err != nil {
		return fmt.Errorf("failed to update category %s: %w", cat.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("category %s: %w", cat.ID, common.ErrNotFound)
	}

	s.notifier.publish(service.Change{Table: "categories", ID: cat.ID, Op: service.OpUpdate})
	return nil
}

// DeleteCategory removes a category. Transactions keep the category name
// as plain text, so nothing cascades.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete category %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("category %s: %w", id, common.ErrNotFound)
	}

	s.notifier.publish(service.Change{Table: "categories", ID: id, Op: service.OpDelete})
	return nil
}

// SeedDefaultCategories inserts the starter categories for a group that
// has none yet and returns the resulting set. Calling it for a group that
// already has categories is a no-op returning the existing set.
func (s *SQLiteStorage) SeedDefaultCategories(ctx context.Context, groupID string) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(groupID, "groupID"); err != nil {
		return nil, err
	}

	existing, err := s.GetCategories(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing, nil
	}

	for _, def := range defaultCategories {
		cat := def
		cat.ID = uuid.New().String()
		cat.GroupID = groupID
		if err := s.SaveCategory(ctx, &cat); err != nil {
			return nil, fmt.Errorf("failed to seed category %s: %w", cat.Name, err)
		}
	}

	slog.Info("seeded default categories", "group", groupID, "count", len(defaultCategories))
	return s.GetCategories(ctx, groupID)
}

func scanCategory(rows *sql.Rows) (*model.Category, error) {
	var (
		cat     model.Category
		icon    sql.NullString
		color   sql.NullString
		groupID sql.NullString
	)
	if err := rows.Scan(&cat.ID, &cat.Name, &icon, &color, &groupID, &cat.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan category: %w", err)
	}
	cat.Icon = icon.String
	cat.Color = color.String
	cat.GroupID = groupID.String
	return &cat, nil
}
