package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hucha-app/hucha/internal/common"
	"github.com/hucha-app/hucha/internal/model"
	"github.com/hucha-app/hucha/internal/service"
)

const profileColumns = `id, name, email, color, hex_color, group_id, status, role, password_hash, created_at`

// GetProfile returns a profile by id.
func (s *SQLiteStorage) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE id = ?", id)
	return scanProfileRow(row, id)
}

// GetProfileByEmail returns a profile by email, for login.
func (s *SQLiteStorage) GetProfileByEmail(ctx context.Context, email string) (*model.Profile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(email, "email"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE email = ?", email)
	return scanProfileRow(row, email)
}

// GetProfilesByGroup returns every member of a group, active or pending.
// An empty groupID returns no one; a group-less session only ever sees
// its own profile via GetProfile.
func (s *SQLiteStorage) GetProfilesByGroup(ctx context.Context, groupID string) ([]model.Profile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if groupID == "" {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE group_id = ? ORDER BY name", groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var profiles []model.Profile
	for rows.Next() {
		p, scanErr := scanProfile(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}
	return profiles, nil
}

// SaveProfile inserts or replaces a profile.
func (s *SQLiteStorage) SaveProfile(ctx context.Context, profile *model.Profile) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateProfile(profile); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, name, email, color, hex_color, group_id, status, role, password_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			color = excluded.color,
			hex_color = excluded.hex_color,
			group_id = excluded.group_id,
			status = excluded.status,
			role = excluded.role,
			password_hash = excluded.password_hash`,
		profile.ID,
		profile.Name,
		nullableString(profile.Email),
		profile.Color,
		profile.HexColor,
		nullableString(profile.GroupID),
		string(profile.Status),
		string(profile.Role),
		nullableString(profile.PasswordHash),
	)
	if err != nil {
		return fmt.Errorf("failed to save profile %s: %w", profile.ID, err)
	}

	s.notifier.publish(service.Change{Table: "profiles", ID: profile.ID, Op: service.OpUpdate})
	return nil
}

// UpdateProfileGroup moves a profile into a group. Joining an existing
// group puts the member in pending state until an admin approves them.
func (s *SQLiteStorage) UpdateProfileGroup(ctx context.Context, id, groupID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE profiles SET group_id = ? WHERE id = ?", nullableString(groupID), id)
	if err != nil {
		return fmt.Errorf("failed to update group of profile %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("profile %s: %w", id, common.ErrNotFound)
	}

	s.notifier.publish(service.Change{Table: "profiles", ID: id, Op: service.OpUpdate})
	return nil
}

// ApproveMember marks a pending member as active.
func (s *SQLiteStorage) ApproveMember(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE profiles SET status = ? WHERE id = ? AND status = ?",
		string(model.MemberActive), id, string(model.MemberPending))
	if err != nil {
		return fmt.Errorf("failed to approve member %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("pending member %s: %w", id, common.ErrNotFound)
	}

	s.notifier.publish(service.Change{Table: "profiles", ID: id, Op: service.OpUpdate})
	return nil
}

// RemoveMember detaches a profile from its group. The profile itself
// survives; its individual transactions are untouched.
func (s *SQLiteStorage) RemoveMember(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE profiles SET group_id = NULL, status = ? WHERE id = ?",
		string(model.MemberActive), id)
	if err != nil {
		return fmt.Errorf("failed to remove member %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("profile %s: %w", id, common.ErrNotFound)
	}

	s.notifier.publish(service.Change{Table: "profiles", ID: id, Op: service.OpUpdate})
	return nil
}

func scanProfileRow(row *sql.Row, key string) (*model.Profile, error) {
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("profile %s: %w", key, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func scanProfile(row rowScanner) (*model.Profile, error) {
	var (
		p            model.Profile
		email        sql.NullString
		color        sql.NullString
		hexColor     sql.NullString
		groupID      sql.NullString
		status       string
		role         string
		passwordHash sql.NullString
	)

	err := row.Scan(&p.ID, &p.Name, &email, &color, &hexColor, &groupID, &status, &role, &passwordHash, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan profile: %w", err)
	}

	p.Email = email.String
	p.Color = color.String
	p.HexColor = hexColor.String
	p.GroupID = groupID.String
	p.Status = model.MemberStatus(status)
	p.Role = model.MemberRole(role)
	p.PasswordHash = passwordHash.String
	return &p, nil
}
