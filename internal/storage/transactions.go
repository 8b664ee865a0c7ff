package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/hucha-app/hucha/internal/common"
	"github.com/hucha-app/hucha/internal/model"
	"github.com/hucha-app/hucha/internal/service"
	"github.com/shopspring/decimal"
)

const transactionColumns = `id, amount, description, category, date, paid_by,
	is_shared, is_recurring, currency, kind, status, group_id,
	calendar_event_id, calendar_sync_state, created_at`

// SaveTransaction inserts a new transaction.
func (s *SQLiteStorage) SaveTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	query := `
		INSERT INTO transactions (
			id, amount, description, category, date, paid_by,
			is_shared, is_recurring, currency, kind, status, group_id,
			calendar_event_id, calendar_sync_state
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		txn.ID,
		txn.Amount.String(),
		txn.Description,
		txn.Category,
		txn.Date,
		txn.PaidBy,
		txn.Shared,
		txn.Recurring,
		txn.Currency,
		string(txn.Kind),
		string(txn.Status),
		nullableString(txn.GroupID),
		nullableString(txn.CalendarLink.EventID),
		string(txn.CalendarLink.State),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
	}

	s.notifier.publish(service.Change{Table: "transactions", ID: txn.ID, Op: service.OpInsert})
	return nil
}

// GetTransactions returns the transactions visible to a viewer, most recent
// first: the group's shared rows plus the viewer's own individual
// (groupless) rows. An empty groupID matches only the viewer's own rows.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, groupID, viewerID string, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, ErrInvalidDateRange
	}

	query := "SELECT " + transactionColumns + " FROM transactions"
	args := []any{}

	if groupID != "" {
		query += " WHERE (group_id = ? OR (group_id IS NULL AND paid_by = ?))"
		args = append(args, groupID, viewerID)
	} else {
		query += " WHERE group_id IS NULL AND paid_by = ?"
		args = append(args, viewerID)
	}

	if filter.StartDate != nil {
		query += " AND date >= ?"
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		query += " AND date <= ?"
		args = append(args, *filter.EndDate)
	}
	if filter.Kind != "" {
		query += " AND kind = ?"
		args = append(args, string(filter.Kind))
	}

	query += " ORDER BY date DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	slog.Debug("retrieved transactions", "count", len(transactions), "group", groupID)
	return transactions, nil
}

// GetTransactionByID returns a single transaction.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)

	txn, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// UpdateTransaction replaces all mutable fields of a transaction.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	query := `
		UPDATE transactions SET
			amount = ?, description = ?, category = ?, date = ?, paid_by = ?,
			is_shared = ?, is_recurring = ?, currency = ?, kind = ?, status = ?,
			group_id = ?, calendar_event_id = ?, calendar_sync_state = ?
		WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query,
		txn.Amount.String(),
		txn.Description,
		txn.Category,
		txn.Date,
		txn.PaidBy,
		txn.Shared,
		txn.Recurring,
		txn.Currency,
		string(txn.Kind),
		string(txn.Status),
		nullableString(txn.GroupID),
		nullableString(txn.CalendarLink.EventID),
		string(txn.CalendarLink.State),
		txn.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", txn.ID, err)
	}
	if err := requireRow(result, txn.ID); err != nil {
		return err
	}

	s.notifier.publish(service.Change{Table: "transactions", ID: txn.ID, Op: service.OpUpdate})
	return nil
}

// UpdateTransactionStatus flips a transaction's lifecycle status.
func (s *SQLiteStorage) UpdateTransactionStatus(ctx context.Context, id string, status model.TransactionStatus) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE transactions SET status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update status of transaction %s: %w", id, err)
	}
	if err := requireRow(result, id); err != nil {
		return err
	}

	s.notifier.publish(service.Change{Table: "transactions", ID: id, Op: service.OpUpdate})
	return nil
}

// UpdateCalendarLink persists a transaction's calendar linkage.
func (s *SQLiteStorage) UpdateCalendarLink(ctx context.Context, id string, link model.CalendarLink) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE transactions SET calendar_event_id = ?, calendar_sync_state = ? WHERE id = ?",
		nullableString(link.EventID), string(link.State), id)
	if err != nil {
		return fmt.Errorf("failed to update calendar link of transaction %s: %w", id, err)
	}
	if err := requireRow(result, id); err != nil {
		return err
	}

	s.notifier.publish(service.Change{Table: "transactions", ID: id, Op: service.OpUpdate})
	return nil
}

// GetTransactionsPendingSync returns the transactions whose calendar sync
// is waiting for credentials.
func (s *SQLiteStorage) GetTransactionsPendingSync(ctx context.Context, groupID, viewerID string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := "SELECT " + transactionColumns + ` FROM transactions
		WHERE calendar_sync_state = ?`
	args := []any{string(model.LinkPending)}

	if groupID != "" {
		query += " AND (group_id = ? OR (group_id IS NULL AND paid_by = ?))"
		args = append(args, groupID, viewerID)
	} else {
		query += " AND group_id IS NULL AND paid_by = ?"
		args = append(args, viewerID)
	}
	query += " ORDER BY date ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending-sync transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending-sync transactions: %w", err)
	}
	return transactions, nil
}

// DeleteTransaction removes a transaction permanently.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", id, err)
	}
	if err := requireRow(result, id); err != nil {
		return err
	}

	s.notifier.publish(service.Change{Table: "transactions", ID: id, Op: service.OpDelete})
	return nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var (
		txn       model.Transaction
		amount    string
		kind      string
		status    string
		groupID   sql.NullString
		paidBy    sql.NullString
		category  sql.NullString
		currency  sql.NullString
		eventID   sql.NullString
		syncState string
	)

	err := row.Scan(
		&txn.ID,
		&amount,
		&txn.Description,
		&category,
		&txn.Date,
		&paidBy,
		&txn.Shared,
		&txn.Recurring,
		&currency,
		&kind,
		&status,
		&groupID,
		&eventID,
		&syncState,
		&txn.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}

	txn.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}

	txn.Category = category.String
	txn.PaidBy = paidBy.String
	txn.Currency = currency.String
	txn.GroupID = groupID.String
	txn.Kind = model.TransactionKind(kind)
	txn.Status = model.TransactionStatus(status)
	txn.CalendarLink = model.CalendarLink{
		State:   model.LinkState(syncState),
		EventID: eventID.String,
	}

	return &txn, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func requireRow(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	return nil
}
