package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/hucha-app/hucha/internal/common"
	"github.com/hucha-app/hucha/internal/model"
	"github.com/hucha-app/hucha/internal/reconcile"
	"github.com/hucha-app/hucha/internal/service"
)

// SweepPastDue marks every pending transaction dated strictly before today
// as paid. The reclassification is logged but otherwise silent. Returns the
// number of transactions flipped.
func (s *Store) SweepPastDue(ctx context.Context) (int, error) {
	today := time.Now()
	startOfToday := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())

	var due []model.Transaction
	s.mu.RLock()
	for _, txn := range s.transactions {
		if txn.Status == model.StatusPending && txn.Date.Before(startOfToday) {
			due = append(due, txn)
		}
	}
	s.mu.RUnlock()

	flipped := 0
	for _, txn := range due {
		if err := s.storage.UpdateTransactionStatus(ctx, txn.ID, model.StatusPaid); err != nil {
			return flipped, fmt.Errorf("failed to settle past-due transaction %s: %w", txn.ID, err)
		}
		s.mu.Lock()
		if i := s.indexOf(txn.ID); i >= 0 {
			s.transactions[i].Status = model.StatusPaid
		}
		s.mu.Unlock()
		s.logger.Info("past-due transaction marked paid",
			"transaction", txn.ID,
			"description", txn.Description,
			"date", txn.Date.Format("2006-01-02"))
		flipped++
	}

	if flipped > 0 {
		s.notify()
	}
	return flipped, nil
}

// SweepPendingSync queues calendar event creation for every transaction
// whose link was deferred because no calendar session was available.
func (s *Store) SweepPendingSync(ctx context.Context) (int, error) {
	if s.calendar == nil {
		return 0, common.ErrCalendarSession
	}

	pending, err := s.storage.GetTransactionsPendingSync(ctx, s.profile.GroupID, s.profile.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending-sync transactions: %w", err)
	}

	for _, txn := range pending {
		s.enqueueCalendarCreate(txn)
	}
	return len(pending), nil
}

// AutoLinkEvents links unlinked stored transactions to same-day events with
// matching titles, then refreshes the cache so the new links are visible.
func (s *Store) AutoLinkEvents(ctx context.Context, events []service.Event) (int, error) {
	linked, err := reconcile.AutoLink(ctx, s.storage, s.Transactions(), events)
	if err != nil {
		return linked, err
	}
	if linked > 0 {
		if err := s.refresh(ctx); err != nil {
			return linked, err
		}
		s.notify()
	}
	return linked, nil
}
