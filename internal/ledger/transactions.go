package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hucha-app/hucha/internal/common"
	"github.com/hucha-app/hucha/internal/model"
	"github.com/hucha-app/hucha/internal/recur"
	"github.com/hucha-app/hucha/internal/tasks"
)

// AddTransaction persists a new transaction optimistically. When syncToCalendar
// is set the calendar write is queued in the background; without an
// authenticated calendar session or a task queue the link is recorded as
// pending instead so a later sweep can pick it up.
func (s *Store) AddTransaction(ctx context.Context, txn model.Transaction, syncToCalendar bool) (model.Transaction, error) {
	txn.ID = uuid.NewString()
	txn.CreatedAt = time.Now()
	txn.PaidBy = s.profile.ID
	if txn.Currency == "" {
		txn.Currency = model.DefaultCurrency
	}
	if txn.Shared {
		txn.GroupID = s.profile.GroupID
	} else {
		txn.GroupID = ""
	}
	txn.CalendarLink = model.NoLink()
	if syncToCalendar && (s.calendar == nil || s.queue == nil) {
		txn.CalendarLink = model.PendingLink()
	}

	if err := txn.Validate(); err != nil {
		return model.Transaction{}, err
	}

	err := s.commit(ctx,
		func() { s.transactions = append([]model.Transaction{txn}, s.transactions...) },
		func() {
			if i := s.indexOf(txn.ID); i >= 0 {
				s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			}
		},
		func(ctx context.Context) error { return s.storage.SaveTransaction(ctx, &txn) },
	)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to add transaction: %w", err)
	}

	if syncToCalendar && s.calendar != nil && s.queue != nil {
		s.enqueueCalendarCreate(txn)
	}

	return txn, nil
}

// EditTransaction replaces a stored transaction's user-editable fields.
// Virtual occurrences cannot be edited; change the recurring source instead.
func (s *Store) EditTransaction(ctx context.Context, id string, updated model.Transaction) error {
	if model.IsVirtualID(id) {
		return common.ErrVirtualReadOnly
	}

	s.mu.RLock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.RUnlock()
		return common.ErrNotFound
	}
	prev := s.transactions[i]
	s.mu.RUnlock()

	updated.ID = prev.ID
	updated.CreatedAt = prev.CreatedAt
	updated.CalendarLink = prev.CalendarLink
	if updated.Shared {
		updated.GroupID = s.profile.GroupID
	} else {
		updated.GroupID = ""
	}
	if err := updated.Validate(); err != nil {
		return err
	}

	err := s.commit(ctx,
		func() {
			if i := s.indexOf(id); i >= 0 {
				s.transactions[i] = updated
			}
		},
		func() {
			if i := s.indexOf(id); i >= 0 {
				s.transactions[i] = prev
			}
		},
		func(ctx context.Context) error { return s.storage.UpdateTransaction(ctx, &updated) },
	)
	if err != nil {
		return fmt.Errorf("failed to edit transaction: %w", err)
	}

	if prev.CalendarLink.Linked() && s.calendar != nil && s.queue != nil {
		s.enqueueCalendarUpdate(prev.CalendarLink.EventID, updated)
	}
	return nil
}

// DeleteTransaction removes a stored transaction. A linked calendar event is
// deleted in the background on a best-effort basis.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	if model.IsVirtualID(id) {
		return common.ErrVirtualReadOnly
	}

	s.mu.RLock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.RUnlock()
		return common.ErrNotFound
	}
	prev := s.transactions[i]
	s.mu.RUnlock()

	err := s.commit(ctx,
		func() {
			if i := s.indexOf(id); i >= 0 {
				s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			}
		},
		func() {
			// Rollback restores the row at its original position.
			at := min(i, len(s.transactions))
			rest := append([]model.Transaction{prev}, s.transactions[at:]...)
			s.transactions = append(s.transactions[:at:at], rest...)
		},
		func(ctx context.Context) error { return s.storage.DeleteTransaction(ctx, id) },
	)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	if prev.CalendarLink.Linked() && s.calendar != nil && s.queue != nil {
		s.enqueueCalendarDelete(prev.CalendarLink.EventID)
	}
	return nil
}

// MarkPaid flips a pending transaction to paid. A virtual occurrence id is
// promoted into a concrete paid transaction for that day; the recurring
// source itself is never touched.
func (s *Store) MarkPaid(ctx context.Context, id string) (model.Transaction, error) {
	if model.IsVirtualID(id) {
		return s.promoteVirtual(ctx, id)
	}

	s.mu.RLock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.RUnlock()
		return model.Transaction{}, common.ErrNotFound
	}
	prev := s.transactions[i]
	s.mu.RUnlock()

	if prev.Status == model.StatusPaid {
		return prev, nil
	}

	paid := prev
	paid.Status = model.StatusPaid

	err := s.commit(ctx,
		func() {
			if i := s.indexOf(id); i >= 0 {
				s.transactions[i] = paid
			}
		},
		func() {
			if i := s.indexOf(id); i >= 0 {
				s.transactions[i] = prev
			}
		},
		func(ctx context.Context) error {
			return s.storage.UpdateTransactionStatus(ctx, id, model.StatusPaid)
		},
	)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to mark transaction paid: %w", err)
	}
	return paid, nil
}

func (s *Store) promoteVirtual(ctx context.Context, id string) (model.Transaction, error) {
	sourceID, day, ok := model.ParseVirtualID(id)
	if !ok {
		return model.Transaction{}, fmt.Errorf("malformed occurrence id %q", id)
	}

	s.mu.RLock()
	i := s.indexOf(sourceID)
	if i < 0 {
		s.mu.RUnlock()
		return model.Transaction{}, fmt.Errorf("recurring source %s: %w", sourceID, common.ErrNotFound)
	}
	source := s.transactions[i]
	s.mu.RUnlock()

	promoted := recur.Promote(&source, day)

	err := s.commit(ctx,
		func() { s.transactions = append([]model.Transaction{promoted}, s.transactions...) },
		func() {
			if i := s.indexOf(promoted.ID); i >= 0 {
				s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			}
		},
		func(ctx context.Context) error { return s.storage.SaveTransaction(ctx, &promoted) },
	)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to promote occurrence: %w", err)
	}
	return promoted, nil
}

func (s *Store) enqueueCalendarCreate(txn model.Transaction) {
	if s.queue == nil {
		return
	}
	err := s.queue.Enqueue(tasks.Task{
		Name: "calendar-create " + txn.ID,
		Run: func(ctx context.Context) error {
			eventID, err := s.calendar.CreateEvent(ctx, &txn)
			if err != nil {
				return fmt.Errorf("%w: %v", common.ErrCalendarAPI, err)
			}
			link := model.LinkTo(eventID)
			if err := s.storage.UpdateCalendarLink(ctx, txn.ID, link); err != nil {
				return err
			}
			s.setLink(txn.ID, link)
			return nil
		},
	})
	if err != nil {
		s.logger.Warn("calendar create not queued", "transaction", txn.ID, "error", err)
	}
}

func (s *Store) enqueueCalendarUpdate(eventID string, txn model.Transaction) {
	err := s.queue.Enqueue(tasks.Task{
		Name: "calendar-update " + txn.ID,
		Run: func(ctx context.Context) error {
			if err := s.calendar.UpdateEvent(ctx, eventID, &txn); err != nil {
				return fmt.Errorf("%w: %v", common.ErrCalendarAPI, err)
			}
			return nil
		},
	})
	if err != nil {
		s.logger.Warn("calendar update not queued", "transaction", txn.ID, "error", err)
	}
}

func (s *Store) enqueueCalendarDelete(eventID string) {
	err := s.queue.Enqueue(tasks.Task{
		Name: "calendar-delete " + eventID,
		Run: func(ctx context.Context) error {
			if err := s.calendar.DeleteEvent(ctx, eventID); err != nil {
				return fmt.Errorf("%w: %v", common.ErrCalendarAPI, err)
			}
			return nil
		},
	})
	if err != nil {
		s.logger.Warn("calendar delete not queued", "event", eventID, "error", err)
	}
}

func (s *Store) setLink(id string, link model.CalendarLink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		s.transactions[i].CalendarLink = link
	}
}
