// Package recur projects recurring transactions onto calendar days.
//
// A recurring transaction is stored once and fires on the same day of
// month from its own month onward. Occurrences for other days are never
// materialized rows; they are synthesized at query time and suppressed as
// soon as a matching concrete transaction exists for the day.
package recur

import (
	"time"

	"github.com/google/uuid"
	"github.com/hucha-app/hucha/internal/model"
)

// ProjectDay returns every transaction visible on the given day: concrete
// transactions dated that day plus one virtual occurrence per recurring
// source whose day of month matches.
//
// A source anchored on day 29-31 produces no occurrence in months too
// short to contain that day; there is no end-of-month rounding.
func ProjectDay(transactions []model.Transaction, day time.Time) []model.Transaction {
	var reals []model.Transaction
	var sources []model.Transaction

	for _, t := range transactions {
		switch {
		case !t.Recurring && sameDay(t.Date, day):
			reals = append(reals, t)
		case t.Recurring && fires(t.Date, day):
			sources = append(sources, t)
		}
	}

	result := reals

	for _, src := range sources {
		if sameDay(src.Date, day) {
			// The source's own date shows the stored row, never a
			// virtual duplicate.
			result = append(result, src)
			continue
		}
		if realized(&src, reals) {
			continue
		}
		result = append(result, synthesize(&src, day))
	}

	return result
}

// ProjectRange projects every day in [start, end] inclusive and returns
// the union, ordered by day.
func ProjectRange(transactions []model.Transaction, start, end time.Time) []model.Transaction {
	var result []model.Transaction
	for day := startOfDay(start); !day.After(end); day = day.AddDate(0, 0, 1) {
		result = append(result, ProjectDay(transactions, day)...)
	}
	return result
}

// Promote builds the concrete transaction that replaces a confirmed
// virtual occurrence: same movement, dated on the projected day, settled,
// and not itself recurring. The source transaction is never mutated.
func Promote(source *model.Transaction, day time.Time) model.Transaction {
	return model.Transaction{
		ID:           uuid.New().String(),
		Amount:       source.Amount,
		Description:  source.Description,
		Category:     source.Category,
		Date:         startOfDay(day),
		PaidBy:       source.PaidBy,
		Shared:       source.Shared,
		Recurring:    false,
		Currency:     source.Currency,
		Kind:         source.Kind,
		Status:       model.StatusPaid,
		GroupID:      source.GroupID,
		CalendarLink: model.NoLink(),
	}
}

// fires reports whether a recurring source anchored on anchor produces an
// occurrence on day: matching day of month, never before the anchor's own
// month.
func fires(anchor, day time.Time) bool {
	if anchor.Day() != day.Day() {
		return false
	}
	return !day.Before(startOfMonth(anchor))
}

// realized reports whether one of the day's concrete transactions already
// represents this source's occurrence.
func realized(src *model.Transaction, reals []model.Transaction) bool {
	for i := range reals {
		if src.Matches(&reals[i]) {
			return true
		}
	}
	return false
}

func synthesize(src *model.Transaction, day time.Time) model.Transaction {
	occ := *src
	occ.ID = model.VirtualID(src.ID, day)
	occ.SourceID = src.ID
	occ.Date = startOfDay(day)
	// Away from its own date a projection is always still pending.
	occ.Status = model.StatusPending
	return occ
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
