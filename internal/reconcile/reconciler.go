// Package reconcile matches ledger transactions against external calendar
// events for the same day.
//
// Calendar providers expose per-instance ids for recurring series
// (<seriesID>_<instanceSuffix>) while a recurring transaction stores only
// the series-master id, so exact matching alone would miss every
// occurrence after the first; the prefix rule bridges that. Fuzzy title
// matching is a safety net for events created before explicit linkage
// existed and is only applied to transactions without a confirmed link.
package reconcile

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/hucha-app/hucha/internal/model"
	"github.com/hucha-app/hucha/internal/service"
)

// Annotated is a day's transaction together with its calendar sync state.
type Annotated struct {
	Transaction model.Transaction
	Synced      bool
}

// Result is the outcome of reconciling one day.
type Result struct {
	// Transactions is the day's full set, flagged where a calendar event
	// backs them.
	Transactions []Annotated
	// Standalone is the events that matched no transaction and render on
	// their own.
	Standalone []service.Event
}

// Reconcile pairs a day's transactions with the day's external events.
// Per event, an exact or series-instance linkage-id match wins over any
// fuzzy title match; events that match nothing are returned standalone.
func Reconcile(dayTransactions []model.Transaction, dayEvents []service.Event) Result {
	annotated := make([]Annotated, len(dayTransactions))
	for i, t := range dayTransactions {
		annotated[i] = Annotated{Transaction: t}
	}

	var standalone []service.Event

	for _, event := range dayEvents {
		if idx := matchByLink(annotated, event.ID); idx >= 0 {
			annotated[idx].Synced = true
			continue
		}
		if idx := matchByTitle(annotated, event.Summary); idx >= 0 {
			annotated[idx].Synced = true
			continue
		}
		standalone = append(standalone, event)
	}

	return Result{Transactions: annotated, Standalone: standalone}
}

// AutoLink back-fills linkage ids onto wholly unlinked transactions whose
// description matches a same-day event title, persisting the discovered
// id so later reconciliations take the exact-id path. Transactions in
// pending-sync state are skipped; the sync sweep owns those.
func AutoLink(ctx context.Context, storage service.Storage, transactions []model.Transaction, events []service.Event) (int, error) {
	linked := 0
	for i := range transactions {
		txn := &transactions[i]
		if txn.IsVirtual() || txn.CalendarLink.State != model.LinkNone {
			continue
		}

		for _, event := range events {
			if !sameDay(txn.Date, event.Start) || !titlesMatch(txn.Description, event.Summary) {
				continue
			}

			if err := storage.UpdateCalendarLink(ctx, txn.ID, model.LinkTo(event.ID)); err != nil {
				return linked, err
			}
			txn.CalendarLink = model.LinkTo(event.ID)
			linked++
			slog.Debug("auto-linked transaction to calendar event",
				"transaction", txn.ID, "event", event.ID)
			break
		}
	}
	return linked, nil
}

// matchByLink returns the index of the transaction whose linkage id
// matches the event id, or -1. Recurring transactions also match series
// instances: the linkage id followed by an underscore-prefixed suffix. A
// bare substring hit is never a match.
func matchByLink(annotated []Annotated, eventID string) int {
	for i := range annotated {
		link := annotated[i].Transaction.CalendarLink
		if !link.Linked() {
			continue
		}
		if link.EventID == eventID {
			return i
		}
		if annotated[i].Transaction.Recurring && strings.HasPrefix(eventID, link.EventID+"_") {
			return i
		}
	}
	return -1
}

// matchByTitle returns the index of the first not-yet-definitively-linked
// transaction whose description fuzzily matches the event title, or -1.
func matchByTitle(annotated []Annotated, summary string) int {
	for i := range annotated {
		txn := &annotated[i].Transaction
		if txn.CalendarLink.Linked() {
			continue
		}
		if titlesMatch(txn.Description, summary) {
			return i
		}
	}
	return -1
}

// titlesMatch case-folds and trims both strings and accepts equality or
// containment in either direction.
func titlesMatch(description, summary string) bool {
	a := strings.ToLower(strings.TrimSpace(description))
	b := strings.ToLower(strings.TrimSpace(summary))
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
