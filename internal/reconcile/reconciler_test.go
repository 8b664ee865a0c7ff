package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hucha-app/hucha/internal/model"
	"github.com/hucha-app/hucha/internal/service"
)

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
}

func txn(id, desc string, link model.CalendarLink, recurring bool) model.Transaction {
	return model.Transaction{
		ID:           id,
		Description:  desc,
		Amount:       decimal.NewFromInt(100),
		Date:         day(15),
		Kind:         model.KindExpense,
		Status:       model.StatusPending,
		Recurring:    recurring,
		CalendarLink: link,
	}
}

func event(id, summary string) service.Event {
	return service.Event{ID: id, Summary: summary, Start: day(15), End: day(15).Add(time.Hour)}
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name           string
		transactions   []model.Transaction
		events         []service.Event
		wantSynced     map[string]bool
		wantStandalone int
	}{
		{
			name:         "exact linkage id match",
			transactions: []model.Transaction{txn("t1", "Alquiler", model.LinkTo("ev-1"), false)},
			events:       []service.Event{event("ev-1", "whatever title")},
			wantSynced:   map[string]bool{"t1": true},
		},
		{
			name:         "recurring matches series instance id",
			transactions: []model.Transaction{txn("t1", "Alquiler", model.LinkTo("ev-1"), true)},
			events:       []service.Event{event("ev-1_20260315T120000Z", "Alquiler")},
			wantSynced:   map[string]bool{"t1": true},
		},
		{
			name:           "non-recurring does not match series instances",
			transactions:   []model.Transaction{txn("t1", "Alquiler", model.LinkTo("ev-1"), false)},
			events:         []service.Event{event("ev-1_20260315T120000Z", "unrelated")},
			wantSynced:     map[string]bool{"t1": false},
			wantStandalone: 1,
		},
		{
			name:           "bare substring id is not a link match",
			transactions:   []model.Transaction{txn("t1", "nope", model.LinkTo("ev-1"), true)},
			events:         []service.Event{event("ev-123", "unrelated")},
			wantSynced:     map[string]bool{"t1": false},
			wantStandalone: 1,
		},
		{
			name:         "fuzzy title match for unlinked transaction",
			transactions: []model.Transaction{txn("t1", "Alquiler depto", model.NoLink(), false)},
			events:       []service.Event{event("ev-9", "alquiler")},
			wantSynced:   map[string]bool{"t1": true},
		},
		{
			name:         "pending-sync transaction still gets fuzzy matching",
			transactions: []model.Transaction{txn("t1", "Luz", model.PendingLink(), false)},
			events:       []service.Event{event("ev-9", "Luz")},
			wantSynced:   map[string]bool{"t1": true},
		},
		{
			name:           "linked transaction never falls back to titles",
			transactions:   []model.Transaction{txn("t1", "Alquiler", model.LinkTo("ev-other"), false)},
			events:         []service.Event{event("ev-9", "Alquiler")},
			wantSynced:     map[string]bool{"t1": false},
			wantStandalone: 1,
		},
		{
			name:           "unmatched events are standalone",
			transactions:   []model.Transaction{txn("t1", "Alquiler", model.NoLink(), false)},
			events:         []service.Event{event("ev-9", "Cita médica")},
			wantSynced:     map[string]bool{"t1": false},
			wantStandalone: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Reconcile(tt.transactions, tt.events)

			require.Len(t, result.Transactions, len(tt.transactions))
			for _, a := range result.Transactions {
				assert.Equal(t, tt.wantSynced[a.Transaction.ID], a.Synced, "transaction %s", a.Transaction.ID)
			}
			assert.Len(t, result.Standalone, tt.wantStandalone)
		})
	}
}

func TestReconcileLinkMatchBeatsTitleMatch(t *testing.T) {
	// Both transactions could claim the event by title, but only one holds
	// its id; that one must win.
	byTitle := txn("by-title", "Gimnasio", model.NoLink(), false)
	byLink := txn("by-link", "Gimnasio", model.LinkTo("ev-gym"), false)

	result := Reconcile([]model.Transaction{byTitle, byLink}, []service.Event{event("ev-gym", "Gimnasio")})

	synced := map[string]bool{}
	for _, a := range result.Transactions {
		synced[a.Transaction.ID] = a.Synced
	}
	assert.False(t, synced["by-title"])
	assert.True(t, synced["by-link"])
	assert.Empty(t, result.Standalone)
}

type linkRecorder struct {
	service.Storage
	links map[string]model.CalendarLink
}

func (r *linkRecorder) UpdateCalendarLink(_ context.Context, id string, link model.CalendarLink) error {
	r.links[id] = link
	return nil
}

func TestAutoLink(t *testing.T) {
	virtual := txn("virtual-src-2026-03-15", "Luz", model.NoLink(), false)
	virtual.SourceID = "src"

	transactions := []model.Transaction{
		txn("unlinked", "Alquiler", model.NoLink(), false),
		txn("linked", "Gimnasio", model.LinkTo("ev-gym"), false),
		txn("pending", "Internet", model.PendingLink(), false),
		virtual,
	}
	events := []service.Event{
		event("ev-rent", "Alquiler"),
		event("ev-gym", "Gimnasio"),
		event("ev-net", "Internet"),
		event("ev-luz", "Luz"),
	}

	recorder := &linkRecorder{links: map[string]model.CalendarLink{}}
	linked, err := AutoLink(context.Background(), recorder, transactions, events)
	require.NoError(t, err)

	// Only the wholly unlinked stored transaction qualifies: linked and
	// pending-sync entries keep their state, virtual ones are never
	// persisted.
	assert.Equal(t, 1, linked)
	require.Contains(t, recorder.links, "unlinked")
	assert.Equal(t, model.LinkTo("ev-rent"), recorder.links["unlinked"])
}

func TestAutoLinkSkipsOtherDays(t *testing.T) {
	txn1 := txn("t1", "Alquiler", model.NoLink(), false)
	ev := event("ev-1", "Alquiler")
	ev.Start = day(16)

	recorder := &linkRecorder{links: map[string]model.CalendarLink{}}
	linked, err := AutoLink(context.Background(), recorder, []model.Transaction{txn1}, []service.Event{ev})
	require.NoError(t, err)
	assert.Zero(t, linked)
	assert.Empty(t, recorder.links)
}
