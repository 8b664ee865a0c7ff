package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hucha-app/hucha/internal/common"
	"github.com/hucha-app/hucha/internal/model"
	"github.com/hucha-app/hucha/internal/service"
)

func setupTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))

	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleTransaction(id, groupID string, date time.Time) *model.Transaction {
	return &model.Transaction{
		ID:           id,
		Description:  "Alquiler",
		Amount:       decimal.RequireFromString("1500.50"),
		Category:     "Casa",
		Date:         date,
		PaidBy:       "profile-1",
		Currency:     "ARS",
		GroupID:      groupID,
		Kind:         model.KindExpense,
		Status:       model.StatusPending,
		Shared:       groupID != "",
		CalendarLink: model.NoLink(),
	}
}

func TestSaveAndGetTransaction(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	txn := sampleTransaction("t1", "group-1", time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, store.SaveTransaction(ctx, txn))

	got, err := store.GetTransactionByID(ctx, "t1")
	require.NoError(t, err)

	assert.Equal(t, txn.ID, got.ID)
	assert.Equal(t, txn.Description, got.Description)
	assert.True(t, txn.Amount.Equal(got.Amount), "amount survived as %s", got.Amount)
	assert.Equal(t, txn.GroupID, got.GroupID)
	assert.Equal(t, model.LinkNone, got.CalendarLink.State)
}

func TestSaveTransactionRejectsVirtual(t *testing.T) {
	store := setupTestStorage(t)

	txn := sampleTransaction("virtual-src-2026-03-15", "group-1", time.Now())
	txn.SourceID = "src"
	err := store.SaveTransaction(context.Background(), txn)
	assert.Error(t, err)
}

func TestGetTransactionsGroupIsolation(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()
	day := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	mine := sampleTransaction("mine", "", day)
	theirs := sampleTransaction("theirs", "", day)
	theirs.PaidBy = "profile-2"

	require.NoError(t, store.SaveTransaction(ctx, sampleTransaction("in-group", "group-1", day)))
	require.NoError(t, store.SaveTransaction(ctx, sampleTransaction("other-group", "group-2", day)))
	require.NoError(t, store.SaveTransaction(ctx, mine))
	require.NoError(t, store.SaveTransaction(ctx, theirs))

	// A grouped viewer sees the group's rows plus their own individual
	// rows, not another member's individual rows.
	got, err := store.GetTransactions(ctx, "group-1", "profile-1", service.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	ids := []string{got[0].ID, got[1].ID}
	assert.ElementsMatch(t, []string{"in-group", "mine"}, ids)

	// Empty group id matches only the viewer's groupless rows.
	private, err := store.GetTransactions(ctx, "", "profile-2", service.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, private, 1)
	assert.Equal(t, "theirs", private[0].ID)
}

func TestGetTransactionsFilters(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	jan := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	early := sampleTransaction("early", "group-1", jan)
	late := sampleTransaction("late", "group-1", mar)
	income := sampleTransaction("income", "group-1", mar)
	income.Kind = model.KindIncome
	require.NoError(t, store.SaveTransaction(ctx, early))
	require.NoError(t, store.SaveTransaction(ctx, late))
	require.NoError(t, store.SaveTransaction(ctx, income))

	feb := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	got, err := store.GetTransactions(ctx, "group-1", "profile-1", service.TransactionFilter{StartDate: &feb})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	kind := model.KindIncome
	got, err = store.GetTransactions(ctx, "group-1", "profile-1", service.TransactionFilter{Kind: kind})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "income", got[0].ID)

	// Inverted ranges are caller bugs, not empty results.
	_, err = store.GetTransactions(ctx, "group-1", "profile-1", service.TransactionFilter{StartDate: &mar, EndDate: &feb})
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestUpdateTransactionStatus(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTransaction(ctx, sampleTransaction("t1", "group-1", time.Now())))
	require.NoError(t, store.UpdateTransactionStatus(ctx, "t1", model.StatusPaid))

	got, err := store.GetTransactionByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, got.Status)

	err = store.UpdateTransactionStatus(ctx, "missing", model.StatusPaid)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdateCalendarLinkAndPendingSync(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	deferred := sampleTransaction("deferred", "group-1", time.Now())
	deferred.CalendarLink = model.PendingLink()
	linked := sampleTransaction("linked", "group-1", time.Now())
	require.NoError(t, store.SaveTransaction(ctx, deferred))
	require.NoError(t, store.SaveTransaction(ctx, linked))

	pending, err := store.GetTransactionsPendingSync(ctx, "group-1", "profile-1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "deferred", pending[0].ID)

	require.NoError(t, store.UpdateCalendarLink(ctx, "deferred", model.LinkTo("ev-1")))

	pending, err = store.GetTransactionsPendingSync(ctx, "group-1", "profile-1")
	require.NoError(t, err)
	assert.Empty(t, pending)

	got, err := store.GetTransactionByID(ctx, "deferred")
	require.NoError(t, err)
	assert.True(t, got.CalendarLink.Linked())
	assert.Equal(t, "ev-1", got.CalendarLink.EventID)
}

func TestDeleteTransaction(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTransaction(ctx, sampleTransaction("t1", "group-1", time.Now())))
	require.NoError(t, store.DeleteTransaction(ctx, "t1"))

	_, err := store.GetTransactionByID(ctx, "t1")
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = store.DeleteTransaction(ctx, "t1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestChangeNotifications(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	changes, cancel := store.Notifier().Subscribe()
	defer cancel()

	require.NoError(t, store.SaveTransaction(ctx, sampleTransaction("t1", "group-1", time.Now())))

	select {
	case change := <-changes:
		assert.Equal(t, "transactions", change.Table)
		assert.Equal(t, "t1", change.ID)
		assert.Equal(t, service.OpInsert, change.Op)
	case <-time.After(time.Second):
		t.Fatal("expected a change notification")
	}
}
