package analysis

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hucha-app/hucha/internal/model"
)

var now = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func entry(desc string, amount int64, kind model.TransactionKind, status model.TransactionStatus, date time.Time) model.Transaction {
	return model.Transaction{
		ID:          desc,
		Description: desc,
		Amount:      decimal.NewFromInt(amount),
		Kind:        kind,
		Status:      status,
		Date:        date,
		Shared:      true,
	}
}

func TestSummarize(t *testing.T) {
	txns := []model.Transaction{
		entry("sueldo", 3000, model.KindIncome, model.StatusPaid, now.AddDate(0, 0, -10)),
		entry("alquiler", 1500, model.KindExpense, model.StatusPaid, now.AddDate(0, 0, -5)),
		entry("ahorro", 200, model.KindSaving, model.StatusPaid, now.AddDate(0, 0, -5)),
		// Pending but already due: counts.
		entry("luz", 100, model.KindExpense, model.StatusPending, now),
		// Pending and future: planned, not spent.
		entry("viaje", 900, model.KindExpense, model.StatusPending, now.AddDate(0, 0, 10)),
	}

	sum := Summarize(txns, now)

	assert.True(t, sum.Income.Equal(decimal.NewFromInt(3000)), "income %s", sum.Income)
	assert.True(t, sum.Expenses.Equal(decimal.NewFromInt(1600)), "expenses %s", sum.Expenses)
	assert.True(t, sum.Savings.Equal(decimal.NewFromInt(200)), "savings %s", sum.Savings)
	assert.True(t, sum.Balance.Equal(decimal.NewFromInt(1200)), "balance %s", sum.Balance)
}

func TestByCategoryOrdersByTotal(t *testing.T) {
	a := entry("a", 50, model.KindExpense, model.StatusPaid, now)
	a.Category = "Comida"
	b := entry("b", 300, model.KindExpense, model.StatusPaid, now)
	b.Category = "Casa"
	c := entry("c", 70, model.KindExpense, model.StatusPaid, now)
	c.Category = "Comida"
	income := entry("d", 1000, model.KindIncome, model.StatusPaid, now)
	income.Category = "Casa"

	totals := ByCategory([]model.Transaction{a, b, c, income}, now)

	require.Len(t, totals, 2)
	assert.Equal(t, "Casa", totals[0].Category)
	assert.True(t, totals[0].Total.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, "Comida", totals[1].Category)
	assert.True(t, totals[1].Total.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, 2, totals[1].Count)
}

func TestByMemberAndSplit(t *testing.T) {
	a := entry("a", 100, model.KindExpense, model.StatusPaid, now)
	a.PaidBy = "ana"
	b := entry("b", 250, model.KindExpense, model.StatusPaid, now)
	b.PaidBy = "leo"
	c := entry("c", 40, model.KindExpense, model.StatusPaid, now)
	c.PaidBy = "ana"
	c.Shared = false

	txns := []model.Transaction{a, b, c}

	totals := ByMember(txns, now)
	require.Len(t, totals, 2)
	assert.Equal(t, "leo", totals[0].ProfileID)
	assert.True(t, totals[1].Total.Equal(decimal.NewFromInt(140)))

	split := SplitShared(txns, now)
	assert.True(t, split.Shared.Equal(decimal.NewFromInt(350)))
	assert.True(t, split.Individual.Equal(decimal.NewFromInt(40)))
}

func TestMonthlySeries(t *testing.T) {
	txns := []model.Transaction{
		entry("ene", 100, model.KindExpense, model.StatusPaid, time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)),
		entry("mar", 200, model.KindExpense, model.StatusPaid, time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)),
		entry("otro año", 999, model.KindExpense, model.StatusPaid, time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)),
	}

	series := MonthlySeries(txns, 2026, now)

	require.Len(t, series, 12)
	assert.True(t, series[0].Expenses.Equal(decimal.NewFromInt(100)))
	assert.True(t, series[1].Expenses.IsZero())
	assert.True(t, series[2].Expenses.Equal(decimal.NewFromInt(200)))
}

func TestCompareMonths(t *testing.T) {
	txns := []model.Transaction{
		entry("feb", 200, model.KindExpense, model.StatusPaid, time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC)),
		entry("mar", 300, model.KindExpense, model.StatusPaid, time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)),
	}

	cmp := CompareMonths(txns, now, now)

	assert.True(t, cmp.Current.Equal(decimal.NewFromInt(300)))
	assert.True(t, cmp.Previous.Equal(decimal.NewFromInt(200)))
	assert.True(t, cmp.Delta.Equal(decimal.NewFromInt(100)))
	assert.True(t, cmp.DeltaPercent.Equal(decimal.NewFromInt(50)))
}

func TestCompareMonthsEmptyPrevious(t *testing.T) {
	txns := []model.Transaction{
		entry("mar", 300, model.KindExpense, model.StatusPaid, time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)),
	}

	cmp := CompareMonths(txns, now, now)
	assert.True(t, cmp.DeltaPercent.IsZero())
}
