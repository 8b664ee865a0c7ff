package analysis

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hucha-app/hucha/internal/model"
)

// MonthPoint is one month's totals in a yearly series.
type MonthPoint struct {
	Month    time.Month
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Savings  decimal.Decimal
}

// MonthlySeries buckets a year's realized transactions into twelve monthly
// totals. Months with no activity are present with zero values so callers
// can chart the full year.
func MonthlySeries(transactions []model.Transaction, year int, now time.Time) []MonthPoint {
	series := make([]MonthPoint, 12)
	for i := range series {
		series[i] = MonthPoint{
			Month:    time.Month(i + 1),
			Income:   decimal.Zero,
			Expenses: decimal.Zero,
			Savings:  decimal.Zero,
		}
	}

	for i := range transactions {
		txn := &transactions[i]
		if txn.Date.Year() != year || !realized(txn, now) {
			continue
		}
		p := &series[int(txn.Date.Month())-1]
		switch txn.Kind {
		case model.KindIncome:
			p.Income = p.Income.Add(txn.Amount)
		case model.KindExpense:
			p.Expenses = p.Expenses.Add(txn.Amount)
		case model.KindSaving:
			p.Savings = p.Savings.Add(txn.Amount)
		}
	}
	return series
}

// MonthComparison contrasts one month's expenses with the previous month.
type MonthComparison struct {
	Current      decimal.Decimal
	Previous     decimal.Decimal
	Delta        decimal.Decimal
	DeltaPercent decimal.Decimal // zero when the previous month had no expenses
}

// CompareMonths totals realized expenses for the month containing ref and
// the month before it.
func CompareMonths(transactions []model.Transaction, ref, now time.Time) MonthComparison {
	current := monthExpenses(transactions, ref.Year(), ref.Month(), now)
	prevRef := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location()).AddDate(0, -1, 0)
	previous := monthExpenses(transactions, prevRef.Year(), prevRef.Month(), now)

	cmp := MonthComparison{
		Current:  current,
		Previous: previous,
		Delta:    current.Sub(previous),
	}
	if previous.IsPositive() {
		cmp.DeltaPercent = cmp.Delta.Div(previous).Mul(decimal.NewFromInt(100)).Round(1)
	} else {
		cmp.DeltaPercent = decimal.Zero
	}
	return cmp
}

func monthExpenses(transactions []model.Transaction, year int, month time.Month, now time.Time) decimal.Decimal {
	total := decimal.Zero
	for i := range transactions {
		txn := &transactions[i]
		if txn.Kind != model.KindExpense || !realized(txn, now) {
			continue
		}
		if txn.Date.Year() == year && txn.Date.Month() == month {
			total = total.Add(txn.Amount)
		}
	}
	return total
}
