// Package analysis computes aggregate views over a set of transactions.
//
// All aggregation is done over already-loaded transactions in memory, and
// all money math uses decimals. Pending transactions dated in the future
// are planned, not spent, so the realized figures exclude them; pending
// transactions dated today or earlier count as spent.
package analysis

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hucha-app/hucha/internal/model"
)

// Summary is the realized balance sheet for a set of transactions.
type Summary struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Savings  decimal.Decimal
	Balance  decimal.Decimal
}

// Summarize totals the realized transactions by kind. Balance is income
// minus expenses minus savings.
func Summarize(transactions []model.Transaction, now time.Time) Summary {
	s := Summary{
		Income:   decimal.Zero,
		Expenses: decimal.Zero,
		Savings:  decimal.Zero,
	}
	for i := range transactions {
		txn := &transactions[i]
		if !realized(txn, now) {
			continue
		}
		switch txn.Kind {
		case model.KindIncome:
			s.Income = s.Income.Add(txn.Amount)
		case model.KindExpense:
			s.Expenses = s.Expenses.Add(txn.Amount)
		case model.KindSaving:
			s.Savings = s.Savings.Add(txn.Amount)
		}
	}
	s.Balance = s.Income.Sub(s.Expenses).Sub(s.Savings)
	return s
}

// CategoryTotal is one category's share of realized expenses.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
	Count    int
}

// ByCategory totals realized expenses per category, largest first.
func ByCategory(transactions []model.Transaction, now time.Time) []CategoryTotal {
	totals := make(map[string]*CategoryTotal)
	var order []string
	for i := range transactions {
		txn := &transactions[i]
		if txn.Kind != model.KindExpense || !realized(txn, now) {
			continue
		}
		ct, ok := totals[txn.Category]
		if !ok {
			ct = &CategoryTotal{Category: txn.Category, Total: decimal.Zero}
			totals[txn.Category] = ct
			order = append(order, txn.Category)
		}
		ct.Total = ct.Total.Add(txn.Amount)
		ct.Count++
	}

	out := make([]CategoryTotal, 0, len(order))
	for _, name := range order {
		out = append(out, *totals[name])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	return out
}

// MemberTotal is one member's realized spending.
type MemberTotal struct {
	ProfileID string
	Total     decimal.Decimal
	Count     int
}

// ByMember totals realized expenses per paying member, largest first.
func ByMember(transactions []model.Transaction, now time.Time) []MemberTotal {
	totals := make(map[string]*MemberTotal)
	var order []string
	for i := range transactions {
		txn := &transactions[i]
		if txn.Kind != model.KindExpense || !realized(txn, now) {
			continue
		}
		mt, ok := totals[txn.PaidBy]
		if !ok {
			mt = &MemberTotal{ProfileID: txn.PaidBy, Total: decimal.Zero}
			totals[txn.PaidBy] = mt
			order = append(order, txn.PaidBy)
		}
		mt.Total = mt.Total.Add(txn.Amount)
		mt.Count++
	}

	out := make([]MemberTotal, 0, len(order))
	for _, id := range order {
		out = append(out, *totals[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	return out
}

// SharedSplit divides realized expenses into shared and individual totals.
type SharedSplit struct {
	Shared     decimal.Decimal
	Individual decimal.Decimal
}

// SplitShared computes the shared versus individual expense split.
func SplitShared(transactions []model.Transaction, now time.Time) SharedSplit {
	split := SharedSplit{Shared: decimal.Zero, Individual: decimal.Zero}
	for i := range transactions {
		txn := &transactions[i]
		if txn.Kind != model.KindExpense || !realized(txn, now) {
			continue
		}
		if txn.Shared {
			split.Shared = split.Shared.Add(txn.Amount)
		} else {
			split.Individual = split.Individual.Add(txn.Amount)
		}
	}
	return split
}

// realized reports whether a transaction counts toward spent totals:
// everything paid, plus pending entries dated today or earlier.
func realized(txn *model.Transaction, now time.Time) bool {
	if txn.Status == model.StatusPaid {
		return true
	}
	endOfToday := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
	return !txn.Date.After(endOfToday)
}
