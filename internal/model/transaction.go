// Package model defines the domain types shared across the application.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind distinguishes money coming in, going out, or being set aside.
type TransactionKind string

const (
	// KindIncome represents money received.
	KindIncome TransactionKind = "income"
	// KindExpense represents money spent.
	KindExpense TransactionKind = "expense"
	// KindSaving represents money moved into savings.
	KindSaving TransactionKind = "saving"
)

// TransactionStatus is the lifecycle state of a transaction.
type TransactionStatus string

const (
	// StatusPending means the transaction is scheduled but not yet settled.
	StatusPending TransactionStatus = "pending"
	// StatusPaid means the transaction has been settled.
	StatusPaid TransactionStatus = "paid"
)

// VirtualIDPrefix marks identifiers of projected recurring occurrences.
const VirtualIDPrefix = "virtual-"

// DefaultCurrency is assumed when a transaction does not name one.
const DefaultCurrency = "ARS"

// IsVirtualID reports whether an identifier belongs to a projected
// occurrence rather than a stored transaction.
func IsVirtualID(id string) bool {
	return strings.HasPrefix(id, VirtualIDPrefix)
}

// Transaction is a single ledger entry owned by a group (or, when not
// shared, effectively private to the payer).
type Transaction struct {
	Date         time.Time
	CreatedAt    time.Time
	ID           string
	Description  string
	Category     string // category name, not a foreign key; may dangle
	PaidBy       string // profile id
	Currency     string
	GroupID      string // empty when the transaction is individual
	SourceID     string // set only on projected virtual occurrences
	Kind         TransactionKind
	Status       TransactionStatus
	CalendarLink CalendarLink
	Amount       decimal.Decimal
	Shared       bool
	Recurring    bool
}

// IsVirtual reports whether the transaction is a projected occurrence
// rather than a stored row.
func (t *Transaction) IsVirtual() bool {
	return t.SourceID != ""
}

// Matches reports whether two transactions describe the same movement:
// equal description, amount, category, and kind. This is the heuristic key
// used to suppress a virtual occurrence once a concrete entry exists.
func (t *Transaction) Matches(other *Transaction) bool {
	return t.Description == other.Description &&
		t.Amount.Equal(other.Amount) &&
		t.Category == other.Category &&
		t.Kind == other.Kind
}

// Validate checks the fields every stored transaction must carry.
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("transaction id is required")
	}
	if strings.TrimSpace(t.Description) == "" {
		return fmt.Errorf("transaction description is required")
	}
	if t.Date.IsZero() {
		return fmt.Errorf("transaction date is required")
	}
	switch t.Kind {
	case KindIncome, KindExpense, KindSaving:
	default:
		return fmt.Errorf("invalid transaction kind: %q", t.Kind)
	}
	switch t.Status {
	case StatusPending, StatusPaid:
	default:
		return fmt.Errorf("invalid transaction status: %q", t.Status)
	}
	return nil
}

// VirtualID builds the identifier of a recurring occurrence projected onto
// a specific day: virtual-<sourceID>-<YYYY-MM-DD>.
func VirtualID(sourceID string, day time.Time) string {
	return fmt.Sprintf("%s%s-%s", VirtualIDPrefix, sourceID, day.Format("2006-01-02"))
}

// ParseVirtualID splits a virtual identifier back into its source id and
// projected day. It returns false for identifiers of stored transactions.
func ParseVirtualID(id string) (sourceID string, day time.Time, ok bool) {
	if !strings.HasPrefix(id, VirtualIDPrefix) {
		return "", time.Time{}, false
	}
	rest := strings.TrimPrefix(id, VirtualIDPrefix)
	// The trailing 10 characters are the date, preceded by a dash.
	if len(rest) < 12 {
		return "", time.Time{}, false
	}
	datePart := rest[len(rest)-10:]
	sourceID = rest[:len(rest)-11]
	day, err := time.Parse("2006-01-02", datePart)
	if err != nil || sourceID == "" {
		return "", time.Time{}, false
	}
	return sourceID, day, true
}
