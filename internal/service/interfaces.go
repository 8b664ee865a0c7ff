// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/hucha-app/hucha/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Kind      model.TransactionKind
	Limit     int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Transaction operations
	SaveTransaction(ctx context.Context, txn *model.Transaction) error
	GetTransactions(ctx context.Context, groupID, viewerID string, filter TransactionFilter) ([]model.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error
	UpdateTransactionStatus(ctx context.Context, id string, status model.TransactionStatus) error
	UpdateCalendarLink(ctx context.Context, id string, link model.CalendarLink) error
	GetTransactionsPendingSync(ctx context.Context, groupID, viewerID string) ([]model.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error

	// Category operations
	GetCategories(ctx context.Context, groupID string) ([]model.Category, error)
	SaveCategory(ctx context.Context, cat *model.Category) error
	UpdateCategory(ctx context.Context, cat *model.Category) error
	DeleteCategory(ctx context.Context, id string) error
	SeedDefaultCategories(ctx context.Context, groupID string) ([]model.Category, error)

	// Profile and group-membership operations
	GetProfile(ctx context.Context, id string) (*model.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*model.Profile, error)
	GetProfilesByGroup(ctx context.Context, groupID string) ([]model.Profile, error)
	SaveProfile(ctx context.Context, profile *model.Profile) error
	UpdateProfileGroup(ctx context.Context, id, groupID string) error
	ApproveMember(ctx context.Context, id string) error
	RemoveMember(ctx context.Context, id string) error

	// Database management
	Migrate(ctx context.Context) error
	Notifier() ChangeNotifier
	Close() error
}

// ChangeOp is the kind of mutation a change notification reports.
type ChangeOp string

const (
	// OpInsert is a row insertion.
	OpInsert ChangeOp = "insert"
	// OpUpdate is a row update.
	OpUpdate ChangeOp = "update"
	// OpDelete is a row deletion.
	OpDelete ChangeOp = "delete"
)

// Change describes a committed write against a storage table.
type Change struct {
	Table string
	ID    string
	Op    ChangeOp
}

// ChangeNotifier is the storage-side change feed. The ledger store
// subscribes to it instead of watching tables ambiently; every committed
// write produces one Change event.
type ChangeNotifier interface {
	Subscribe() (<-chan Change, func())
}

// Calendar is the external calendar collaborator. Event ids returned by
// CreateEvent become transaction linkage ids.
type Calendar interface {
	CreateEvent(ctx context.Context, txn *model.Transaction) (string, error)
	UpdateEvent(ctx context.Context, eventID string, txn *model.Transaction) error
	DeleteEvent(ctx context.Context, eventID string) error
	ListEvents(ctx context.Context, start, end time.Time) ([]Event, error)
}

// Event is a read-only external calendar event, fetched per visible range.
type Event struct {
	Start   time.Time
	End     time.Time
	ID      string
	Summary string
	AllDay  bool
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
