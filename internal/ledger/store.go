// Package ledger holds the in-memory view of a group's finances and keeps
// it synchronized with storage.
//
// Every mutation is optimistic: the cache changes first, the storage write
// follows, and a failed write rolls the cache back to its prior state.
// Calendar side effects ride on the background task queue and are never
// part of that guarantee; a transaction whose calendar call fails stays
// persisted and merely shows as not synced.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hucha-app/hucha/internal/model"
	"github.com/hucha-app/hucha/internal/recur"
	"github.com/hucha-app/hucha/internal/reconcile"
	"github.com/hucha-app/hucha/internal/service"
	"github.com/hucha-app/hucha/internal/tasks"
)

// DefaultPollInterval is the fallback refresh cadence when no change
// notification arrives.
const DefaultPollInterval = time.Minute

// Options configures optional store collaborators.
type Options struct {
	Calendar     service.Calendar
	Queue        *tasks.Queue
	Logger       *slog.Logger
	PollInterval time.Duration
}

// Store is the cached ledger for one profile's active group.
type Store struct {
	storage      service.Storage
	calendar     service.Calendar
	queue        *tasks.Queue
	logger       *slog.Logger
	subs         map[int]chan struct{}
	profile      model.Profile
	transactions []model.Transaction
	categories   []model.Category
	members      []model.Profile
	pollInterval time.Duration
	nextSub      int
	mu           sync.RWMutex
}

// NewStore creates a ledger store for the given profile.
func NewStore(storage service.Storage, profile *model.Profile, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	poll := opts.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}

	return &Store{
		storage:      storage,
		calendar:     opts.Calendar,
		queue:        opts.Queue,
		logger:       logger,
		profile:      *profile,
		pollInterval: poll,
		subs:         make(map[int]chan struct{}),
	}
}

// Load performs the initial fetch and the once-per-load sweeps. A profile
// without a group is a valid onboarding state: collections stay empty and
// no storage queries are issued for them.
func (s *Store) Load(ctx context.Context) error {
	if !s.profile.InGroup() {
		s.mu.Lock()
		s.transactions = nil
		s.categories = nil
		s.members = []model.Profile{s.profile}
		s.mu.Unlock()
		s.logger.Info("profile has no group yet, ledger starts empty", "profile", s.profile.ID)
		return nil
	}

	if err := s.refresh(ctx); err != nil {
		return err
	}

	// New groups get the starter categories.
	s.mu.RLock()
	empty := len(s.categories) == 0
	s.mu.RUnlock()
	if empty {
		cats, err := s.storage.SeedDefaultCategories(ctx, s.profile.GroupID)
		if err != nil {
			return fmt.Errorf("failed to seed categories: %w", err)
		}
		s.mu.Lock()
		s.categories = cats
		s.mu.Unlock()
	}

	if _, err := s.SweepPastDue(ctx); err != nil {
		s.logger.Warn("past-due sweep failed", "error", err)
	}

	return nil
}

// Run subscribes to storage change notifications and a poll ticker; both
// trigger a refetch whose result simply overwrites the cache (last
// response applied wins). It blocks until the context is canceled.
func (s *Store) Run(ctx context.Context) {
	changes, cancel := s.storage.Notifier().Subscribe()
	defer cancel()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
		case <-ticker.C:
		}

		if err := s.refresh(ctx); err != nil {
			// Stale-but-available beats empty: keep serving the
			// previous data.
			s.logger.Warn("ledger refresh failed", "error", err)
			continue
		}
		s.notify()
	}
}

// Subscribe returns a channel that fires after every applied refresh or
// mutation, and a cancel function.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan struct{}, 1)
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Profile returns the profile the store was opened for.
func (s *Store) Profile() model.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// Transactions returns a copy of the cached transactions.
func (s *Store) Transactions() []model.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTransactions(s.transactions)
}

// Categories returns a copy of the cached categories.
func (s *Store) Categories() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// Members returns a copy of the cached group members.
func (s *Store) Members() []model.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Profile, len(s.members))
	copy(out, s.members)
	return out
}

// Day projects the ledger onto one calendar day and reconciles it with
// the external events that fall on that day.
func (s *Store) Day(date time.Time, events []service.Event) reconcile.Result {
	dayTxns := recur.ProjectDay(s.Transactions(), date)

	var dayEvents []service.Event
	for _, e := range events {
		if e.Start.Year() == date.Year() && e.Start.Month() == date.Month() && e.Start.Day() == date.Day() {
			dayEvents = append(dayEvents, e)
		}
	}

	return reconcile.Reconcile(dayTxns, dayEvents)
}

// Upcoming returns the unpaid agenda over the given horizon in days.
func (s *Store) Upcoming(now time.Time, horizon int) recur.Agenda {
	return recur.Upcoming(s.Transactions(), now, horizon)
}

// Reminders returns the unpaid transactions due today or tomorrow.
func (s *Store) Reminders(now time.Time) []model.Transaction {
	return recur.DueSoon(s.Transactions(), now)
}

// refresh refetches all collections for the active group.
func (s *Store) refresh(ctx context.Context) error {
	groupID := s.profile.GroupID

	txns, err := s.storage.GetTransactions(ctx, groupID, s.profile.ID, service.TransactionFilter{})
	if err != nil {
		return fmt.Errorf("failed to fetch transactions: %w", err)
	}
	cats, err := s.storage.GetCategories(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to fetch categories: %w", err)
	}
	members, err := s.storage.GetProfilesByGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to fetch members: %w", err)
	}
	if len(members) == 0 {
		members = []model.Profile{s.profile}
	}

	s.mu.Lock()
	s.transactions = txns
	s.categories = cats
	s.members = members
	s.mu.Unlock()

	s.logger.Debug("ledger refreshed",
		"transactions", len(txns),
		"categories", len(cats),
		"members", len(members))
	return nil
}

func (s *Store) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func cloneTransactions(list []model.Transaction) []model.Transaction {
	out := make([]model.Transaction, len(list))
	copy(out, list)
	return out
}
