package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hucha-app/hucha/internal/common"
	"github.com/hucha-app/hucha/internal/model"
	"github.com/hucha-app/hucha/internal/service"
)

// mockStorage is an in-memory Storage with per-method failure injection.
type mockStorage struct {
	mu           sync.Mutex
	transactions map[string]model.Transaction
	categories   map[string]model.Category
	profiles     map[string]model.Profile
	notifier     *mockNotifier

	saveTransactionErr error
	updateStatusErr    error
	deleteErr          error
	deleteCategoryErr  error
}

type mockNotifier struct {
	ch chan service.Change
}

func (n *mockNotifier) Subscribe() (<-chan service.Change, func()) {
	return n.ch, func() {}
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		transactions: make(map[string]model.Transaction),
		categories:   make(map[string]model.Category),
		profiles:     make(map[string]model.Profile),
		notifier:     &mockNotifier{ch: make(chan service.Change, 16)},
	}
}

func (m *mockStorage) SaveTransaction(_ context.Context, txn *model.Transaction) error {
	if m.saveTransactionErr != nil {
		return m.saveTransactionErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[txn.ID] = *txn
	return nil
}

func (m *mockStorage) GetTransactions(_ context.Context, groupID, viewerID string, _ service.TransactionFilter) ([]model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Transaction
	for _, t := range m.transactions {
		if visibleTo(t, groupID, viewerID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func visibleTo(t model.Transaction, groupID, viewerID string) bool {
	if t.GroupID != "" {
		return t.GroupID == groupID
	}
	return t.PaidBy == viewerID
}

func (m *mockStorage) GetTransactionByID(_ context.Context, id string) (*model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &t, nil
}

func (m *mockStorage) UpdateTransaction(_ context.Context, txn *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[txn.ID]; !ok {
		return common.ErrNotFound
	}
	m.transactions[txn.ID] = *txn
	return nil
}

func (m *mockStorage) UpdateTransactionStatus(_ context.Context, id string, status model.TransactionStatus) error {
	if m.updateStatusErr != nil {
		return m.updateStatusErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok {
		return common.ErrNotFound
	}
	t.Status = status
	m.transactions[id] = t
	return nil
}

func (m *mockStorage) UpdateCalendarLink(_ context.Context, id string, link model.CalendarLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok {
		return common.ErrNotFound
	}
	t.CalendarLink = link
	m.transactions[id] = t
	return nil
}

func (m *mockStorage) GetTransactionsPendingSync(_ context.Context, groupID, viewerID string) ([]model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Transaction
	for _, t := range m.transactions {
		if visibleTo(t, groupID, viewerID) && t.CalendarLink.PendingSync() {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockStorage) DeleteTransaction(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[id]; !ok {
		return common.ErrNotFound
	}
	delete(m.transactions, id)
	return nil
}

func (m *mockStorage) GetCategories(_ context.Context, groupID string) ([]model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Category
	for _, c := range m.categories {
		if c.GroupID == groupID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockStorage) SaveCategory(_ context.Context, cat *model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories[cat.ID] = *cat
	return nil
}

func (m *mockStorage) UpdateCategory(_ context.Context, cat *model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[cat.ID]; !ok {
		return common.ErrNotFound
	}
	m.categories[cat.ID] = *cat
	return nil
}

func (m *mockStorage) DeleteCategory(_ context.Context, id string) error {
	if m.deleteCategoryErr != nil {
		return m.deleteCategoryErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[id]; !ok {
		return common.ErrNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *mockStorage) SeedDefaultCategories(_ context.Context, groupID string) ([]model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Category
	for _, c := range m.categories {
		if c.GroupID == groupID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockStorage) GetProfile(_ context.Context, id string) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &p, nil
}

func (m *mockStorage) GetProfileByEmail(_ context.Context, email string) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if p.Email == email {
			return &p, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *mockStorage) GetProfilesByGroup(_ context.Context, groupID string) ([]model.Profile, error) {
	if groupID == "" {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Profile
	for _, p := range m.profiles {
		if p.GroupID == groupID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockStorage) SaveProfile(_ context.Context, profile *model.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.ID] = *profile
	return nil
}

func (m *mockStorage) UpdateProfileGroup(_ context.Context, id, groupID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return common.ErrNotFound
	}
	p.GroupID = groupID
	m.profiles[id] = p
	return nil
}

func (m *mockStorage) ApproveMember(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok || p.Status != model.MemberPending {
		return common.ErrNotFound
	}
	p.Status = model.MemberActive
	m.profiles[id] = p
	return nil
}

func (m *mockStorage) RemoveMember(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return common.ErrNotFound
	}
	p.GroupID = ""
	m.profiles[id] = p
	return nil
}

func (m *mockStorage) Migrate(_ context.Context) error { return nil }

func (m *mockStorage) Notifier() service.ChangeNotifier { return m.notifier }

func (m *mockStorage) Close() error { return nil }

// mockCalendar records event calls for assertions.
type mockCalendar struct {
	mu        sync.Mutex
	created   []model.Transaction
	deleted   []string
	createErr error
	nextID    int
}

func (c *mockCalendar) CreateEvent(_ context.Context, txn *model.Transaction) (string, error) {
	if c.createErr != nil {
		return "", c.createErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.created = append(c.created, *txn)
	c.nextID++
	return fmt.Sprintf("mock-event-%d", c.nextID), nil
}

func (c *mockCalendar) UpdateEvent(_ context.Context, _ string, _ *model.Transaction) error {
	return nil
}

func (c *mockCalendar) DeleteEvent(_ context.Context, eventID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, eventID)
	return nil
}

func (c *mockCalendar) ListEvents(_ context.Context, _, _ time.Time) ([]service.Event, error) {
	return nil, nil
}
