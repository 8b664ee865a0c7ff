package gcal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hucha-app/hucha/internal/model"
	"github.com/hucha-app/hucha/internal/service"
)

// MockClient is a mock implementation of service.Calendar for testing.
type MockClient struct {
	CreateFunc      func(ctx context.Context, txn *model.Transaction) (string, error)
	ListFunc        func(ctx context.Context, start, end time.Time) ([]service.Event, error)
	Events          []service.Event
	CreatedEvents   []model.Transaction
	DeletedEventIDs []string
	CreateCalls     int
	mu              sync.Mutex
}

// NewMockClient creates a new mock calendar.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// CreateEvent implements service.Calendar.
func (m *MockClient) CreateEvent(ctx context.Context, txn *model.Transaction) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls++
	m.CreatedEvents = append(m.CreatedEvents, *txn)

	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, txn)
	}
	return fmt.Sprintf("mock-event-%d", m.CreateCalls), nil
}

// UpdateEvent implements service.Calendar.
func (m *MockClient) UpdateEvent(_ context.Context, _ string, _ *model.Transaction) error {
	return nil
}

// DeleteEvent implements service.Calendar.
func (m *MockClient) DeleteEvent(_ context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeletedEventIDs = append(m.DeletedEventIDs, eventID)
	return nil
}

// ListEvents implements service.Calendar.
func (m *MockClient) ListEvents(ctx context.Context, start, end time.Time) ([]service.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListFunc != nil {
		return m.ListFunc(ctx, start, end)
	}

	var inRange []service.Event
	for _, e := range m.Events {
		if !e.Start.Before(start) && !e.Start.After(end) {
			inRange = append(inRange, e)
		}
	}
	return inRange, nil
}

// Created returns a copy of the transactions events were created for.
func (m *MockClient) Created() []model.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()

	created := make([]model.Transaction, len(m.CreatedEvents))
	copy(created, m.CreatedEvents)
	return created
}
