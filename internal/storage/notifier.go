package storage

import (
	"sync"

	"github.com/hucha-app/hucha/internal/service"
)

// changeNotifier is the in-process stand-in for the hosted database's
// row-change subscription: every committed write publishes one Change to
// all subscribers. Slow subscribers drop events instead of blocking
// writers; the ledger store refetches on any event, so a dropped event is
// covered by the next one or by the poll tick.
type changeNotifier struct {
	mu     sync.Mutex
	subs   map[int]chan service.Change
	nextID int
	closed bool
}

func newChangeNotifier() *changeNotifier {
	return &changeNotifier{subs: make(map[int]chan service.Change)}
}

// Subscribe returns a change channel and a cancel function.
func (n *changeNotifier) Subscribe() (<-chan service.Change, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan service.Change, 16)
	if n.closed {
		close(ch)
		return ch, func() {}
	}

	id := n.nextID
	n.nextID++
	n.subs[id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if sub, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (n *changeNotifier) publish(change service.Change) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	for _, ch := range n.subs {
		select {
		case ch <- change:
		default:
		}
	}
}

func (n *changeNotifier) close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	for id, ch := range n.subs {
		delete(n.subs, id)
		close(ch)
	}
}
