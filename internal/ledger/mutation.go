package ledger

import "context"

// commit applies an optimistic cache mutation, runs the storage write, and
// rolls the cache back when the write fails. Subscribers are only notified
// for mutations that stuck.
func (s *Store) commit(ctx context.Context, apply, revert func(), remote func(context.Context) error) error {
	s.mu.Lock()
	apply()
	s.mu.Unlock()

	if err := remote(ctx); err != nil {
		s.mu.Lock()
		revert()
		s.mu.Unlock()
		return err
	}

	s.notify()
	return nil
}

// indexOf returns the cache position of a transaction id, or -1. Callers
// must hold the lock.
func (s *Store) indexOf(id string) int {
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			return i
		}
	}
	return -1
}
