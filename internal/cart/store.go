// Package cart holds the line items of one checkout session.
package cart

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/restaurant-checkout/internal/domain"
)

// Store is an in-memory cart. Lines are merged by identity key and kept in
// insertion order. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	lines []domain.CartLine
}

func NewStore() *Store {
	return &Store{}
}

// Add merges line into the cart. An existing line with the same ID has its
// quantity incremented; name and price stay as first added.
func (s *Store) Add(line domain.CartLine) {
	if line.Quantity <= 0 {
		line.Quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.index(line.ID); i >= 0 {
		s.lines[i].Quantity += line.Quantity
		return
	}
	s.lines = append(s.lines, line)
}

// UpdateQuantity sets the quantity of a line. Zero or less removes it.
func (s *Store) UpdateQuantity(id string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return
	}
	if quantity <= 0 {
		s.removeAt(i)
		return
	}
	s.lines[i].Quantity = quantity
}

func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.index(id); i >= 0 {
		s.removeAt(i)
	}
}

// Deduct takes the quantities of lines out of the cart, removing lines that
// reach zero. Lines the cart does not hold are ignored.
func (s *Store) Deduct(lines []domain.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range lines {
		i := s.index(l.ID)
		if i < 0 {
			continue
		}
		if s.lines[i].Quantity <= l.Quantity {
			s.removeAt(i)
			continue
		}
		s.lines[i].Quantity -= l.Quantity
	}
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
}

// Lines returns a copy of the cart contents.
func (s *Store) Lines() []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines)
}

func (s *Store) Subtotal() decimal.Decimal { return domain.Subtotal(s.Lines()) }

func (s *Store) Tax() decimal.Decimal { return domain.Tax(s.Lines()) }

func (s *Store) Total() decimal.Decimal { return domain.Total(s.Lines()) }

func (s *Store) index(id string) int {
	for i := range s.lines {
		if s.lines[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) removeAt(i int) {
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
}
