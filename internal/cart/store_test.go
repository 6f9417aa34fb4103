package cart

import (
	"math/rand"
	"testing"

	"github.com/jcmexdev/restaurant-checkout/internal/domain"
)

func TestAddMergesSameLine(t *testing.T) {
	s := NewStore()
	s.Add(domain.CartLine{ID: "7L", Name: "Margherita L", Price: 10, Quantity: 1})
	s.Add(domain.CartLine{ID: "7L", Name: "Margherita L", Price: 10, Quantity: 1})

	lines := s.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", lines[0].Quantity)
	}
}

func TestAddKeepsSizesApart(t *testing.T) {
	s := NewStore()
	s.Add(domain.CartLine{ID: domain.LineID("7", "M"), Price: 8, Quantity: 1})
	s.Add(domain.CartLine{ID: domain.LineID("7", "L"), Price: 10, Quantity: 1})

	if s.Len() != 2 {
		t.Fatalf("expected 2 lines, got %d", s.Len())
	}
}

func TestAddKeepsFirstPrice(t *testing.T) {
	s := NewStore()
	s.Add(domain.CartLine{ID: "3M", Name: "Soup", Price: 4, Quantity: 1})
	s.Add(domain.CartLine{ID: "3M", Name: "Soup (new)", Price: 5, Quantity: 1})

	got := s.Lines()[0]
	if got.Price != 4 || got.Name != "Soup" {
		t.Errorf("line changed on merge: %+v", got)
	}
}

func TestUpdateQuantityZeroRemoves(t *testing.T) {
	s := NewStore()
	s.Add(domain.CartLine{ID: "7L", Price: 10, Quantity: 1})
	s.Add(domain.CartLine{ID: "2M", Price: 5, Quantity: 1})

	s.UpdateQuantity("7L", 0)

	if s.Len() != 1 {
		t.Fatalf("expected 1 line, got %d", s.Len())
	}
	if got := domain.Float(s.Total()); got != 5.5 {
		t.Errorf("Total() = %v, want 5.5", got)
	}
}

func TestUpdateQuantityNegativeRemoves(t *testing.T) {
	s := NewStore()
	s.Add(domain.CartLine{ID: "7L", Price: 10, Quantity: 3})
	s.UpdateQuantity("7L", -4)

	if s.Len() != 0 {
		t.Errorf("expected empty cart, got %d lines", s.Len())
	}
}

func TestRemoveAndClear(t *testing.T) {
	s := NewStore()
	s.Remove("missing")
	s.Add(domain.CartLine{ID: "a", Price: 1, Quantity: 1})
	s.Add(domain.CartLine{ID: "b", Price: 1, Quantity: 1})

	s.Remove("a")
	if s.Len() != 1 || s.Lines()[0].ID != "b" {
		t.Fatalf("unexpected lines after remove: %+v", s.Lines())
	}

	s.Clear()
	if s.Len() != 0 {
		t.Errorf("expected empty cart after Clear, got %d", s.Len())
	}
}

func TestDeduct(t *testing.T) {
	s := NewStore()
	s.Add(domain.CartLine{ID: "7L", Price: 10, Quantity: 3})
	s.Add(domain.CartLine{ID: "2M", Price: 5, Quantity: 1})
	s.Add(domain.CartLine{ID: "9M", Price: 4, Quantity: 1})

	s.Deduct([]domain.CartLine{
		{ID: "7L", Quantity: 2},
		{ID: "2M", Quantity: 1},
		{ID: "gone", Quantity: 1},
	})

	got := s.Lines()
	if len(got) != 2 || got[0].ID != "7L" || got[0].Quantity != 1 || got[1].ID != "9M" {
		t.Errorf("unexpected lines after Deduct: %+v", got)
	}
}

func TestRandomMutationsKeepInvariants(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	ids := []string{"1M", "1L", "2M", "3Mega"}
	prices := map[string]float64{"1M": 7.5, "1L": 9.99, "2M": 3.2, "3Mega": 14}

	s := NewStore()
	for i := 0; i < 500; i++ {
		id := ids[r.Intn(len(ids))]
		switch r.Intn(3) {
		case 0:
			s.Add(domain.CartLine{ID: id, Price: prices[id], Quantity: 1 + r.Intn(3)})
		case 1:
			s.UpdateQuantity(id, r.Intn(5)-1)
		case 2:
			s.Remove(id)
		}

		seen := make(map[string]bool)
		for _, l := range s.Lines() {
			if seen[l.ID] {
				t.Fatalf("duplicate line %q after step %d", l.ID, i)
			}
			if l.Quantity < 1 {
				t.Fatalf("line %q has quantity %d", l.ID, l.Quantity)
			}
			seen[l.ID] = true
		}
		if !s.Total().Equal(domain.Total(s.Lines())) {
			t.Fatalf("total drifted at step %d", i)
		}
	}
}
