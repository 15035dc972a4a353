package app

import (
	"errors"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/econext/storefront/pkg/money"
)

func usd(amount int64) money.Money {
	return money.New("USD", amount)
}

func mug() Product {
	return Product{ID: 1, Name: "Bamboo Mug", UnitPrice: usd(1000)}
}

func brush() Product {
	return Product{ID: 2, Name: "Bamboo Brush", UnitPrice: usd(350)}
}

func TestAddMergesByProduct(t *testing.T) {
	e := NewEngine()

	if _, err := e.Add(mug(), 1); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	cart, err := e.Add(mug(), 2)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if len(cart.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(cart.Lines))
	}
	if cart.Lines[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", cart.Lines[0].Quantity)
	}
}

func TestAddRejectsNonPositiveDelta(t *testing.T) {
	e := NewEngine()
	if _, err := e.Add(mug(), 1); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	for _, delta := range []int64{0, -1} {
		cart, err := e.Add(mug(), delta)
		if !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("delta %d: expected ErrInvalidQuantity, got %v", delta, err)
		}
		if cart.Lines[0].Quantity != 1 {
			t.Fatalf("delta %d: state changed, quantity %d", delta, cart.Lines[0].Quantity)
		}
	}
}

func TestAddRejectsMixedCurrency(t *testing.T) {
	e := NewEngine()
	if _, err := e.Add(mug(), 1); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	other := Product{ID: 9, Name: "Imported Mug", UnitPrice: money.New("EUR", 900)}
	if _, err := e.Add(other, 1); !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("expected ErrCurrencyMismatch, got %v", err)
	}
	if e.LineCount() != 1 {
		t.Fatalf("expected 1 line after rejected add, got %d", e.LineCount())
	}
}

func TestSetQuantity(t *testing.T) {
	e := NewEngine()
	if _, err := e.Add(mug(), 2); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	t.Run("absolute set", func(t *testing.T) {
		cart := e.SetQuantity(1, 5)
		if cart.Lines[0].Quantity != 5 {
			t.Fatalf("expected quantity 5, got %d", cart.Lines[0].Quantity)
		}
	})

	t.Run("zero removes the line", func(t *testing.T) {
		cart := e.SetQuantity(1, 0)
		if !cart.Empty() {
			t.Fatalf("expected empty cart, got %d lines", len(cart.Lines))
		}
	})

	t.Run("absent product is a no-op", func(t *testing.T) {
		cart := e.SetQuantity(42, 3)
		if !cart.Empty() {
			t.Fatalf("expected empty cart, got %d lines", len(cart.Lines))
		}
	})
}

func TestRemoveIsIdempotent(t *testing.T) {
	e := NewEngine()
	if _, err := e.Add(mug(), 1); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := e.Add(brush(), 1); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	first := e.Remove(1)
	second := e.Remove(1)

	if len(first.Lines) != 1 || len(second.Lines) != 1 {
		t.Fatalf("expected 1 line after both removes, got %d then %d",
			len(first.Lines), len(second.Lines))
	}
	if second.Lines[0].ProductID != 2 {
		t.Fatalf("wrong surviving line: %d", second.Lines[0].ProductID)
	}
}

func TestTotalExactArithmetic(t *testing.T) {
	e := NewEngine()
	if _, err := e.Add(mug(), 2); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := e.Add(brush(), 1); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	total := e.Total()
	if total.Amount != 2350 {
		t.Fatalf("expected 2350 minor units, got %d", total.Amount)
	}
	if total.String() != "23.50" {
		t.Fatalf("expected 23.50, got %s", total.String())
	}
	if e.LineCount() != 2 {
		t.Fatalf("expected 2 distinct lines, got %d", e.LineCount())
	}
}

func TestClear(t *testing.T) {
	e := NewEngine()
	if _, err := e.Add(mug(), 3); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	cart := e.Clear()
	if !cart.Empty() {
		t.Fatalf("expected empty cart after Clear")
	}
	if !e.Total().IsZero() {
		t.Fatalf("expected zero total after Clear, got %s", e.Total())
	}
}

func TestSnapshotIsDefensiveCopy(t *testing.T) {
	e := NewEngine()
	if _, err := e.Add(mug(), 1); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	snap := e.Snapshot()
	snap.Lines[0].Quantity = 99

	if got := e.Snapshot().Lines[0].Quantity; got != 1 {
		t.Fatalf("engine state mutated through snapshot: quantity %d", got)
	}
}

func TestConcurrentAddIncrement(t *testing.T) {
	e := NewEngine()

	const n = 100
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := e.Add(mug(), 1)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent Add failed: %v", err)
	}

	cart := e.Snapshot()
	if len(cart.Lines) != 1 {
		t.Fatalf("expected a single merged line, got %d", len(cart.Lines))
	}
	if cart.Lines[0].Quantity != n {
		t.Fatalf("expected quantity %d, got %d", n, cart.Lines[0].Quantity)
	}
}
