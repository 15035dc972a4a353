package app

import (
	"errors"
	"fmt"
	"sync"

	"github.com/econext/storefront/internal/cart/domain"
	"github.com/econext/storefront/pkg/money"
)

var (
	ErrInvalidQuantity  = errors.New("quantity must be positive")
	ErrCurrencyMismatch = errors.New("cart holds a single currency")
)

// Product is the slice of catalog data the cart needs to open a line.
type Product struct {
	ID        int64
	Name      string
	UnitPrice money.Money
}

// Engine owns the active cart for one browsing session. It is safe
// for concurrent use from gateway handlers; every mutation preserves
// the invariants that no two lines share a product ID and no line
// has a non-positive quantity.
type Engine struct {
	mu    sync.Mutex
	lines []domain.Line
}

func NewEngine() *Engine {
	return &Engine{}
}

// Add merges delta into an existing line for the product, or appends
// a new line at the end. A non-positive delta is rejected rather
// than treated as removal; removal is its own operation.
func (e *Engine) Add(p Product, delta int64) (domain.Cart, error) {
	if delta <= 0 {
		return e.Snapshot(), fmt.Errorf("%w: got %d", ErrInvalidQuantity, delta)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.lines) > 0 && e.lines[0].UnitPrice.Currency != p.UnitPrice.Currency {
		return e.snapshotLocked(), fmt.Errorf("%w: %s vs %s",
			ErrCurrencyMismatch, e.lines[0].UnitPrice.Currency, p.UnitPrice.Currency)
	}

	for i := range e.lines {
		if e.lines[i].ProductID == p.ID {
			e.lines[i].Quantity += delta
			return e.snapshotLocked(), nil
		}
	}

	e.lines = append(e.lines, domain.Line{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		Quantity:  delta,
	})
	return e.snapshotLocked(), nil
}

// SetQuantity sets the line to an absolute quantity. Zero or less
// removes the line entirely.
func (e *Engine) SetQuantity(productID, quantity int64) domain.Cart {
	e.mu.Lock()
	defer e.mu.Unlock()

	if quantity <= 0 {
		e.removeLocked(productID)
		return e.snapshotLocked()
	}

	for i := range e.lines {
		if e.lines[i].ProductID == productID {
			e.lines[i].Quantity = quantity
			break
		}
	}
	return e.snapshotLocked()
}

// Remove deletes the line if present. Removing an absent product is
// a no-op.
func (e *Engine) Remove(productID int64) domain.Cart {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.removeLocked(productID)
	return e.snapshotLocked()
}

func (e *Engine) Clear() domain.Cart {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lines = nil
	return domain.Cart{}
}

// Total sums unit price times quantity over all lines in exact
// minor-unit arithmetic.
func (e *Engine) Total() money.Money {
	e.mu.Lock()
	defer e.mu.Unlock()

	var total money.Money
	for i, l := range e.lines {
		if i == 0 {
			total = l.Subtotal()
			continue
		}
		// Mixed currencies are rejected in Add, every line shares one.
		total.Amount += l.Subtotal().Amount
	}
	return total
}

// LineCount is the number of distinct lines, used for the cart
// badge, not the summed quantity.
func (e *Engine) LineCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.lines)
}

func (e *Engine) Snapshot() domain.Cart {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() domain.Cart {
	lines := make([]domain.Line, len(e.lines))
	copy(lines, e.lines)
	return domain.Cart{Lines: lines}
}

func (e *Engine) removeLocked(productID int64) {
	for i := range e.lines {
		if e.lines[i].ProductID == productID {
			e.lines = append(e.lines[:i], e.lines[i+1:]...)
			return
		}
	}
}
