package domain

import "github.com/econext/storefront/pkg/money"

// Line is one distinct product in the cart. Quantity is always
// positive, a line that would reach zero is removed instead.
type Line struct {
	ProductID int64
	Name      string
	UnitPrice money.Money
	Quantity  int64
}

func (l Line) Subtotal() money.Money {
	return l.UnitPrice.Mul(l.Quantity)
}

// Cart holds lines in insertion order. Order only matters for
// display, lookups and totals are keyed by product ID.
type Cart struct {
	Lines []Line
}

func (c Cart) Empty() bool {
	return len(c.Lines) == 0
}
