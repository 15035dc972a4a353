package app

import (
	"context"
	"errors"
	"fmt"

	cart "github.com/econext/storefront/internal/cart/domain"
	"github.com/econext/storefront/internal/checkout/domain"
	session "github.com/econext/storefront/internal/session/domain"
)

var (
	ErrNotAuthenticated = errors.New("checkout requires an authenticated session")
	ErrEmptyCart        = errors.New("cart is empty")
)

type SessionReader interface {
	Current() session.Session
}

type CartController interface {
	Snapshot() cart.Cart
	Clear() cart.Cart
}

// OrderPlacer submits the order upstream. Implemented by the
// commerce adapter.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, shipping domain.Shipping, lines []cart.Line) (domain.Order, error)
}

// OrderReader serves the order history for the signed-in user.
type OrderReader interface {
	Orders(ctx context.Context) ([]domain.Order, error)
	OrderDetail(ctx context.Context, id int64) (domain.Order, error)
}

// Service gates and orchestrates order placement. On any failure
// the cart and session are left untouched; the cart is cleared only
// after the upstream confirms the order.
type Service struct {
	sessions SessionReader
	cart     CartController
	orders   OrderPlacer
	history  OrderReader
}

func NewService(sessions SessionReader, cart CartController, orders OrderPlacer, history OrderReader) *Service {
	return &Service{sessions: sessions, cart: cart, orders: orders, history: history}
}

func (s *Service) PlaceOrder(ctx context.Context, shipping domain.Shipping) (domain.Order, error) {
	if errs := shipping.Validate(); errs != nil {
		return domain.Order{}, errs
	}

	if !s.sessions.Current().Authenticated() {
		return domain.Order{}, ErrNotAuthenticated
	}

	snapshot := s.cart.Snapshot()
	if snapshot.Empty() {
		return domain.Order{}, ErrEmptyCart
	}

	order, err := s.orders.PlaceOrder(ctx, shipping, snapshot.Lines)
	if err != nil {
		return domain.Order{}, fmt.Errorf("place order: %w", err)
	}

	s.cart.Clear()
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context) ([]domain.Order, error) {
	if !s.sessions.Current().Authenticated() {
		return nil, ErrNotAuthenticated
	}
	return s.history.Orders(ctx)
}

func (s *Service) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	if !s.sessions.Current().Authenticated() {
		return domain.Order{}, ErrNotAuthenticated
	}
	return s.history.OrderDetail(ctx, id)
}
