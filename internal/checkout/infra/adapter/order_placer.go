package adapter

import (
	"context"

	cart "github.com/econext/storefront/internal/cart/domain"
	"github.com/econext/storefront/internal/checkout/domain"
	"github.com/econext/storefront/internal/commerce"
)

// CommerceOrderPlacer submits orders through the commerce API
// client, translating cart lines into the wire's order items.
type CommerceOrderPlacer struct {
	client *commerce.Client
}

func NewCommerceOrderPlacer(client *commerce.Client) *CommerceOrderPlacer {
	return &CommerceOrderPlacer{client: client}
}

func (p *CommerceOrderPlacer) PlaceOrder(ctx context.Context, shipping domain.Shipping, lines []cart.Line) (domain.Order, error) {
	orderLines := make([]commerce.OrderLine, 0, len(lines))
	for _, l := range lines {
		orderLines = append(orderLines, commerce.OrderLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
		})
	}
	return p.client.CreateOrder(ctx, shipping, orderLines)
}
