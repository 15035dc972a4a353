package app

import (
	"context"

	"github.com/econext/storefront/internal/catalog/domain"
	prediction "github.com/econext/storefront/internal/prediction/domain"
)

type ProductReader interface {
	Products(ctx context.Context, page, perPage int) ([]domain.Product, error)
	ProductDetail(ctx context.Context, id int64) (domain.Product, *prediction.Record, error)
	Trending(ctx context.Context) ([]domain.TrendingItem, error)
}

type PredictionReader interface {
	PricePrediction(ctx context.Context, productID int64) (*prediction.Record, error)
}
