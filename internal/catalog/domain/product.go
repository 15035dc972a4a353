package domain

import (
	"time"

	"github.com/econext/storefront/pkg/money"
)

type Category struct {
	ID   int64
	Name string
}

type Product struct {
	ID           int64
	Name         string
	Description  string
	Category     Category
	CurrentPrice money.Money
	ImageURL     string
	Stock        int
	Tags         []string
	CreatedAt    time.Time
}

// TrendingItem pairs a product with its recent engagement counters.
type TrendingItem struct {
	Product   Product
	Views     int64
	Purchases int64
}
