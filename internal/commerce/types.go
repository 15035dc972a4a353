package commerce

import (
	"fmt"
	"time"

	catalog "github.com/econext/storefront/internal/catalog/domain"
	checkout "github.com/econext/storefront/internal/checkout/domain"
	prediction "github.com/econext/storefront/internal/prediction/domain"
	session "github.com/econext/storefront/internal/session/domain"
	"github.com/econext/storefront/pkg/money"
)

// Wire payloads for the commerce API. Decimal amounts arrive as
// strings and are parsed into minor units at this boundary; nothing
// past this package touches floating-point money.

type categoryPayload struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type productPayload struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Category     categoryPayload `json:"category"`
	CurrentPrice string          `json:"current_price"`
	ImageURL     string          `json:"image_url"`
	Stock        int             `json:"stock"`
	Tags         []string        `json:"tags"`
	CreatedAt    string          `json:"created_at"`
}

func (p productPayload) toDomain(currency string) (catalog.Product, error) {
	price, err := money.Parse(currency, p.CurrentPrice)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("product %d price: %w", p.ID, err)
	}

	created, _ := time.Parse(time.RFC3339, p.CreatedAt)

	return catalog.Product{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Category:     catalog.Category{ID: p.Category.ID, Name: p.Category.Name},
		CurrentPrice: price,
		ImageURL:     p.ImageURL,
		Stock:        p.Stock,
		Tags:         p.Tags,
		CreatedAt:    created,
	}, nil
}

type trendingPayload struct {
	Product   productPayload `json:"product"`
	Views     int64          `json:"views"`
	Purchases int64          `json:"purchases"`
}

type userPayload struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (u userPayload) toDomain() session.User {
	return session.User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

type tokensPayload struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type predictionPayload struct {
	Recommendation  string  `json:"recommendation"`
	ConfidenceScore float64 `json:"confidence_score"`
	PriceChange     float64 `json:"price_change"`
	Day1Price       *string `json:"day1_price"`
	Day2Price       *string `json:"day2_price"`
	Day3Price       *string `json:"day3_price"`
	Day4Price       *string `json:"day4_price"`
	Day5Price       *string `json:"day5_price"`
	Day6Price       *string `json:"day6_price"`
	Day7Price       *string `json:"day7_price"`
}

func (p predictionPayload) toDomain(currency string) (*prediction.Record, error) {
	rec := &prediction.Record{
		Recommendation:  prediction.Band(p.Recommendation),
		ConfidenceScore: p.ConfidenceScore,
		PriceChange:     p.PriceChange,
	}

	days := []*string{
		p.Day1Price, p.Day2Price, p.Day3Price, p.Day4Price,
		p.Day5Price, p.Day6Price, p.Day7Price,
	}
	for i, raw := range days {
		if raw == nil {
			continue
		}
		m, err := money.Parse(currency, *raw)
		if err != nil {
			return nil, fmt.Errorf("day %d price: %w", i+1, err)
		}
		rec.DayPrices[i] = &m
	}

	return rec, nil
}

type searchItemPayload struct {
	Product productPayload `json:"product"`
	// Intent search explains matches in prose; visual search scores
	// them. Either may be absent.
	IntentMatch     string   `json:"intent_match"`
	MatchScore      *float64 `json:"match_score"`
	SimilarityScore *float64 `json:"similarity_score"`
}

type orderPayload struct {
	ID          int64  `json:"id"`
	Status      string `json:"status"`
	TotalAmount string `json:"total_amount"`
	CreatedAt   string `json:"created_at"`
}

func (o orderPayload) toDomain(currency string) (checkout.Order, error) {
	total, err := money.Parse(currency, o.TotalAmount)
	if err != nil {
		return checkout.Order{}, fmt.Errorf("order %d total: %w", o.ID, err)
	}

	created, _ := time.Parse(time.RFC3339, o.CreatedAt)

	return checkout.Order{
		ID:        o.ID,
		Status:    o.Status,
		Total:     total,
		CreatedAt: created,
	}, nil
}

type shippingPayload struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zipcode string `json:"zipcode"`
	Country string `json:"country"`
}

type orderItemPayload struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}
