package gateway

import (
	"time"

	cartdomain "github.com/econext/storefront/internal/cart/domain"
	catalog "github.com/econext/storefront/internal/catalog/domain"
	checkoutdomain "github.com/econext/storefront/internal/checkout/domain"
	predictionapp "github.com/econext/storefront/internal/prediction/app"
	prediction "github.com/econext/storefront/internal/prediction/domain"
	searchdomain "github.com/econext/storefront/internal/search/domain"
	session "github.com/econext/storefront/internal/session/domain"
)

type sessionView struct {
	Authenticated bool          `json:"authenticated"`
	User          *session.User `json:"user,omitempty"`
}

func toSessionView(s session.Session) sessionView {
	if !s.Authenticated() {
		return sessionView{}
	}
	return sessionView{Authenticated: true, User: s.User}
}

type categoryView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type productView struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Category    categoryView  `json:"category"`
	Price       string        `json:"price"`
	Currency    string        `json:"currency"`
	ImageURL    string        `json:"image_url,omitempty"`
	Stock       int           `json:"stock"`
	Tags        []string      `json:"tags,omitempty"`
	Forecast    *forecastView `json:"forecast,omitempty"`
}

func toProductView(p catalog.Product, forecast *forecastView) productView {
	return productView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    categoryView{ID: p.Category.ID, Name: p.Category.Name},
		Price:       p.CurrentPrice.String(),
		Currency:    p.CurrentPrice.Currency,
		ImageURL:    p.ImageURL,
		Stock:       p.Stock,
		Tags:        p.Tags,
		Forecast:    forecast,
	}
}

type forecastView struct {
	Series            []string  `json:"series"`
	Average           string    `json:"average"`
	Change            string    `json:"change"`
	ChangePercent     float64   `json:"change_percent"`
	ConfidencePercent int       `json:"confidence_percent"`
	Band              string    `json:"band"`
	Heights           []float64 `json:"heights"`
}

func toForecastView(v prediction.ForecastView) *forecastView {
	out := &forecastView{
		Series:            make([]string, len(v.Series)),
		Average:           v.Average.String(),
		Change:            predictionapp.FormatChange(v.ChangePercent),
		ChangePercent:     v.ChangePercent,
		ConfidencePercent: v.ConfidencePercent,
		Band:              string(v.Band),
		Heights:           v.NormalizedHeights[:],
	}
	for i, p := range v.Series {
		out.Series[i] = p.String()
	}
	return out
}

type trendingView struct {
	Product   productView `json:"product"`
	Views     int64       `json:"views"`
	Purchases int64       `json:"purchases"`
}

type matchView struct {
	Product     productView `json:"product"`
	Explanation string      `json:"explanation,omitempty"`
}

type searchCategoryView struct {
	Label string      `json:"label"`
	Items []matchView `json:"items"`
}

type searchResultView struct {
	Categories []searchCategoryView `json:"categories"`
	TotalFound int                  `json:"total_found"`
}

func toSearchResultView(rs searchdomain.ResultSet) searchResultView {
	out := searchResultView{
		Categories: make([]searchCategoryView, 0, len(rs.Categories)),
		TotalFound: rs.TotalFound(),
	}
	for _, cat := range rs.Categories {
		items := make([]matchView, 0, len(cat.Items))
		for _, m := range cat.Items {
			items = append(items, matchView{
				Product:     toProductView(m.Product, nil),
				Explanation: m.Explanation,
			})
		}
		out.Categories = append(out.Categories, searchCategoryView{Label: cat.Label, Items: items})
	}
	return out
}

type cartLineView struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int64  `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

type cartView struct {
	Lines     []cartLineView `json:"lines"`
	LineCount int            `json:"line_count"`
	Total     string         `json:"total"`
	Currency  string         `json:"currency"`
}

func (s *Server) toCartView(c cartdomain.Cart) cartView {
	total := s.cart.Total()
	// An empty cart totals to the zero Money, which carries no
	// currency; fall back to the client's configured one.
	currency := total.Currency
	if currency == "" {
		currency = s.client.Currency()
	}
	out := cartView{
		Lines:     make([]cartLineView, 0, len(c.Lines)),
		LineCount: len(c.Lines),
		Total:     total.String(),
		Currency:  currency,
	}
	for _, l := range c.Lines {
		out.Lines = append(out.Lines, cartLineView{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice.String(),
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal().String(),
		})
	}
	return out
}

type orderView struct {
	ID        int64     `json:"id"`
	Status    string    `json:"status"`
	Total     string    `json:"total"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

func toOrderView(o checkoutdomain.Order) orderView {
	return orderView{
		ID:        o.ID,
		Status:    o.Status,
		Total:     o.Total.String(),
		Currency:  o.Total.Currency,
		CreatedAt: o.CreatedAt,
	}
}
