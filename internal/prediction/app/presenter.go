package app

import (
	"errors"
	"fmt"
	"math"

	"github.com/econext/storefront/internal/prediction/domain"
	"github.com/econext/storefront/pkg/money"
)

var (
	ErrNilRecord    = errors.New("prediction record is nil")
	ErrInvalidPrice = errors.New("current price must be positive")
)

// Present converts a raw forecast plus the product's current price
// into an internally consistent view. Callers with no record show a
// placeholder instead; a nil record here is a contract violation,
// not missing data.
func Present(raw *domain.Record, currentPrice money.Money) (domain.ForecastView, error) {
	if raw == nil {
		return domain.ForecastView{}, ErrNilRecord
	}
	if !currentPrice.IsPositive() {
		return domain.ForecastView{}, fmt.Errorf("%w: %s", ErrInvalidPrice, currentPrice)
	}

	view := domain.ForecastView{
		ChangePercent:     raw.PriceChange,
		ConfidencePercent: confidencePercent(raw.ConfidenceScore),
		Band:              raw.Recommendation,
	}

	// A missing forecast day means "unchanged from today", never
	// zero: a zero would corrupt the min/max normalization below.
	var sum int64
	for i, day := range raw.DayPrices {
		price := currentPrice
		if day != nil {
			price = *day
		}
		view.Series[i] = price
		sum += price.Amount
	}

	// Round half up at the division; this is the one display
	// rounding the average gets.
	view.Average = money.New(currentPrice.Currency, (sum+3)/7)

	minAmount, maxAmount := view.Series[0].Amount, view.Series[0].Amount
	for _, p := range view.Series[1:] {
		if p.Amount < minAmount {
			minAmount = p.Amount
		}
		if p.Amount > maxAmount {
			maxAmount = p.Amount
		}
	}

	for i, p := range view.Series {
		if maxAmount == minAmount {
			view.NormalizedHeights[i] = 50
			continue
		}
		// Rescaled into [20, 120] so the lowest bar stays visible
		// above the chart baseline.
		view.NormalizedHeights[i] = float64(p.Amount-minAmount)/float64(maxAmount-minAmount)*100 + 20
	}

	return view, nil
}

func confidencePercent(score float64) int {
	pct := int(math.Round(score * 100))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// FormatChange renders the signed change percent for display with
// one decimal, "+2.4%" / "-5.0%".
func FormatChange(changePercent float64) string {
	if changePercent > 0 {
		return fmt.Sprintf("+%.1f%%", changePercent)
	}
	return fmt.Sprintf("%.1f%%", changePercent)
}
