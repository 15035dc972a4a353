package domain

import "github.com/econext/storefront/pkg/money"

// Band is the upstream forecast's qualitative signal. It is passed
// through verbatim, never recomputed from price movement: the two
// may come from different upstream heuristics.
type Band string

const (
	BandBestPrice Band = "best_price"
	BandWait      Band = "wait"
	BandNeutral   Band = "neutral"
)

// Record is the raw 7-day forecast as delivered. A nil day price
// means the model produced no value for that day.
type Record struct {
	Recommendation  Band
	ConfidenceScore float64
	// PriceChange is the expected change in percent, signed.
	PriceChange float64
	DayPrices   [7]*money.Money
}

// ForecastView is the render-ready projection of a Record against
// the product's current price. Recomputed fresh per render, never
// persisted.
type ForecastView struct {
	Series            [7]money.Money
	Average           money.Money
	ChangePercent     float64
	ConfidencePercent int
	Band              Band
	NormalizedHeights [7]float64
}
