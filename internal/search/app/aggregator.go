package app

import (
	"fmt"

	"github.com/econext/storefront/internal/search/domain"
)

// VisualCategoryLabel is the single synthetic category visual
// search results are grouped under.
const VisualCategoryLabel = "Visual Search Results"

// FromIntentSearch shapes categorized text-intent matches into a
// result set. Category and item order are the upstream order;
// categories with no items are dropped.
func FromIntentSearch(categories []domain.Category) domain.ResultSet {
	var out domain.ResultSet
	for _, c := range categories {
		if len(c.Items) == 0 {
			continue
		}
		items := make([]domain.Match, len(c.Items))
		copy(items, c.Items)
		out.Categories = append(out.Categories, domain.Category{
			Label: c.Label,
			Items: items,
		})
	}
	return out
}

// FromVisualSearch groups similarity matches under one synthetic
// category and derives a percentage explanation from each score,
// one-decimal rounding (0.8734 -> "87.3%"). Input order is
// preserved, no re-sorting by score.
func FromVisualSearch(matches []domain.Match) domain.ResultSet {
	if len(matches) == 0 {
		return domain.ResultSet{}
	}

	items := make([]domain.Match, len(matches))
	for i, m := range matches {
		item := m
		if m.Score != nil {
			item.Explanation = fmt.Sprintf("%.1f%%", *m.Score*100)
		}
		items[i] = item
	}

	return domain.ResultSet{
		Categories: []domain.Category{{Label: VisualCategoryLabel, Items: items}},
	}
}
