package domain

import catalog "github.com/econext/storefront/internal/catalog/domain"

// Match is one scored hit. Score and Explanation are optional:
// upstream payloads may omit either and that is not an error.
type Match struct {
	Product     catalog.Product
	Score       *float64
	Explanation string
}

// Category is a labeled run of matches. Label order across a result
// set controls display order.
type Category struct {
	Label string
	Items []Match
}

// ResultSet is the uniform shape both search modes reduce to.
type ResultSet struct {
	Categories []Category
}

func (r ResultSet) Empty() bool {
	return len(r.Categories) == 0
}

// TotalFound counts matches across all categories.
func (r ResultSet) TotalFound() int {
	n := 0
	for _, c := range r.Categories {
		n += len(c.Items)
	}
	return n
}
