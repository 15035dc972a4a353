package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/econext/storefront/pkg/money"
)

// Shipping is the checkout form. Validation happens here, before
// any network call, and reports every failing field at once.
type Shipping struct {
	Address string
	City    string
	State   string
	Zipcode string
	Country string
}

// FieldErrors maps form field names to messages.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid fields: " + strings.Join(names, ", ")
}

func (s Shipping) Validate() FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(s.Address) == "" {
		errs["address"] = "Address is required"
	}
	if strings.TrimSpace(s.City) == "" {
		errs["city"] = "City is required"
	}
	if strings.TrimSpace(s.State) == "" {
		errs["state"] = "State is required"
	}
	if strings.TrimSpace(s.Zipcode) == "" {
		errs["zipcode"] = "Zipcode is required"
	}
	if strings.TrimSpace(s.Country) == "" {
		errs["country"] = "Country is required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Order is the placed-order record as the commerce API reports it.
type Order struct {
	ID        int64
	Status    string
	Total     money.Money
	CreatedAt time.Time
}
