package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidAmount    = errors.New("invalid decimal amount")
	ErrCurrencyMismatch = errors.New("currency mismatch")
)

// Money is a fixed-point currency amount in minor units
// (cents, paise). All arithmetic stays in int64 so repeated
// additions never drift the way float accumulation does.
type Money struct {
	Currency string
	Amount   int64
}

func New(currency string, amount int64) Money {
	return Money{Currency: currency, Amount: amount}
}

// Parse converts a decimal string such as "1234.56" into minor
// units without ever round-tripping through a float. At most two
// fractional digits are accepted; shorter fractions are padded.
func Parse(currency, s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, fmt.Errorf("%w: empty string", ErrInvalidAmount)
	}

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	if s == "" {
		return Money{}, fmt.Errorf("%w: bare sign", ErrInvalidAmount)
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	// The sign was consumed above; anything non-digit left here,
	// including a second sign, is malformed.
	for i := 0; i < len(intPart); i++ {
		if intPart[i] < '0' || intPart[i] > '9' {
			return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	}
	if len(fracPart) > 2 {
		return Money{}, fmt.Errorf("%w: more than two fractional digits in %q", ErrInvalidAmount, s)
	}
	for i := 0; i < len(fracPart); i++ {
		if fracPart[i] < '0' || fracPart[i] > '9' {
			return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	}
	for len(fracPart) < 2 {
		fracPart += "0"
	}

	units, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	cents, err := strconv.ParseInt(fracPart, 10, 64)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	amount := units*100 + cents
	if neg {
		amount = -amount
	}
	return Money{Currency: currency, Amount: amount}, nil
}

func (m Money) Add(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, o.Currency)
	}
	return Money{Currency: m.Currency, Amount: m.Amount + o.Amount}, nil
}

// Mul scales the amount by an integer quantity.
func (m Money) Mul(qty int64) Money {
	return Money{Currency: m.Currency, Amount: m.Amount * qty}
}

func (m Money) IsZero() bool {
	return m.Amount == 0
}

func (m Money) IsPositive() bool {
	return m.Amount > 0
}

// String renders the amount as a plain decimal, "23.50".
func (m Money) String() string {
	a := m.Amount
	sign := ""
	if a < 0 {
		sign = "-"
		a = -a
	}
	return fmt.Sprintf("%s%d.%02d", sign, a/100, a%100)
}
