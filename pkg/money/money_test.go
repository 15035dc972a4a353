package money

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"1234.56", 123456},
		{"10.00", 1000},
		{"3.50", 350},
		{"3.5", 350},
		{"0.05", 5},
		{"7", 700},
		{".99", 99},
		{"-12.30", -1230},
	}

	for _, tc := range cases {
		got, err := Parse("USD", tc.in)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", tc.in, err)
		}
		if got.Amount != tc.want {
			t.Fatalf("Parse(%q) = %d, want %d", tc.in, got.Amount, tc.want)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{"", "abc", "1.234", "1.2.3", "12,50", "-", "--5", "+5", "-+5"} {
		if _, err := Parse("USD", in); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("Parse(%q) expected ErrInvalidAmount, got %v", in, err)
		}
	}
}

func TestString(t *testing.T) {
	if got := New("USD", 2350).String(); got != "23.50" {
		t.Fatalf("String() = %q, want 23.50", got)
	}
	if got := New("USD", 5).String(); got != "0.05" {
		t.Fatalf("String() = %q, want 0.05", got)
	}
	if got := New("USD", -1230).String(); got != "-12.30" {
		t.Fatalf("String() = %q, want -12.30", got)
	}
}

func TestAddAndMul(t *testing.T) {
	a := New("USD", 1000)
	b := New("USD", 350)

	sum, err := a.Mul(2).Add(b)
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if sum.Amount != 2350 {
		t.Fatalf("got %d, want 2350", sum.Amount)
	}

	if _, err := a.Add(New("EUR", 1)); !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("expected ErrCurrencyMismatch, got %v", err)
	}
}
