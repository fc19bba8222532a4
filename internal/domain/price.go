package domain

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Price is an immutable currency-tagged amount such as "€42.50". The currency
// is whatever non-digit prefix the marketplace printed, so two prices are only
// comparable when their prefixes are identical.
type Price struct {
	currency string
	value    decimal.Decimal
}

// NewPrice builds a Price from a currency prefix and a value.
func NewPrice(currency string, value decimal.Decimal) Price {
	return Price{currency: strings.TrimSpace(currency), value: value}
}

// ParsePrice splits text into the leading currency glyphs and the numeric run
// that follows. Thousands separators (",") are removed before conversion.
func ParsePrice(text string) (Price, error) {
	s := strings.TrimSpace(text)
	idx := strings.IndexFunc(s, unicode.IsDigit)
	if idx < 0 {
		return Price{}, &FormatError{Input: text}
	}

	currency := strings.TrimSpace(s[:idx])
	num := strings.ReplaceAll(s[idx:], ",", "")
	value, err := decimal.NewFromString(num)
	if err != nil || value.IsNegative() {
		return Price{}, &FormatError{Input: text}
	}
	return Price{currency: currency, value: value}, nil
}

// Currency returns the currency prefix.
func (p Price) Currency() string { return p.currency }

// Value returns the numeric amount.
func (p Price) Value() decimal.Decimal { return p.value }

// IsZero reports whether p is the zero Price.
func (p Price) IsZero() bool { return p.currency == "" && p.value.IsZero() }

// String renders the canonical form accepted by ParsePrice. Amounts with at
// most two decimals are printed with exactly two.
func (p Price) String() string {
	if p.value.Equal(p.value.Round(2)) {
		return p.currency + p.value.StringFixed(2)
	}
	return p.currency + p.value.String()
}

// Compare returns -1, 0 or +1. Prices in different currencies cannot be
// ordered and yield an *IncomparableError.
func (p Price) Compare(other Price) (int, error) {
	if p.currency != other.currency {
		return 0, &IncomparableError{Op: "compare", Left: p.currency, Right: other.currency}
	}
	return p.value.Cmp(other.value), nil
}

// CompareValue compares only the amount against a plain number, ignoring the
// currency.
func (p Price) CompareValue(v decimal.Decimal) int {
	return p.value.Cmp(v)
}

// LessOrEqual reports p <= other.
func (p Price) LessOrEqual(other Price) (bool, error) {
	c, err := p.Compare(other)
	if err != nil {
		return false, err
	}
	return c <= 0, nil
}

// Equal reports whether both prices share currency and amount.
func (p Price) Equal(other Price) bool {
	return p.currency == other.currency && p.value.Equal(other.value)
}

// Add sums two prices of the same currency.
func (p Price) Add(other Price) (Price, error) {
	if p.currency != other.currency {
		return Price{}, &IncomparableError{Op: "add", Left: p.currency, Right: other.currency}
	}
	return Price{currency: p.currency, value: p.value.Add(other.value)}, nil
}

// MaxPrice returns the highest of prices. All prices must share a currency.
// The boolean is false when prices is empty.
func MaxPrice(prices []Price) (Price, bool, error) {
	if len(prices) == 0 {
		return Price{}, false, nil
	}
	best := prices[0]
	for _, p := range prices[1:] {
		c, err := p.Compare(best)
		if err != nil {
			return Price{}, false, err
		}
		if c > 0 {
			best = p
		}
	}
	return best, true, nil
}

// MarshalText implements encoding.TextMarshaler using the canonical form.
func (p Price) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Price) UnmarshalText(text []byte) error {
	parsed, err := ParsePrice(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// RateTable maps a currency prefix to the factor that converts one unit of it
// into the reference currency.
type RateTable map[string]decimal.Decimal

// Convert expresses p in the reference currency. Prices already in the
// reference currency are returned unchanged.
func (r RateTable) Convert(p Price, reference string) (Price, error) {
	if p.currency == reference {
		return p, nil
	}
	rate, ok := r[p.currency]
	if !ok {
		return Price{}, &IncomparableError{Op: "convert", Left: p.currency, Right: reference}
	}
	return Price{currency: reference, value: p.value.Mul(rate)}, nil
}
