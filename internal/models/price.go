package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// freeTokens are substrings that mark a free-form price as free of charge.
// Substring matching over arbitrary text is a best-effort heuristic: a price
// such as "freeform donation" also matches. See the pipeline tests for the
// documented limits.
var freeTokens = []string{
	"free",
	"gratis",
	"gratuit",
	"kostenlos",
	"безплатно",
	"безплатен",
	"бесплатно",
}

// Price is an event price as persisted by the authority: either a plain
// number or a free-form string such as "10 BGN" or "Безплатно".
type Price struct {
	Amount  float64
	Text    string
	Numeric bool
}

// NumericPrice builds a numeric price.
func NumericPrice(amount float64) Price {
	return Price{Amount: amount, Numeric: true}
}

// TextPrice builds a free-form price.
func TextPrice(text string) Price {
	return Price{Text: text}
}

// IsZero reports whether no price was supplied at all.
func (p Price) IsZero() bool {
	return !p.Numeric && p.Text == ""
}

// IsFree reports whether the price marks the event as free of charge:
// numerically zero, the literal numeral zero, or text containing a
// free-indicating token in any supported language.
func (p Price) IsFree() bool {
	if p.Numeric {
		return p.Amount == 0
	}
	text := strings.ToLower(strings.TrimSpace(p.Text))
	if text == "" {
		return false
	}
	if n, err := strconv.ParseFloat(text, 64); err == nil {
		return n == 0
	}
	for _, token := range freeTokens {
		if strings.Contains(text, token) {
			return true
		}
	}
	return false
}

func (p Price) String() string {
	if p.Numeric {
		return strconv.FormatFloat(p.Amount, 'f', -1, 64)
	}
	return p.Text
}

// UnmarshalJSON accepts a number, a string, or null.
func (p *Price) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*p = Price{}
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Price{Text: s}
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("price must be a string or number: %w", err)
	}
	*p = Price{Amount: n, Numeric: true}
	return nil
}

// MarshalJSON emits a number for numeric prices and a string otherwise.
func (p Price) MarshalJSON() ([]byte, error) {
	if p.Numeric {
		return json.Marshal(p.Amount)
	}
	return json.Marshal(p.Text)
}
