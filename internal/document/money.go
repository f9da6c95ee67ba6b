package document

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a decimal that unmarshals tolerantly. Provider output renders
// money as JSON numbers, plain strings, strings with currency symbols or
// thousands separators, or null; all of those decode without error and
// unparseable values decode to zero rather than failing the document.
type Amount struct {
	decimal.Decimal
}

func NewAmount(d decimal.Decimal) Amount { return Amount{d} }

func AmountFromFloat(f float64) Amount { return Amount{decimal.NewFromFloat(f)} }

func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		a.Decimal = decimal.Zero
		return nil
	}
	if s[0] == '"' {
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		a.Decimal = ParseMoney(raw)
		return nil
	}
	var d decimal.Decimal
	if err := json.Unmarshal(b, &d); err != nil {
		a.Decimal = decimal.Zero
		return nil
	}
	a.Decimal = d
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return a.Decimal.MarshalJSON()
}

// ParseMoney converts a human-written money string to a decimal. Currency
// symbols and code suffixes are stripped; both "1.234,56" and "1,234.56"
// grouping styles are recognized. Unparseable input yields zero.
func ParseMoney(s string) decimal.Decimal {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" || cleaned == "-" {
		return decimal.Zero
	}

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0 && lastComma > lastDot:
		// European grouping: 1.234,56
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	case lastComma >= 0 && lastDot > lastComma:
		// US grouping: 1,234.56
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	case lastComma >= 0:
		// Commas only: decimal comma when a single comma has at most two
		// trailing digits, thousands grouping otherwise.
		parts := strings.Split(cleaned, ",")
		if len(parts) == 2 && len(parts[1]) <= 2 {
			cleaned = parts[0] + "." + parts[1]
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}
