package export

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Placeholders substituted for a column whose key is missing from a row.
const (
	SpreadsheetPlaceholder = "N/A"
	DocumentPlaceholder    = ""
)

// FormatCurrency renders numeric values as US dollars with thousands
// grouping and two decimals. Anything else is returned as its display
// string, untouched.
func FormatCurrency(v any) string {
	d, ok := toDecimal(v)
	if !ok {
		return Stringify(v)
	}

	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	whole, cents, _ := strings.Cut(d.Abs().StringFixed(2), ".")
	return sign + "$" + groupThousands(whole) + "." + cents
}

// groupThousands inserts commas into a string of ASCII digits.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Stringify returns the display string of a present value.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	default:
		return fmt.Sprint(t)
	}
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(t), true
	case float32:
		return decimal.NewFromFloat32(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case int32:
		return decimal.NewFromInt32(t), true
	default:
		return decimal.Decimal{}, false
	}
}
