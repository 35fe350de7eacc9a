package table

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// Stringify is the raw text form of a cell, used by CSV. Numbers are never
// grouped and nil is the empty string.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", val)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case fmt.Stringer:
		return val.String()
	}
	return fmt.Sprint(v)
}

// Grouped renders numbers with English thousands separators (19365000 ->
// "19,365,000", at most three fraction digits). Non-numbers fall back to
// Stringify. Only PDF tables use it; CSV and JSON keep raw numbers.
func Grouped(v any) string {
	switch val := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return printer.Sprintf("%d", val)
	case float32:
		return groupFloat(float64(val))
	case float64:
		return groupFloat(val)
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return printer.Sprintf("%d", i)
		}
		if f, err := val.Float64(); err == nil {
			return groupFloat(f)
		}
	}
	return Stringify(v)
}

func groupFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Stringify(f)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return printer.Sprintf("%d", int64(f))
	}
	return printer.Sprintf("%v", number.Decimal(f, number.MaxFractionDigits(3)))
}
