// Package table holds the in-memory shape of a parsed tabular file: typed
// cell values and rows that remember their original column order.
package table

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Kind identifies the dynamic type of a Value.
type Kind int

const (
	Null Kind = iota
	Number
	Bool
	String
)

// Value is a single cell scalar after type inference.
type Value struct {
	kind Kind
	num  float64
	b    bool
	str  string
}

// maxExactFloat bounds numeric inference; larger magnitudes stay text so
// identifiers are not silently rounded.
const maxExactFloat = 1 << 53

var floatPattern = regexp.MustCompile(`^\s*-?(\d+\.?|\.\d+|\d+\.\d+)([eE][-+]?\d+)?\s*$`)

// numericText is the decimal grammar accepted when coercing text to a number.
var numericText = regexp.MustCompile(`^[-+]?(\d+\.?|\.\d+|\d+\.\d+)([eE][-+]?\d+)?$`)

// NullValue returns the empty cell value.
func NullValue() Value { return Value{} }

// NumberValue wraps a float.
func NumberValue(f float64) Value { return Value{kind: Number, num: f} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: Bool, b: b} }

// Text wraps a string verbatim, without inference.
func Text(s string) Value { return Value{kind: String, str: s} }

// Infer converts a raw cell into a typed Value: empty cells become Null,
// true/TRUE/false/FALSE become Bool, decimal literals within ±2^53 become
// Number and everything else stays String.
func Infer(raw string) Value {
	if raw == "" {
		return NullValue()
	}
	switch raw {
	case "true", "TRUE":
		return BoolValue(true)
	case "false", "FALSE":
		return BoolValue(false)
	}
	if floatPattern.MatchString(raw) {
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err == nil && f > -maxExactFloat && f < maxExactFloat {
			return NumberValue(f)
		}
	}
	return Text(raw)
}

// Kind reports the dynamic type.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the cell was empty.
func (v Value) IsNull() bool { return v.kind == Null }

// Float coerces the value to a number for averaging and never fails:
//   - Number: itself, NaN becomes 0
//   - Bool: 1 or 0
//   - String: trimmed decimal literal or Infinity, anything else becomes 0
//   - Null: 0
func (v Value) Float() float64 {
	switch v.kind {
	case Number:
		if math.IsNaN(v.num) {
			return 0
		}
		return v.num
	case Bool:
		if v.b {
			return 1
		}
		return 0
	case String:
		return textFloat(v.str)
	default:
		return 0
	}
}

// textFloat parses a trimmed decimal literal or Infinity with an optional
// sign. Out-of-range literals give ±Inf. Anything else is 0.
func textFloat(raw string) float64 {
	s := strings.TrimSpace(raw)
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if !numericText.MatchString(s) {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
			return f
		}
		return 0
	}
	return f
}

// String renders the value for text output. Null renders empty.
func (v Value) String() string {
	switch v.kind {
	case Number:
		return formatNumber(v.num)
	case Bool:
		return strconv.FormatBool(v.b)
	case String:
		return v.str
	default:
		return ""
	}
}

// MarshalJSON keeps the dynamic type in JSON output.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case Number:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return []byte(formatNumber(v.num)), nil
	case Bool:
		return json.Marshal(v.b)
	case String:
		return json.Marshal(v.str)
	default:
		return []byte("null"), nil
	}
}

// formatNumber produces the shortest decimal that round-trips, switching to
// exponent notation below 1e-6 and from 1e21 upward (e.g. "1e-7", "1e+21").
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs < 1e-6 || abs >= 1e21 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[0]
		digits := strings.TrimLeft(exp[1:], "0")
		return mant + "e" + string(sign) + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
