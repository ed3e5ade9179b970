package table

import (
	"math"
	"strconv"
	"strings"
)

// Kind classifies the value held by a Cell.
type Kind uint8

const (
	KindNA Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNA:
		return "na"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Cell is a single spreadsheet value. The zero value is NA.
type Cell struct {
	kind Kind
	i    int64
	f    float64
	b    bool
	s    string
}

// NA returns the missing-value cell.
func NA() Cell { return Cell{} }

// Int returns an integer cell.
func Int(v int64) Cell { return Cell{kind: KindInt, i: v} }

// Float returns a floating-point cell. NaN is stored as NA.
func Float(v float64) Cell {
	if math.IsNaN(v) {
		return NA()
	}
	return Cell{kind: KindFloat, f: v}
}

// Bool returns a boolean cell.
func Bool(v bool) Cell { return Cell{kind: KindBool, b: v} }

// String returns a text cell.
func String(v string) Cell { return Cell{kind: KindString, s: v} }

// Kind reports the cell kind.
func (c Cell) Kind() Kind { return c.kind }

// IsNA reports whether the cell is missing.
func (c Cell) IsNA() bool { return c.kind == KindNA }

// IsNumeric reports whether the cell holds an int, float, or bool.
// Booleans count as numeric.
func (c Cell) IsNumeric() bool {
	switch c.kind {
	case KindInt, KindFloat, KindBool:
		return true
	default:
		return false
	}
}

// Number returns the numeric value of the cell. Booleans map to 0 and 1.
func (c Cell) Number() (float64, bool) {
	switch c.kind {
	case KindInt:
		return float64(c.i), true
	case KindFloat:
		return c.f, true
	case KindBool:
		if c.b {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// Text returns the raw string of a text cell.
func (c Cell) Text() (string, bool) {
	if c.kind != KindString {
		return "", false
	}
	return c.s, true
}

// String renders the cell the way it is written to TSV output. NA renders empty.
func (c Cell) String() string {
	switch c.kind {
	case KindInt:
		return strconv.FormatInt(c.i, 10)
	case KindFloat:
		return formatFloat(c.f)
	case KindBool:
		if c.b {
			return "True"
		}
		return "False"
	case KindString:
		return c.s
	default:
		return ""
	}
}

// Key returns a comparison key under which equal values collide: 1, 1.0 and
// True share a key, as do distinct-kind zeros.
func (c Cell) Key() string {
	if n, ok := c.Number(); ok {
		return "n:" + strconv.FormatFloat(n, 'g', -1, 64)
	}
	if c.kind == KindString {
		return "s:" + c.s
	}
	return "na"
}

// Equal reports whether two cells hold the same value under Key semantics.
func (c Cell) Equal(other Cell) bool { return c.Key() == other.Key() }

var naTokens = map[string]struct{}{
	"":         {},
	"NA":       {},
	"N/A":      {},
	"n/a":      {},
	"NaN":      {},
	"nan":      {},
	"-NaN":     {},
	"-nan":     {},
	"NULL":     {},
	"null":     {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"<NA>":     {},
	"1.#IND":   {},
	"-1.#IND":  {},
	"1.#QNAN":  {},
	"-1.#QNAN": {},
}

// IsNAToken reports whether raw spreadsheet text denotes a missing value.
func IsNAToken(raw string) bool {
	_, ok := naTokens[strings.TrimSpace(raw)]
	return ok
}

// Parse infers a Cell from raw spreadsheet text.
func Parse(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if IsNAToken(trimmed) {
		return NA()
	}
	switch trimmed {
	case "True", "TRUE", "true":
		return Bool(true)
	case "False", "FALSE", "false":
		return Bool(false)
	}
	if v, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return Int(v)
	}
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Float(v)
	}
	return String(raw)
}

func formatFloat(v float64) string {
	if math.IsInf(v, 0) {
		if v > 0 {
			return "inf"
		}
		return "-inf"
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e16 {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
