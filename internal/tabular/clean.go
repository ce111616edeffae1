package tabular

// clean.go cleans and types individual fields.
//
// Both numeric patterns anchor the whole string after surrounding ASCII
// whitespace is trimmed, so " 7" is the integer 7 while "12abc" and "1 000"
// stay strings. Integers that overflow int64 fall through to the float parse.

import (
	"regexp"
	"strconv"
	"strings"
)

// numberSpace is the whitespace allowed around a number.
const numberSpace = " \t\n\v\f\r"

var (
	integerRegex = regexp.MustCompile(`^[+-]?\d+$`)

	// decimalRegex accepts integers, decimals and scientific notation.
	// Hex floats, NaN, Inf and digit separators are rejected.
	decimalRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)
)

// CleanField strips leading and trailing double quotes, then removes every
// backslash from what remains.
func CleanField(s string) string {
	s = strings.Trim(s, `"`)
	return strings.ReplaceAll(s, `\`, "")
}

// InferValue types an already cleaned field: integer, else float, else string.
func InferValue(s string) Value {
	if n, ok := parseInteger(s); ok {
		return IntValue(n)
	}
	if f, ok := parseDecimal(s); ok {
		return FloatValue(f)
	}
	return StringValue(s)
}

func parseInteger(s string) (int64, bool) {
	s = strings.Trim(s, numberSpace)
	if !integerRegex.MatchString(s) {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseDecimal(s string) (float64, bool) {
	s = strings.Trim(s, numberSpace)
	if !decimalRegex.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Out of range: ParseFloat reports ±Inf with ErrRange.
		return 0, false
	}
	return f, true
}
