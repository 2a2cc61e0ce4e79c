package table

import (
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"01/02/2006",
	"1/2/2006",
	"1/2/06",
	"01-02-06",
	"02.01.2006",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/06 15:04",
	"Jan 2, 2006",
	"2 Jan 2006",
	"02-Jan-06",
}

// Infer classifies a raw cell value. Whitespace-only is empty; numbers may carry
// thousands separators, a percent sign or a currency symbol.
func Infer(raw string) Kind {
	v := trimSpace(raw)
	if v == "" {
		return KindEmpty
	}
	if isNumeric(v) {
		return KindNumeric
	}
	if isDate(v) {
		return KindDate
	}
	return KindText
}

func isNumeric(v string) bool {
	v = strings.TrimSuffix(v, "%")
	v = strings.TrimLeft(v, "$\u20ac\u00a3\u00a5")
	v = strings.NewReplacer(" ", "", "\u00a0", "").Replace(v)
	if v == "" || !numericChars(v) {
		return false
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return true
	}
	// 1,234,567.89
	if strings.Contains(v, ",") {
		if _, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64); err == nil && validGrouping(v) {
			return true
		}
	}
	return false
}

// numericChars rejects the words ParseFloat accepts ("NaN", "Inf", "Infinity")
// and requires at least one digit.
func numericChars(v string) bool {
	digit := false
	for _, r := range v {
		switch {
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune("+-.,eE", r):
		default:
			return false
		}
	}
	return digit
}

// validGrouping rejects "1,2" style values that are more likely list text.
func validGrouping(v string) bool {
	intPart := v
	if i := strings.IndexByte(v, '.'); i >= 0 {
		intPart = v[:i]
	}
	intPart = strings.TrimLeft(intPart, "+-")
	groups := strings.Split(intPart, ",")
	if len(groups[0]) == 0 || len(groups[0]) > 3 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}

func isDate(v string) bool {
	for _, l := range dateLayouts {
		if _, err := time.Parse(l, v); err == nil {
			return true
		}
	}
	return false
}

func trimSpace(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
}
