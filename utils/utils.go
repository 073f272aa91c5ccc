package utils

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotAvailable is printed instead of a value that the source doesn't have.
const NotAvailable = "N/A"

// VietnamZone is the fixed UTC+7 zone used for trading days and message timestamps.
var VietnamZone = time.FixedZone("UTC+7", 7*60*60)

// FormatVND formats a VND amount.
// The unit is picked after rounding, so 999,950 is "1M VND", not "1,000k VND".
//
// Examples:
// 1500000 => "1.5M VND", 45000 => "45k VND", 45500 => "45.5k VND", 500 => "500 VND".
func FormatVND(v float64) string {
	switch {
	case math.Round(v/100)/10 >= 1_000:
		return scaled(v/1_000_000) + "M VND"
	case math.Round(v) >= 1_000:
		return scaled(v/1_000) + "k VND"
	default:
		return printer().Sprintf("%.0f", v) + " VND"
	}
}

// scaled prints v with one decimal and thousands separator, dropping a trailing ".0".
func scaled(v float64) string {
	return strings.TrimSuffix(printer().Sprintf("%.1f", v), ".0")
}

// FormatPercent formats a percentage change with an explicit sign and two decimals: "+2.35%", "-1.20%".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%+.2f%%", p)
}

// FormatSigned formats an absolute change with an explicit sign, thousands separator and two decimals.
func FormatSigned(v float64) string {
	if v >= 0 {
		return "+" + FormatNumber(v, 2)
	}
	return FormatNumber(v, 2)
}

// FormatNumber formats v with thousands separator and the given number of decimals.
func FormatNumber(v float64, decimals int) string {
	return printer().Sprintf(fmt.Sprintf("%%.%df", decimals), v)
}

// FormatUSD formats a USD amount: "$1,234.56".
func FormatUSD(v float64) string {
	return "$" + FormatNumber(v, 2)
}

// ParseAmount parses numbers like "25,070.00". Returns false for empty values, "-" and "N/A".
func ParseAmount(value string) (float64, bool) {
	v := strings.TrimSpace(value)
	if v == "" || v == "-" || strings.EqualFold(v, NotAvailable) {
		return 0, false
	}

	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Sanitize removes HTML tags, backticks and repeated whitespace from the text, so it can be placed
// inside a Markdown code block. Upstream errors often contain whole HTML pages.
func Sanitize(s string) string {
	s = html.UnescapeString(bluemonday.StrictPolicy().Sanitize(s))
	s = strings.ReplaceAll(s, "`", "'")
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// ErrorText returns a sanitized error message truncated to n runes.
func ErrorText(err error, n int) string {
	if err == nil {
		return ""
	}
	return Truncate(Sanitize(err.Error()), n)
}

func printer() *message.Printer {
	return message.NewPrinter(language.English)
}
