package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrUnparseable reports a field value that could not be coerced. Callers
// treat it as a row-level parse warning, never as a fatal error.
var ErrUnparseable = errors.New("unparseable value")

// ParseAmount coerces a raw monetary or quantity field into a decimal.
//
// Accepted forms: plain numbers, "$1,234.56", "(123.45)" for negatives,
// currency symbols, and the European "1.234,56" style. Blank values parse to
// zero. Anything else returns zero together with ErrUnparseable so the caller
// can record a parse warning.
func ParseAmount(raw string) (decimal.Decimal, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return decimal.Zero, nil
	}

	text = strings.ReplaceAll(text, ",", "")
	if strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") {
		text = "-" + text[1:len(text)-1]
	}
	for _, symbol := range []string{"$", "€", "£"} {
		text = strings.ReplaceAll(text, symbol, "")
	}

	if d, err := decimal.NewFromString(text); err == nil {
		return d, nil
	}

	// European format: dots as thousands separators, comma as decimal point.
	alt := strings.TrimSpace(raw)
	if strings.Contains(alt, ".") && strings.Contains(alt, ",") {
		alt = strings.ReplaceAll(alt, ".", "")
		alt = strings.ReplaceAll(alt, ",", ".")
	} else if strings.Count(alt, ",") == 1 {
		alt = strings.ReplaceAll(alt, ",", ".")
	}
	if d, err := decimal.NewFromString(alt); err == nil {
		return d, nil
	}

	return decimal.Zero, ErrUnparseable
}

// dateLayouts covers the date forms seen in settlement extracts.
var dateLayouts = []string{
	"2006-01-02T15:04:05-07:00",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02.01.2006 15:04:05 MST",
	"02.01.2006",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"2.1.2006",
}

// ParseDate coerces a raw date field. Blank values return nil without error;
// unrecognized values return nil with ErrUnparseable.
func ParseDate(raw string) (*time.Time, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, ErrUnparseable
}
