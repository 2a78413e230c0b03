// Package money parses Vietnamese-style amount text into numeric values.
//
// Accepted forms include "200k", "1.5tr", "1 triệu", "150.000" and plain
// numbers. The suffix "k" multiplies by a thousand, "tr"/"triệu" by a million.
package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrParse indicates that amount text could not be understood.
var ErrParse = errors.New("unrecognized amount")

// Parse converts localized amount text into a number.
//
// Examples:
//
//	Parse("200k")    -> 200_000
//	Parse("1.5tr")   -> 1_500_000
//	Parse("1 triệu") -> 1_000_000
//	Parse("150.000") -> 150_000
func Parse(text string) (float64, error) {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return 0, fmt.Errorf("%w: empty input", ErrParse)
	}

	t = strings.ReplaceAll(t, " ", "")
	t = strings.ReplaceAll(t, "triệu", "tr")

	multiplier := 1.0
	switch {
	case strings.HasSuffix(t, "k"):
		multiplier = 1_000
		t = strings.TrimSuffix(t, "k")
	case strings.HasSuffix(t, "tr"):
		multiplier = 1_000_000
		t = strings.TrimSuffix(t, "tr")
	}

	t = normalizeSeparators(t)
	if t == "" {
		return 0, fmt.Errorf("%w: no digits in %q", ErrParse, text)
	}

	n, err := strconv.ParseFloat(t, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrParse, text)
	}

	return n * multiplier, nil
}

// SplitAmountAndNote splits one line of free text into an amount and an
// optional note: the first whitespace-separated token is parsed as the
// amount, the rest becomes the note.
//
// Examples:
//
//	SplitAmountAndNote("35k ăn sáng") -> 35_000, "ăn sáng"
//	SplitAmountAndNote("150000")      -> 150_000, ""
func SplitAmountAndNote(raw string) (float64, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, "", fmt.Errorf("%w: empty input", ErrParse)
	}

	idx := strings.IndexFunc(raw, unicode.IsSpace)
	if idx < 0 {
		amount, err := Parse(raw)
		return amount, "", err
	}

	amount, err := Parse(raw[:idx])
	if err != nil {
		return 0, "", err
	}
	return amount, strings.TrimSpace(raw[idx:]), nil
}

// normalizeSeparators resolves "." and "," characters: a separator followed
// by exactly three digits is a thousands grouping mark and is dropped; any
// other separator is a decimal point. This keeps both "150.000" -> 150000
// and "1.5tr" -> 1.5 million working.
func normalizeSeparators(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != ',' {
			b.WriteRune(r)
			continue
		}
		digits := 0
		for j := i + 1; j < len(runes) && unicode.IsDigit(runes[j]); j++ {
			digits++
		}
		if digits == 3 {
			continue
		}
		b.WriteRune('.')
	}
	return b.String()
}
