package item

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	NoDescriptionFallback = "No description available"
	NoURLFallback         = "No URL available"

	fieldSeparator = ": "
)

var (
	leadingNumber  = regexp.MustCompile(`^[+-]?(\d+(\.\d+)?|\.\d+)`)
	exponentSuffix = regexp.MustCompile(`^[eE][+-]?\d`)
)

// Completion is the pair extracted from a two-line model answer such as
//
//	Description: Amazon Item
//	Cost: 3.00
//
// Value holds the first line's value (a description or a URL).
type Completion struct {
	Value string
	Cost  decimal.Decimal
}

// ParseCompletion extracts the value and cost from the first two lines of a
// model answer. A missing first line yields fallback and a missing second
// line yields a zero cost. A line present without a "key: value" shape, or a
// cost without a leading number, is reported as ErrMalformedCompletion.
func ParseCompletion(text, fallback string) (Completion, error) {
	lines := strings.Split(strings.TrimSpace(text), "\n")

	firstLine := lineAt(lines, 0)
	costLine := lineAt(lines, 1)

	result := Completion{Value: fallback, Cost: decimal.Zero}

	if firstLine != "" {
		value, err := fieldValue(firstLine)
		if err != nil {
			return Completion{}, err
		}
		result.Value = value
	}

	if costLine != "" {
		raw, err := fieldValue(costLine)
		if err != nil {
			return Completion{}, err
		}
		cost, err := ParseCost(raw)
		if err != nil {
			return Completion{}, err
		}
		result.Cost = cost
	}

	return result, nil
}

// ParseCost reads the leading number of s, ignoring a currency sign and
// thousands separators, so "$1,299.99 USD" yields 1299.99. Exponent notation
// and values outside the storable cost range are malformed.
func ParseCost(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")

	match := leadingNumber.FindString(cleaned)
	if match == "" {
		return decimal.Zero, fmt.Errorf("%w: cost %q is not a number", ErrMalformedCompletion, s)
	}
	if exponentSuffix.MatchString(cleaned[len(match):]) {
		return decimal.Zero, fmt.Errorf("%w: cost %q uses exponent notation", ErrMalformedCompletion, s)
	}

	cost, err := decimal.NewFromString(match)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: cost %q: %v", ErrMalformedCompletion, s, err)
	}
	if err := checkCostRange(cost); err != nil {
		return decimal.Zero, fmt.Errorf("%w: cost %q: %v", ErrMalformedCompletion, s, err)
	}
	return cost, nil
}

func lineAt(lines []string, i int) string {
	if i >= len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[i])
}

// fieldValue returns the segment between the first and second separator.
func fieldValue(line string) (string, error) {
	parts := strings.Split(line, fieldSeparator)
	if len(parts) < 2 {
		return "", fmt.Errorf("%w: line %q has no value", ErrMalformedCompletion, line)
	}

	value := strings.TrimSpace(parts[1])
	if value == "" {
		return "", fmt.Errorf("%w: line %q has an empty value", ErrMalformedCompletion, line)
	}
	return value, nil
}
