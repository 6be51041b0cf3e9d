package item

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrDuplicateItem          = errors.New("item already exists")
	ErrInvalidCost            = errors.New("invalid cost")
	ErrMalformedCompletion    = errors.New("malformed completion response")
	ErrCompleterNotConfigured = errors.New("completion API key is not set")
)

// Costs are stored as NUMERIC or Decimal128, and rendered in full on every
// response, so they are kept to plain decimals of bounded size.
const (
	maxCostScale         = 12
	maxCostIntegerDigits = 15
)

var plainDecimal = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// checkCostRange rejects a cost with more than maxCostScale fractional digits
// or more than maxCostIntegerDigits integer digits. It reads only the exponent
// and coefficient, never the expanded value.
func checkCostRange(d decimal.Decimal) error {
	exp := d.Exponent()
	if exp > maxCostIntegerDigits || exp < -maxCostScale {
		return fmt.Errorf("exponent %d out of range", exp)
	}
	c := d.Coefficient()
	if digits := len(c.Abs(c).String()) + int(exp); digits > maxCostIntegerDigits {
		return fmt.Errorf("%d integer digits exceeds %d", digits, maxCostIntegerDigits)
	}
	return nil
}

// parseCost reads a user-supplied cost written as a plain decimal.
func parseCost(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if !plainDecimal.MatchString(s) {
		return decimal.Zero, fmt.Errorf("%w %q: not a plain decimal", ErrInvalidCost, s)
	}
	cost, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w %q: %v", ErrInvalidCost, s, err)
	}
	if err := checkCostRange(cost); err != nil {
		return decimal.Zero, fmt.Errorf("%w %q: %v", ErrInvalidCost, s, err)
	}
	return cost, nil
}

// ValidationError reports missing or invalid user input. Message is safe to
// show to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Item is a single purchase record owned by one user. ID is unique.
type Item struct {
	ID          string
	Description string
	Cost        decimal.Decimal
	Date        time.Time
	URL         string
	UserID      string
}

// AddItemParams carries a direct submission. Cost stays textual until the
// service parses it.
type AddItemParams struct {
	Description string
	Cost        string
	URL         string
}

func (p *AddItemParams) Validate() error {
	if strings.TrimSpace(p.Description) == "" ||
		strings.TrimSpace(p.Cost) == "" ||
		strings.TrimSpace(p.URL) == "" {
		return &ValidationError{Message: "Description, cost, and URL are required"}
	}
	return nil
}
