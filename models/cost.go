package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Cost is a non-negative money amount with two decimal places, held in cents.
// It renders as a string ("7.00") and accepts either a JSON number or string.
type Cost int64

// maxCost bounds the integer part so cents always fit an int64
var maxCost = decimal.New(1, 15)

// ParseCost parses "7", "7.5" or "7.50" into cents; more than two decimal
// places is an error.
func ParseCost(s string) (Cost, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("cost: %q is not a number", s)
	}
	if d.Exponent() < -2 {
		return 0, fmt.Errorf("cost: no more than 2 decimal places allowed")
	}
	if d.Abs().GreaterThanOrEqual(maxCost) {
		return 0, fmt.Errorf("cost: %q is out of range", s)
	}
	return Cost(d.Shift(2).IntPart()), nil
}

// Decimal returns the amount as a decimal with two places
func (c Cost) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String formats the amount with exactly two decimal places
func (c Cost) String() string {
	return c.Decimal().StringFixed(2)
}

func (c Cost) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Cost) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = s
	}
	parsed, err := ParseCost(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value stores the amount as integer cents
func (c Cost) Value() (driver.Value, error) {
	return int64(c), nil
}

func (c *Cost) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*c = Cost(v)
	case nil:
		*c = 0
	default:
		return fmt.Errorf("cost: cannot scan %T", src)
	}
	return nil
}
