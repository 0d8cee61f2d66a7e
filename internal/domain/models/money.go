package models

import (
	"bytes"
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a monetary amount. The upstream API historically delivered
// amounts as either JSON numbers or decimal-formatted strings, and
// some columns may be NULL; all of that is normalized here, at the
// deserialization boundary, so the rest of the code only ever sees a
// decimal value. No rounding happens on Money itself.
type Money struct {
	decimal.Decimal
}

var jsonNull = []byte("null")

// NewMoney builds a Money from a float constant. Intended for tests
// and seed data, not for parsing user input.
func NewMoney(f float64) Money {
	return Money{decimal.NewFromFloat(f)}
}

// MoneyFromDecimal wraps an existing decimal value.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{d}
}

// UnmarshalJSON accepts a bare number, a quoted decimal string, an
// empty string, or null. Null and empty are treated as zero.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, jsonNull) || bytes.Equal(data, []byte(`""`)) {
		m.Decimal = decimal.Zero
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("money: invalid amount %s: %w", data, err)
	}
	m.Decimal = d
	return nil
}

// Scan implements sql.Scanner, mapping NULL columns to zero.
func (m *Money) Scan(value interface{}) error {
	if value == nil {
		m.Decimal = decimal.Zero
		return nil
	}
	return m.Decimal.Scan(value)
}

// Value implements driver.Valuer.
func (m Money) Value() (driver.Value, error) {
	return m.Decimal.Value()
}
