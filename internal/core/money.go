// Package core provides money parsing and handling utilities.
//
// Amounts arrive from the API either as JSON numbers or as JSON strings.
// They are coerced to decimals; anything that does not parse is reported
// as not ok so aggregation can skip it without failing.
package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount converts a decimal string as sent by the API to a Decimal.
//
// Only a dot is accepted as decimal separator, with an optional sign.
// Refunds arrive as negative amounts, so negatives are allowed. Commas are
// rejected: "1,234" is ambiguous between a grouping and a decimal comma.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 0, ErrInvalidAmount
//	ParseAmount("abc")   -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.Contains(s, ",") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// CoerceMoney decodes a raw JSON amount. Numbers and numeric strings are
// accepted; null, booleans, objects and non-numeric strings are not.
func CoerceMoney(raw json.RawMessage) (decimal.Decimal, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return decimal.Zero, false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero, false
		}
		d, err := ParseAmount(s)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		d, err := decimal.NewFromString(string(raw))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}

// Amount returns the coerced line total.
func (l LineItem) Amount() (decimal.Decimal, bool) {
	return CoerceMoney(l.TotalMoney)
}
