// Package core provides the domain types shared by the reimbursement service.
//
// This file contains amount parsing and coercion at the storage/transport
// boundary, so that scoring code only ever sees validated numeric values.
package core

import (
	"math"
	"strconv"
	"strings"
)

// CoerceAmount normalizes a loosely typed amount into a non-negative float64.
//
// Expense rows can reach the scorer from storage layers that hand back
// strings, nulls or numbers. One bad record must never abort scoring of a
// whole batch, so anything that does not parse to a finite, non-negative
// number becomes 0. The zero value participates in baseline statistics like
// any other amount.
//
// Examples:
//
//	CoerceAmount(42.5)     -> 42.5
//	CoerceAmount("99,90")  -> 99.9
//	CoerceAmount(nil)      -> 0
//	CoerceAmount("n/a")    -> 0
//	CoerceAmount(-12.0)    -> 0
func CoerceAmount(v any) float64 {
	switch val := v.(type) {
	case nil:
		return 0
	case float64:
		return sanitizeAmount(val)
	case float32:
		return sanitizeAmount(float64(val))
	case int:
		return sanitizeAmount(float64(val))
	case int64:
		return sanitizeAmount(float64(val))
	case string:
		return parseAmountString(val)
	default:
		return 0
	}
}

func parseAmountString(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return sanitizeAmount(f)
}

func sanitizeAmount(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

// ParseAmount parses a user-supplied decimal string into a positive amount.
// Unlike CoerceAmount it rejects bad input, since the write path must not
// silently store zero-value claims. Accepts both dot and comma separators.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0, ErrInvalidAmount
	}
	return f, nil
}
