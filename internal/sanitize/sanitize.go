// Package sanitize normalizes free-text input against allow-list patterns.
// A returned error means the value was rejected outright; callers surface
// it as a field-level message.
package sanitize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	MaxNameLen    = 100
	MaxAddressLen = 200
	MaxPhoneLen   = 20
	MaxNotesLen   = 500
)

var (
	ErrEmpty = errors.New("value is empty")

	namePattern    = regexp.MustCompile(`^[\p{L}\p{M}' .-]+$`)
	addressPattern = regexp.MustCompile(`^[\p{L}\p{M}\d\s#.,°'/-]+$`)
	phonePattern   = regexp.MustCompile(`^[\d+\-() ]+$`)
	amountPattern  = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
)

// Name trims and validates a person name: letters (including diacritics),
// spaces, apostrophes, dots and hyphens only.
func Name(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", ErrEmpty
	}
	if len(v) > MaxNameLen {
		return "", fmt.Errorf("name longer than %d characters", MaxNameLen)
	}
	if !namePattern.MatchString(v) {
		return "", errors.New("name contains invalid characters")
	}
	return v, nil
}

// Address trims and validates a street address.
func Address(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", ErrEmpty
	}
	if len(v) > MaxAddressLen {
		return "", fmt.Errorf("address longer than %d characters", MaxAddressLen)
	}
	if !addressPattern.MatchString(v) {
		return "", errors.New("address contains invalid characters")
	}
	return v, nil
}

// Phone trims and validates a phone number: digits, +, -, parentheses
// and spaces.
func Phone(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", ErrEmpty
	}
	if len(v) > MaxPhoneLen {
		return "", fmt.Errorf("phone longer than %d characters", MaxPhoneLen)
	}
	if !phonePattern.MatchString(v) {
		return "", errors.New("phone contains invalid characters")
	}
	return v, nil
}

// Amount parses a positive monetary amount with at most two decimals.
func Amount(raw string) (decimal.Decimal, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return decimal.Zero, ErrEmpty
	}
	if !amountPattern.MatchString(v) {
		return decimal.Zero, errors.New("amount must be numeric with up to two decimals")
	}
	amount, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount: %w", err)
	}
	if !amount.IsPositive() {
		return decimal.Zero, errors.New("amount must be positive")
	}
	return amount, nil
}

// Text trims, length-caps and strips control characters from generic
// free text such as notes. Unlike the allow-list sanitizers it never
// rejects, it only normalizes.
func Text(raw string, maxLen int) string {
	v := strings.TrimSpace(raw)
	v = strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, v)
	if maxLen > 0 && len(v) > maxLen {
		// Back off to a rune boundary so the cut never leaves a
		// partial multibyte sequence behind.
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(v[cut]) {
			cut--
		}
		v = v[:cut]
	}
	return v
}
