// Package contact validates and normalizes the free-text identity
// fields collected during the chat flow: emails, phone numbers, names,
// coupon codes and DD/MM/YYYY birth dates.
package contact

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

type Kind string

const (
	KindNone  Kind = ""
	KindEmail Kind = "email"
	KindPhone Kind = "phone"
)

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern  = regexp.MustCompile(`^(\+?[1-9][0-9]{1,14}|[0-9]{9,11})$`)
	couponPattern = regexp.MustCompile(`^[a-zA-Z0-9-]{2,50}$`)
	namePattern   = regexp.MustCompile(`^[a-zA-ZáéíóúñÁÉÍÓÚÑ\s'-]{2,100}$`)
	datePattern   = regexp.MustCompile(`^[0-9]{1,2}/[0-9]{1,2}/[0-9]{4}$`)
)

func IsEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

func IsPhone(s string) bool {
	return phonePattern.MatchString(stripSpaces(s))
}

func IsName(s string) bool {
	return namePattern.MatchString(strings.TrimSpace(s))
}

func IsCouponCode(s string) bool {
	return couponPattern.MatchString(strings.TrimSpace(s))
}

// Detect classifies free-text input as an email or a phone number.
// Returns KindNone when it is neither.
func Detect(s string) Kind {
	s = strings.TrimSpace(s)
	if IsEmail(s) {
		return KindEmail
	}
	if IsPhone(s) {
		return KindPhone
	}
	return KindNone
}

// NormalizePhone strips spaces and a leading plus sign.
func NormalizePhone(s string) string {
	return strings.ReplaceAll(stripSpaces(s), "+", "")
}

// IsBirthDate reports whether s is a plausible DD/MM/YYYY date.
func IsBirthDate(s string) bool {
	s = strings.TrimSpace(s)
	if !datePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse("2/1/2006", s)
	return err == nil
}

// ToISODate converts a DD/MM/YYYY date to ISO 8601 (YYYY-MM-DD) for
// transmission to the backend. Returns an error when the input does not
// parse as a real calendar date.
func ToISODate(s string) (string, error) {
	t, err := time.Parse("2/1/2006", strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("parse birth date: %w", err)
	}
	return t.Format("2006-01-02"), nil
}

// Age computes full years elapsed from an ISO 8601 birth date to now.
func Age(isoDate string, now time.Time) (int, error) {
	t, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return 0, fmt.Errorf("parse birth date: %w", err)
	}
	years := now.Year() - t.Year()
	if now.Month() < t.Month() || (now.Month() == t.Month() && now.Day() < t.Day()) {
		years--
	}
	if years < 0 {
		years = 0
	}
	return years, nil
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
