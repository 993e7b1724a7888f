package geekcms

import (
	"regexp"
	"strings"
	"time"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases title and collapses everything but ASCII letters and
// digits into single dashes.
func Slugify(title string) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}

const legacyDateLayout = "January 2, 2006"

// ParseLegacyDate converts dates like "August 28, 2025". Anything else
// yields the current day.
func ParseLegacyDate(s string) Date {
	if t, err := time.Parse(legacyDateLayout, strings.TrimSpace(s)); err == nil {
		return Date(t)
	}
	if t, err := time.Parse(DateLayout, strings.TrimSpace(s)); err == nil {
		return Date(t)
	}
	y, m, d := time.Now().UTC().Date()
	return Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}
