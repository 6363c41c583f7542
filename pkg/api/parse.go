package api

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Free-text parsers shared by schemas. All of them are pure; "now" is
// always passed in where a reference time matters so behavior is
// reproducible in tests.

// dateLayouts are tried in order by ParseDate.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"02.01.2006",
}

// ParseDate accepts any string parseable as a calendar date and returns
// it in ISO form (YYYY-MM-DD). ok=false when no layout matches.
func ParseDate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// Age computes full years between an ISO date and now, decremented by
// one when the birthday has not yet been reached in now's calendar year.
func Age(isoDate string, now time.Time) int {
	t, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return 0
	}
	age := now.Year() - t.Year()
	if now.Month() < t.Month() || (now.Month() == t.Month() && now.Day() < t.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// ParseLocation splits a free-text location on its first comma. The
// first segment (trimmed) is the city; a second segment, stripped of
// non-alphabetic characters, becomes the region. Region is "" when no
// comma is present.
func ParseLocation(raw string) (city, region string) {
	parts := strings.SplitN(raw, ",", 2)
	city = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		var b strings.Builder
		for _, r := range parts[1] {
			if unicode.IsLetter(r) {
				b.WriteRune(r)
			}
		}
		region = b.String()
	}
	return city, region
}

var weightRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(kg|lbs|pounds)?`)

// ParseWeight extracts a decimal magnitude and an optional unit token
// from a free-text weight. The unit defaults to "lbs" when omitted;
// "pounds" is normalized to "lbs". Input with no number yields (0,
// "lbs") so the answer can act as a no-op skip rather than a rejection.
func ParseWeight(raw string) (magnitude float64, unit string) {
	unit = "lbs"
	m := weightRe.FindStringSubmatch(raw)
	if m == nil {
		return 0, unit
	}
	magnitude, _ = strconv.ParseFloat(m[1], 64)
	if m[2] != "" {
		switch strings.ToLower(m[2]) {
		case "kg":
			unit = "kg"
		default:
			unit = "lbs"
		}
	}
	return magnitude, unit
}

var currencyStripper = strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "")

// ParseScaledNumber parses human-entered magnitudes like "75k", "2.5m"
// or "$1,200": currency punctuation is stripped, a trailing k or m
// multiplies by a thousand or a million, and anything unparsable yields
// 0 rather than a rejection.
func ParseScaledNumber(raw string) float64 {
	s := strings.ToLower(strings.TrimSpace(currencyStripper.Replace(raw)))
	if s == "" {
		return 0
	}

	multiplier := 1.0
	switch {
	case strings.HasSuffix(s, "k"):
		multiplier = 1_000
		s = strings.TrimSuffix(s, "k")
	case strings.HasSuffix(s, "m"):
		multiplier = 1_000_000
		s = strings.TrimSuffix(s, "m")
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return n * multiplier
}

// NonEmptyString is a ValidateFunc accepting any string with visible
// content.
func NonEmptyString(value any) bool {
	s, ok := value.(string)
	return ok && strings.TrimSpace(s) != ""
}
