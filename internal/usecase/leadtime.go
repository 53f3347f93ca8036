package usecase

import (
	"regexp"
	"strconv"
)

// DefaultLeadTimeWeeks is used when the lead time text has no number in it.
const DefaultLeadTimeWeeks = 4

// MaxLeadTimeWeeks caps parsed lead times so delivery dates stay within
// what the database can store.
const MaxLeadTimeWeeks = 520

// Matches "4週間", "4-6週間", "約3〜5週", "2 ~ 3 weeks" and similar.
var leadTimePattern = regexp.MustCompile(`(\d+)\s*[-〜~～]?\s*(\d+)?\s*(?:週間|週|weeks?)?`)

// ParseLeadTimeWeeks extracts a week count from free-form lead time text.
// With a range the upper bound wins.
func ParseLeadTimeWeeks(text string) int {
	m := leadTimePattern.FindStringSubmatch(text)
	if m == nil {
		return DefaultLeadTimeWeeks
	}
	weeks, err := strconv.Atoi(m[1])
	if err != nil {
		return DefaultLeadTimeWeeks
	}
	if m[2] != "" {
		if upper, err := strconv.Atoi(m[2]); err == nil && upper > weeks {
			weeks = upper
		}
	}
	if weeks > MaxLeadTimeWeeks {
		return MaxLeadTimeWeeks
	}
	return weeks
}
