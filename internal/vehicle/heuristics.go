package vehicle

import (
	"strings"
	"time"

	"github.com/dshills/carverdict/internal/report"
)

// Classes lists the makes treated as luxury or exotic. Everything else is common.
type Classes struct {
	Luxury []string `yaml:"luxury"`
	Exotic []string `yaml:"exotic"`
}

// Classify returns the price class for a make, case-insensitively.
func (c Classes) Classify(make string) report.PriceClass {
	m := normalizeMake(make)
	if m == "" {
		return report.ClassCommon
	}
	for _, e := range c.Exotic {
		if normalizeMake(e) == m {
			return report.ClassExotic
		}
	}
	for _, l := range c.Luxury {
		if normalizeMake(l) == m {
			return report.ClassLuxury
		}
	}
	return report.ClassCommon
}

func normalizeMake(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", " ", "_", " ").Replace(s)
}

// Age returns the vehicle age in whole years as of now. A model year in the
// future (next year's models go on sale early) counts as zero.
func Age(year int, now time.Time) int {
	if year <= 0 {
		return 0
	}
	age := now.Year() - year
	if age < 0 {
		return 0
	}
	return age
}

// ExpectedMileage is the typical odometer reading for a vehicle of the given
// age. New vehicles are treated as one year old.
func ExpectedMileage(age, annualMiles int) int {
	if age < 1 {
		age = 1
	}
	return age * annualMiles
}
