// Package vehicle holds VIN handling and the age, mileage and price-class
// heuristics used across the analysis.
package vehicle

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedVIN is returned for a VIN with the wrong length or characters.
// It is a user input error and must never be absorbed into a degraded result.
var ErrMalformedVIN = errors.New("malformed VIN")

// NormalizeVIN upper-cases and trims a VIN.
func NormalizeVIN(vin string) string {
	return strings.ToUpper(strings.TrimSpace(vin))
}

// ValidateVIN checks length and character set. The letters I, O and Q are
// never used in a VIN.
func ValidateVIN(vin string) error {
	vin = NormalizeVIN(vin)
	if len(vin) != 17 {
		return fmt.Errorf("%w: want 17 characters, got %d", ErrMalformedVIN, len(vin))
	}
	for i, r := range vin {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'A' && r <= 'Z':
			if r == 'I' || r == 'O' || r == 'Q' {
				return fmt.Errorf("%w: invalid character %q at position %d", ErrMalformedVIN, r, i+1)
			}
		default:
			return fmt.Errorf("%w: invalid character %q at position %d", ErrMalformedVIN, r, i+1)
		}
	}
	return nil
}

// yearCodes is the position-10 model year alphabet, starting at 1980 (A).
const yearCodes = "ABCDEFGHJKLMNPRSTVWXY123456789"

// ModelYear decodes the model year from position 10 of a valid VIN.
// The code repeats every 30 years; position 7 disambiguates for passenger
// vehicles (numeric for 1980-2009, alphabetic for 2010-2039).
// It returns 0 when the year cannot be decoded.
func ModelYear(vin string) int {
	vin = NormalizeVIN(vin)
	if ValidateVIN(vin) != nil {
		return 0
	}
	idx := strings.IndexByte(yearCodes, vin[9])
	if idx < 0 {
		return 0
	}
	year := 1980 + idx
	if c := vin[6]; c >= 'A' && c <= 'Z' {
		year += 30
	}
	return year
}
