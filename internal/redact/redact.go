// Package redact masks seller contact details and full VINs before they reach
// logs or listing text shown to buyers.
package redact

import (
	"regexp"
	"strings"
)

var patterns []*regexp.Regexp

func init() {
	raw := []string{
		// Email addresses
		`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`,
		// North American phone numbers: 555-123-4567, (555) 123 4567, +1 555.123.4567
		`(?:\+?1[\s.\-]?)?\(?\b\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4}\b`,
		// Messaging handles commonly used to move buyers off-platform
		`(?i)\b(?:whatsapp|telegram|text me at|call me at)\s*[:=]?\s*\S+`,
	}
	for _, r := range raw {
		patterns = append(patterns, regexp.MustCompile(r))
	}
}

// Redact replaces contact-detail patterns in text with [REDACTED].
func Redact(text string) string {
	for _, p := range patterns {
		text = p.ReplaceAllString(text, "[REDACTED]")
	}
	return text
}

// VIN masks all but the last six characters (the serial portion).
// Short or empty input is fully masked.
func VIN(vin string) string {
	vin = strings.TrimSpace(vin)
	if vin == "" {
		return ""
	}
	if len(vin) <= 6 {
		return strings.Repeat("*", len(vin))
	}
	return strings.Repeat("*", len(vin)-6) + vin[len(vin)-6:]
}
