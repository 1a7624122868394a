package report

import "sort"

// SortFlags sorts flags by severity (critical > high > medium > low).
// Flags of equal severity keep the order in which they were appended.
func SortFlags(flags []RedFlag) {
	sort.SliceStable(flags, func(i, j int) bool {
		return flags[i].Severity.Rank() < flags[j].Severity.Rank()
	})
}

// HasFlag reports whether a flag with the given id is present.
func HasFlag(flags []RedFlag, id FlagID) bool {
	for _, f := range flags {
		if f.ID == id {
			return true
		}
	}
	return false
}

// CountBySeverity returns critical, high, medium and low counts.
func CountBySeverity(flags []RedFlag) (critical, high, medium, low int) {
	for _, f := range flags {
		switch f.Severity {
		case SeverityCritical:
			critical++
		case SeverityHigh:
			high++
		case SeverityMedium:
			medium++
		case SeverityLow:
			low++
		}
	}
	return
}
