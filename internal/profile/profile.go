// Package profile handles loading and describing built-in threshold profiles.
package profile

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/carverdict/internal/pricing"
	"github.com/dshills/carverdict/internal/redflag"
	"github.com/dshills/carverdict/internal/vehicle"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// DefaultName is the profile used when none is requested.
const DefaultName = "standard"

// Profile is a named set of analysis thresholds.
type Profile struct {
	Name        string                     `yaml:"name"`
	Version     int                        `yaml:"version"`
	Description string                     `yaml:"description"`
	Pricing     pricing.Thresholds         `yaml:"pricing"`
	Duration    pricing.DurationThresholds `yaml:"listing_duration"`
	Classes     vehicle.Classes            `yaml:"classes"`
	Rules       redflag.Rules              `yaml:"rules"`
	Comparables int                        `yaml:"comparables"`
}

// Default returns the built-in thresholds with no overrides applied.
func Default() Profile {
	return Profile{
		Name:        DefaultName,
		Version:     1,
		Pricing:     pricing.DefaultThresholds(),
		Duration:    pricing.DefaultDurationThresholds(),
		Rules:       redflag.DefaultRules(),
		Comparables: 5,
	}
}

// PricingConfig returns the pricing analyzer configuration.
func (p *Profile) PricingConfig() pricing.Config {
	return pricing.Config{Price: p.Pricing, Duration: p.Duration}
}

// LoadBuiltin loads a built-in profile by name. Fields the file omits keep
// their Default values.
func LoadBuiltin(name string) (*Profile, error) {
	if name == "" {
		name = DefaultName
	}
	filename := name + ".yaml"
	data, err := builtinFS.ReadFile("builtin/" + filename)
	if err != nil {
		return nil, fmt.Errorf("profile.LoadBuiltin: unknown profile %q: %w", name, err)
	}
	p := Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("profile.LoadBuiltin: parse %q: %w", name, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("profile.LoadBuiltin: %q: %w", name, err)
	}
	return &p, nil
}

// Validate rejects thresholds that would make the analyzers misbehave.
func (p *Profile) Validate() error {
	var errs []string
	if p.Pricing.BelowMarketPercent >= 0 {
		errs = append(errs, "pricing.below_market_percent must be negative")
	}
	if p.Pricing.HighConfidencePercent > p.Pricing.BelowMarketPercent {
		errs = append(errs, "pricing.high_confidence_percent must not exceed below_market_percent")
	}
	if p.Duration.Common <= 0 || p.Duration.Luxury <= 0 || p.Duration.Exotic <= 0 {
		errs = append(errs, "listing_duration thresholds must be positive")
	}
	if p.Rules.AnnualMiles <= 0 {
		errs = append(errs, "rules.annual_miles must be positive")
	}
	if p.Rules.LowMileageMultiplier >= p.Rules.HighMileageMultiplier {
		errs = append(errs, "rules.low_mileage_multiplier must be below high_mileage_multiplier")
	}
	if p.Rules.SevereMileageMultiplier < p.Rules.HighMileageMultiplier {
		errs = append(errs, "rules.severe_mileage_multiplier must not be below high_mileage_multiplier")
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid profile: %s", strings.Join(errs, "; "))
	}
	return nil
}

// List returns the names of all available built-in profiles.
func List() ([]string, error) {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n := e.Name()
		if strings.HasSuffix(n, ".yaml") {
			names = append(names, strings.TrimSuffix(n, ".yaml"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// Describe renders the profile thresholds as Markdown.
func Describe(p *Profile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Profile: %s\n\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", strings.TrimSpace(p.Description))
	}

	b.WriteString("### Pricing\n\n")
	fmt.Fprintf(&b, "- unusually low below %.0f%%, high confidence at %.0f%%\n", p.Pricing.BelowMarketPercent, p.Pricing.HighConfidencePercent)
	fmt.Fprintf(&b, "- listing duration: common %d, luxury %d, exotic %d days\n\n", p.Duration.Common, p.Duration.Luxury, p.Duration.Exotic)

	b.WriteString("### Vehicle\n\n")
	fmt.Fprintf(&b, "- expected %d miles per year; high above %.1fx, low below %.1fx after %d years\n",
		p.Rules.AnnualMiles, p.Rules.HighMileageMultiplier, p.Rules.LowMileageMultiplier, p.Rules.LowMileageMinAge)
	fmt.Fprintf(&b, "- high age above %d years\n", p.Rules.HighAge)
	if len(p.Classes.Luxury) > 0 {
		fmt.Fprintf(&b, "- luxury makes: %s\n", strings.Join(p.Classes.Luxury, ", "))
	}
	if len(p.Classes.Exotic) > 0 {
		fmt.Fprintf(&b, "- exotic makes: %s\n", strings.Join(p.Classes.Exotic, ", "))
	}
	b.WriteString("\n")

	b.WriteString("### Seller\n\n")
	fmt.Fprintf(&b, "- relisted %d+ times, stale at %d days, %d+ price changes or %.0f%% swing, dealer at %d+ active listings\n",
		p.Rules.RelistCount, p.Rules.StaleDays, p.Rules.PriceChanges, p.Rules.VolatilityPercent, p.Rules.DealerActiveListings)

	return b.String()
}
