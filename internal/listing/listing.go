// Package listing handles the analysis request: reading it from a file,
// normalizing it and rejecting malformed input.
package listing

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/carverdict/internal/report"
	"github.com/dshills/carverdict/internal/vehicle"
)

// ErrInvalidRequest marks a request that cannot be analyzed.
var ErrInvalidRequest = errors.New("invalid request")

// Earliest model year accepted.
const minYear = 1980

// Request is one listing to analyze. Only AskingPrice is required.
type Request struct {
	VIN         string      `json:"vin,omitempty" yaml:"vin,omitempty"`
	Year        int         `json:"year,omitempty" yaml:"year,omitempty"`
	Make        string      `json:"make,omitempty" yaml:"make,omitempty"`
	Model       string      `json:"model,omitempty" yaml:"model,omitempty"`
	Trim        string      `json:"trim,omitempty" yaml:"trim,omitempty"`
	Mileage     int         `json:"mileage,omitempty" yaml:"mileage,omitempty"`
	AskingPrice float64     `json:"askingPrice" yaml:"askingPrice"`
	Location    string      `json:"location,omitempty" yaml:"location,omitempty"`
	Tier        report.Tier `json:"tier" yaml:"tier"`
	DaysListed  int         `json:"daysListed,omitempty" yaml:"daysListed,omitempty"`
}

// File is a request loaded from disk.
type File struct {
	FilePath string
	Request  Request
	Hash     string
}

// Load reads a YAML or JSON request file and computes its SHA-256 hash.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("listing.Load: %w", err)
	}
	var r Request
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("listing.Load: %s: %w", path, err)
	}
	h := sha256.Sum256(data)
	return &File{
		FilePath: path,
		Request:  r,
		Hash:     fmt.Sprintf("sha256:%x", h),
	}, nil
}

// Hash returns a stable hash of a request built without a file.
func Hash(r Request) string {
	data, _ := json.Marshal(r)
	return fmt.Sprintf("sha256:%x", sha256.Sum256(data))
}

// Normalize trims fields, uppercases the VIN and defaults the tier to free.
func (r Request) Normalize() Request {
	r.VIN = vehicle.NormalizeVIN(r.VIN)
	r.Make = strings.TrimSpace(r.Make)
	r.Model = strings.TrimSpace(r.Model)
	r.Trim = strings.TrimSpace(r.Trim)
	r.Location = strings.TrimSpace(r.Location)
	r.Tier = report.Tier(strings.ToLower(strings.TrimSpace(string(r.Tier))))
	if r.Tier == "" {
		r.Tier = report.TierFree
	}
	return r
}

// Validate reports the first problem with a normalized request. A malformed
// VIN wraps both ErrInvalidRequest and vehicle.ErrMalformedVIN.
func (r Request) Validate() error {
	if r.AskingPrice <= 0 {
		return fmt.Errorf("%w: askingPrice must be greater than zero", ErrInvalidRequest)
	}
	if !r.Tier.Valid() {
		return fmt.Errorf("%w: tier %q must be free or paid", ErrInvalidRequest, r.Tier)
	}
	if r.VIN != "" {
		if err := vehicle.ValidateVIN(r.VIN); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
	}
	if r.Year != 0 && r.Year < minYear {
		return fmt.Errorf("%w: year %d is before %d", ErrInvalidRequest, r.Year, minYear)
	}
	if r.Mileage < 0 {
		return fmt.Errorf("%w: mileage cannot be negative", ErrInvalidRequest)
	}
	if r.DaysListed < 0 {
		return fmt.Errorf("%w: daysListed cannot be negative", ErrInvalidRequest)
	}
	return nil
}
