package signals

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ResolveOptions selects where collaborator data comes from.
type ResolveOptions struct {
	BaseURL        string
	APIKey         string
	FixturesPath   string
	RequestsPerSec int
	MaxRetryTime   time.Duration
	Logger         zerolog.Logger
}

// Mode names the kind of sources ResolveSources picked.
type Mode string

const (
	ModeHTTP     Mode = "http"
	ModeFixtures Mode = "fixtures"
	ModeOffline  Mode = "offline"
)

// ResolveSources picks the live API when a base URL is set, then a fixture
// file, and otherwise returns an empty set so every collaborator is skipped.
func ResolveSources(opts ResolveOptions) (Sources, Mode, error) {
	if opts.BaseURL != "" {
		client := NewClient(ClientOptions{
			BaseURL:        opts.BaseURL,
			APIKey:         opts.APIKey,
			RequestsPerSec: opts.RequestsPerSec,
			MaxRetryTime:   opts.MaxRetryTime,
			Logger:         opts.Logger,
		})
		return NewHTTPSources(client).Sources(), ModeHTTP, nil
	}

	if opts.FixturesPath != "" {
		fs, err := LoadFixtures(opts.FixturesPath)
		if err != nil {
			return Sources{}, "", fmt.Errorf("signals.ResolveSources: %w", err)
		}
		return fs.Sources(), ModeFixtures, nil
	}

	return Sources{}, ModeOffline, nil
}
