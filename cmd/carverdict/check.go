package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dshills/carverdict/internal/analyze"
	"github.com/dshills/carverdict/internal/config"
	"github.com/dshills/carverdict/internal/listing"
	"github.com/dshills/carverdict/internal/logging"
	"github.com/dshills/carverdict/internal/profile"
	"github.com/dshills/carverdict/internal/render"
	"github.com/dshills/carverdict/internal/report"
	"github.com/dshills/carverdict/internal/schema"
	"github.com/dshills/carverdict/internal/signals"
)

type checkFlags struct {
	format      string
	out         string
	profileName string
	failOn      string
	fixtures    string
	verbose     bool

	req listing.Request

	// sources replaces the configured collaborators when set.
	sources *signals.Sources
}

func newCheckCmd(cfg *config.Config) *cobra.Command {
	f := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check [listing-file]",
		Short: "Analyze a listing and print the verdict",
		Long: "Analyze a listing given as a YAML or JSON file, as flags, or both.\n" +
			"Flags override values from the file.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runCheck(cmd.Context(), cfg, path, cmd.Flags().Changed, f, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.format, "format", "json", "Output format: json or md")
	flags.StringVar(&f.out, "out", "", "Output file path (default: stdout)")
	flags.StringVar(&f.profileName, "profile", cfg.Profile, "Threshold profile name")
	flags.StringVar(&f.failOn, "fail-on", "", "Exit 2 if the verdict is at least this level: caution or disaster")
	flags.StringVar(&f.fixtures, "fixtures", cfg.Fixtures, "Read collaborator data from a YAML fixture file")
	flags.BoolVar(&f.verbose, "verbose", false, "Log processing steps to stderr")

	flags.StringVar(&f.req.VIN, "vin", "", "Vehicle identification number")
	flags.IntVar(&f.req.Year, "year", 0, "Model year")
	flags.StringVar(&f.req.Make, "make", "", "Make")
	flags.StringVar(&f.req.Model, "model", "", "Model")
	flags.StringVar(&f.req.Trim, "trim", "", "Trim")
	flags.IntVar(&f.req.Mileage, "mileage", 0, "Listed mileage")
	flags.Float64Var(&f.req.AskingPrice, "price", 0, "Asking price")
	flags.StringVar(&f.req.Location, "location", "", "Listing location")
	flags.StringVar((*string)(&f.req.Tier), "tier", "free", "Access tier: free or paid")
	flags.IntVar(&f.req.DaysListed, "days-listed", 0, "Days the listing has been live")

	return cmd
}

// mergeRequest overlays explicitly set flags onto a request read from file.
func mergeRequest(base, flagReq listing.Request, changed func(string) bool) listing.Request {
	if changed("vin") {
		base.VIN = flagReq.VIN
	}
	if changed("year") {
		base.Year = flagReq.Year
	}
	if changed("make") {
		base.Make = flagReq.Make
	}
	if changed("model") {
		base.Model = flagReq.Model
	}
	if changed("trim") {
		base.Trim = flagReq.Trim
	}
	if changed("mileage") {
		base.Mileage = flagReq.Mileage
	}
	if changed("price") {
		base.AskingPrice = flagReq.AskingPrice
	}
	if changed("location") {
		base.Location = flagReq.Location
	}
	if changed("tier") || base.Tier == "" {
		base.Tier = flagReq.Tier
	}
	if changed("days-listed") {
		base.DaysListed = flagReq.DaysListed
	}
	return base
}

func runCheck(ctx context.Context, cfg *config.Config, path string, changed func(string) bool, f *checkFlags, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.New("check")
	if !f.verbose {
		logger = logger.Level(zerolog.WarnLevel)
	}

	// Validate flags before doing any work
	if f.failOn != "" {
		if _, err := verdictMeetsThreshold(report.VerdictDeal, f.failOn); err != nil {
			return exitError(3, "%v", err)
		}
	}
	if f.format != "json" && f.format != "md" {
		return exitError(3, "unknown format: %s", f.format)
	}

	// 1. Build the request
	req := f.req
	if path != "" {
		logger.Debug().Str("path", path).Msg("loading listing")
		lf, err := listing.Load(path)
		if err != nil {
			return exitError(3, "failed to load listing: %v", err)
		}
		req = mergeRequest(lf.Request, f.req, changed)
	}

	// 2. Load profile
	logger.Debug().Str("profile", f.profileName).Msg("loading profile")
	prof, err := profile.LoadBuiltin(f.profileName)
	if err != nil {
		return exitError(3, "failed to load profile: %v", err)
	}

	// 3. Resolve collaborators
	var src signals.Sources
	if f.sources != nil {
		src = *f.sources
	} else {
		opts := cfg.ResolveOptions()
		opts.FixturesPath = f.fixtures
		opts.Logger = logging.New("signals")
		var mode signals.Mode
		src, mode, err = signals.ResolveSources(opts)
		if err != nil {
			return exitError(4, "collaborator setup failed: %v", err)
		}
		logger.Debug().Str("mode", string(mode)).Msg("collaborators resolved")
	}

	// 4. Analyze
	a := analyze.New(src, prof, cfg.Timeouts, logger)
	a.Version = version
	res, err := a.Analyze(ctx, req)
	if err != nil {
		if errors.Is(err, listing.ErrInvalidRequest) || errors.Is(err, signals.ErrInvalidVIN) {
			return exitError(3, "%v", err)
		}
		return fmt.Errorf("analysis failed: %w", err)
	}

	// 5. Validate
	if verrs := schema.Validate(res); len(verrs) > 0 {
		fmt.Fprintln(os.Stderr, "Result validation errors:")
		for _, e := range verrs {
			fmt.Fprintf(os.Stderr, "  %s\n", e)
		}
		return exitError(5, "result failed validation")
	}
	logger.Debug().Msg("validation passed")

	// 6. Output
	var output string
	switch f.format {
	case "json":
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		output = string(data) + "\n"
	case "md":
		output = render.Markdown(res)
	}

	if f.out != "" {
		logger.Debug().Str("path", f.out).Msg("writing output")
		if err := os.WriteFile(f.out, []byte(output), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else {
		fmt.Fprint(stdout, output)
	}

	// 7. Exit code based on --fail-on
	if f.failOn != "" {
		meets, _ := verdictMeetsThreshold(res.Verdict, f.failOn)
		if meets {
			return exitError(2, "verdict %s meets fail threshold %s", res.Verdict, f.failOn)
		}
	}

	return nil
}

func verdictMeetsThreshold(verdict report.Verdict, failOn string) (bool, error) {
	threshold := report.Verdict(strings.ToLower(strings.TrimSpace(failOn)))
	if !threshold.Valid() {
		return false, fmt.Errorf("unrecognized --fail-on value %q: use deal, caution or disaster", failOn)
	}
	vl := verdict.Ordinal()
	if vl < 0 {
		return false, nil
	}
	return vl >= threshold.Ordinal(), nil
}
