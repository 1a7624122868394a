package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/carverdict/internal/profile"
)

func newProfilesCmd() *cobra.Command {
	var describe string
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List the built-in threshold profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProfiles(cmd.OutOrStdout(), describe)
		},
	}
	cmd.Flags().StringVar(&describe, "describe", "", "Print the thresholds of one profile")
	return cmd
}

func runProfiles(w io.Writer, describe string) error {
	if describe != "" {
		p, err := profile.LoadBuiltin(describe)
		if err != nil {
			return exitError(3, "%v", err)
		}
		fmt.Fprint(w, profile.Describe(p))
		return nil
	}
	names, err := profile.List()
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Fprintln(w, n)
	}
	return nil
}
