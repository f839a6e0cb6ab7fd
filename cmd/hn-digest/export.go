package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newExportCmd(load func() (*app, error)) *cobra.Command {
	var flagDate, flagHour string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the current Hacker News top stories to markdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateDateHour(flagDate, flagHour); err != nil {
				return err
			}
			a, err := load()
			if err != nil {
				return err
			}
			path, err := a.exporter.Export(cmd.Context(), flagDate, flagHour)
			if err != nil {
				return err
			}
			if path == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no stories exported")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&flagDate, "date", "", "date directory, YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&flagHour, "hour", "", "two-digit hour file name (default: current hour)")
	return cmd
}

func validateDateHour(date, hour string) error {
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", date)
		}
	}
	if hour != "" {
		if _, err := time.Parse("15", hour); err != nil || len(hour) != 2 {
			return fmt.Errorf("invalid --hour %q: want 00-23", hour)
		}
	}
	return nil
}
