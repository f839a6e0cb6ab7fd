package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ryosukesatoh/hn-digest/internal/report"
)

func newReportCmd(load func() (*app, error)) *cobra.Command {
	var (
		flagDays int
		flagType string
	)

	cmd := &cobra.Command{
		Use:   "report <file>",
		Short: "Generate a report from an exported markdown file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagDays < 0 {
				return fmt.Errorf("invalid --days %d: must not be negative", flagDays)
			}
			a, err := load()
			if err != nil {
				return err
			}
			if a.generator == nil {
				return errors.New("report: no summarizer configured (set summarizer.type)")
			}

			r, err := a.generator.Generate(cmd.Context(), args[0], reportRequest(flagDays, flagType))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), r.Path)
			return nil
		},
	}
	cmd.Flags().IntVar(&flagDays, "days", 0, "generate in date range mode covering N days")
	cmd.Flags().StringVar(&flagType, "type", "", "report type whose prompt to use")
	return cmd
}

// reportRequest maps the report flags to a generator request: any positive
// --days selects date range mode.
func reportRequest(days int, reportType string) report.Request {
	req := report.Request{Mode: report.ModeDaily, ReportType: reportType}
	if days > 0 {
		req.Mode = report.ModeDateRange
		req.Days = days
	}
	return req
}
