package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"icslint/internal/config"
	"icslint/internal/ics"
	appLog "icslint/internal/log"
	"icslint/internal/model"
	"icslint/internal/runner"
	"icslint/internal/web"
)

const defaultConfigPath = "/etc/icslint/config.yaml"

// errFindings signals that validation produced gated findings: the run itself
// succeeded but the exit code must be non-zero.
var errFindings = errors.New("validation findings")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errFindings) {
			appLog.Error("icslint failed", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "icslint",
		Short:         "Validate iCalendar (ICS) files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", configPathDefault(), "Path to config file")

	root.AddCommand(newValidateCmd(&configPath))
	root.AddCommand(newInspectCmd(&configPath))
	root.AddCommand(newServeCmd(&configPath))

	return root
}

// configPathDefault resolves the config path from the ICSLINT_CONFIG
// environment variable, falling back to the system default.
func configPathDefault() string {
	if p := os.Getenv("ICSLINT_CONFIG"); p != "" {
		return p
	}
	return defaultConfigPath
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))
	return cfg, nil
}

func newValidateCmd(configPath *string) *cobra.Command {
	var (
		reportPath     string
		failOnErrors   bool
		failOnWarnings bool
	)

	cmd := &cobra.Command{
		Use:   "validate [pattern ...]",
		Short: "Validate ICS files matching glob patterns",
		Long: `Validates every ICS file matching the given glob patterns (or the
patterns from the config file when none are given) and prints the findings.
The exit code is non-zero when findings trip the gating policy.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			patterns := args
			if len(patterns) == 0 {
				patterns = cfg.Patterns
			}
			if reportPath == "" {
				reportPath = cfg.ReportPath
			}
			if !cmd.Flags().Changed("fail-on-errors") {
				failOnErrors = cfg.FailOnErrors
			}
			if !cmd.Flags().Changed("fail-on-warnings") {
				failOnWarnings = cfg.FailOnWarnings
			}

			report, err := runner.Run(runner.Options{
				Patterns:   patterns,
				ReportPath: reportPath,
			})
			if err != nil {
				return err
			}

			printReport(cmd, report)

			if runner.Gated(report, failOnErrors, failOnWarnings) {
				return errFindings
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&reportPath, "report", "", "Write the aggregated JSON report to this path")
	cmd.Flags().BoolVar(&failOnErrors, "fail-on-errors", true, "Exit non-zero when errors are found")
	cmd.Flags().BoolVar(&failOnWarnings, "fail-on-warnings", false, "Exit non-zero when warnings are found")

	return cmd
}

// printReport writes per-file findings and a run summary to stdout, files in
// sorted order so output is stable.
func printReport(cmd *cobra.Command, report *model.Report) {
	paths := make([]string, 0, len(report.Files))
	for p := range report.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	out := cmd.OutOrStdout()
	for _, path := range paths {
		fr := report.Files[path]
		if len(fr.Errors) == 0 && len(fr.Warnings) == 0 {
			fmt.Fprintf(out, "%s: OK\n", path)
			continue
		}
		for _, msg := range fr.Errors {
			fmt.Fprintf(out, "%s: ERROR: %s\n", path, msg)
		}
		for _, msg := range fr.Warnings {
			fmt.Fprintf(out, "%s: WARNING: %s\n", path, msg)
		}
	}
	fmt.Fprintf(out, "%d file(s), %d error(s), %d warning(s)\n",
		len(report.Files), report.TotalErrors(), report.TotalWarnings())
}

func newInspectCmd(configPath *string) *cobra.Command {
	var horizonDays int

	cmd := &cobra.Command{
		Use:   "inspect <path-or-url ...>",
		Short: "List upcoming event occurrences from ICS sources",
		Long: `Parses the given ICS files or http(s) feeds, expands recurrences over
the configured horizon, and prints the resulting occurrences in the
configured timezone. This is a reporting aid; it applies no validation rules.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if horizonDays <= 0 {
				horizonDays = cfg.HorizonDays
			}

			loc, err := time.LoadLocation(cfg.Timezone)
			if err != nil {
				return fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
			}

			fetcher := ics.NewFetcher()
			events := make([]ics.ParsedEvent, 0)
			for _, source := range args {
				body, err := fetcher.ReadSource(cmd.Context(), source)
				if err != nil {
					return fmt.Errorf("read %s: %w", source, err)
				}
				cal, err := ics.Parse(body)
				if err != nil {
					return fmt.Errorf("parse %s: %w", source, err)
				}
				events = append(events, ics.Events(source, cal)...)
			}

			now := time.Now().In(loc)
			occurrences, err := ics.ExpandOccurrences(events, ics.ExpandConfig{
				DisplayLocation: loc,
				RangeStart:      now,
				RangeEnd:        now.AddDate(0, 0, horizonDays),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, occ := range occurrences {
				when := occ.Start.Format("2006-01-02 15:04")
				if occ.AllDay {
					when = occ.Start.Format("2006-01-02") + " (all day)"
				}
				fmt.Fprintf(out, "%s  %s  [%s]\n", when, occ.Summary, occ.Source)
			}
			fmt.Fprintf(out, "%d occurrence(s) in the next %d day(s)\n", len(occurrences), horizonDays)
			return nil
		},
	}

	cmd.Flags().IntVar(&horizonDays, "horizon", 0, "Days ahead to expand (overrides config)")

	return cmd
}

func newServeCmd(configPath *string) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the validation server",
		Long: `Validates the configured patterns, re-validates on the configured cron
schedule, and serves the latest report over HTTP.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Listen = listen
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return web.Start(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config if set)")

	return cmd
}
