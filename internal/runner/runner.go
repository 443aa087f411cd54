// Package runner orchestrates a validation run: enumerating input files,
// validating each one independently, and aggregating the per-file results
// into a single report.
package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	appLog "icslint/internal/log"
	"icslint/internal/model"
	"icslint/internal/validate"
)

// Options configures a single validation run.
type Options struct {
	// Patterns are glob patterns (or literal paths) selecting inputs.
	Patterns []string

	// ReportPath, if set, is where the aggregated JSON report is written.
	ReportPath string
}

// Run validates every file matching the patterns and returns the aggregated
// report. Per-file failures (unreadable or unparseable inputs) become
// diagnostics for that file and never abort the run; only run-level faults
// (a malformed glob pattern, a report write failure) are returned as errors.
// Zero matching files is an advisory, not an error.
func Run(opts Options) (*model.Report, error) {
	paths, err := Enumerate(opts.Patterns)
	if err != nil {
		return nil, err
	}

	report := model.NewReport()

	if len(paths) == 0 {
		appLog.Warn("no files matched", "patterns", fmt.Sprint(opts.Patterns))
		return report, writeReport(opts.ReportPath, report)
	}

	for _, path := range paths {
		result := validate.File(path)
		report.Files[path] = result.FileResult()
		appLog.Info("validated file",
			"path", path,
			"errors", len(result.Errors),
			"warnings", len(result.Warnings),
		)
	}

	return report, writeReport(opts.ReportPath, report)
}

// Enumerate expands glob patterns into a sorted, deduplicated list of file
// paths. A malformed pattern is fatal to the run.
func Enumerate(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	paths := make([]string, 0)

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad glob pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// Gated reports whether the run should fail under the gating policy.
func Gated(report *model.Report, failOnErrors, failOnWarnings bool) bool {
	if failOnErrors && report.TotalErrors() > 0 {
		return true
	}
	if failOnWarnings && report.TotalWarnings() > 0 {
		return true
	}
	return false
}

func writeReport(path string, report *model.Report) error {
	if path == "" {
		return nil
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	appLog.Info("report written", "path", path)
	return nil
}
