package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/narora21/chrono-patient-uploader/internal/core/domain"
)

// RenderReport writes the end-of-run report: one section per non-empty
// failure category, rate limit guidance when it applies, then the summary
// block.
func RenderReport(w io.Writer, report *domain.BatchReport) {
	renderSection(w, "Failed Files", report.Failed)
	renderSection(w, "Skipped Files", report.Skipped)
	renderSection(w, "Duplicate Files", report.Duplicates)
	renderSection(w, "Rate-Limited Files", report.RateLimited)

	if len(report.RateLimited) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "*** Some files were not uploaded because the DrChrono API rate limit was reached. ***")
		fmt.Fprintln(w, "*** Please wait until the top of the hour and try again for the remaining files. ***")
	}
	if report.AppLimit {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "*** You have hit the DrChrono application rate limit (500 requests/hour). ***")
		fmt.Fprintln(w, "*** Please wait until the top of the hour before running again. ***")
	}

	rule := strings.Repeat("=", 50)
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Uploaded:      %d\n", report.Succeeded)
	fmt.Fprintf(w, "Failed:        %d\n", len(report.Failed))
	fmt.Fprintf(w, "Skipped:       %d\n", len(report.Skipped))
	fmt.Fprintf(w, "Duplicates:    %d\n", len(report.Duplicates))
	fmt.Fprintf(w, "Rate-limited:  %d\n", len(report.RateLimited))
	fmt.Fprintf(w, "Total:         %d\n", report.Total)
	fmt.Fprintln(w, rule)

	if report.DryRun {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "[DRY RUN] No documents were uploaded or moved. Disable dry run to upload.")
	}
}

func renderSection(w io.Writer, title string, results []domain.FileResult) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintf(w, "\n--- %s (%d) ---\n", title, len(results))
	for _, r := range results {
		line := fmt.Sprintf("  %s: %s", r.Filename, r.Status)
		if r.Detail != "" {
			line += fmt.Sprintf(" (%s)", r.Detail)
		}
		fmt.Fprintln(w, line)
	}
}
