package xlsx

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/narora21/chrono-patient-uploader/internal/core/domain"
)

// Writer collects per-file results during a run and saves an Excel workbook
// when the run completes. It implements ports.BatchObserver.
type Writer struct {
	path   string
	logger *slog.Logger

	mu      sync.Mutex
	results []domain.FileResult
}

func NewWriter(path string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{path: path, logger: logger}
}

func (w *Writer) FileProcessed(result domain.FileResult) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.results = append(w.results, result)
}

func (w *Writer) RunCompleted(report *domain.BatchReport, duration time.Duration) {
	w.mu.Lock()
	results := make([]domain.FileResult, len(w.results))
	copy(results, w.results)
	w.mu.Unlock()

	if err := WriteReport(w.path, report, results, duration); err != nil {
		w.logger.Error("xlsx_report_failed", "path", w.path, "error", err)
		return
	}
	w.logger.Info("xlsx_report_written", "path", w.path)
}

// WriteReport saves a two-sheet workbook: a run summary and one row per
// processed file, ordered by filename.
func WriteReport(path string, report *domain.BatchReport, results []domain.FileResult, duration time.Duration) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}

	summary := [][]any{
		{"Run ID", report.RunID},
		{"Dry run", report.DryRun},
		{"Duration", duration.Round(time.Second).String()},
		{"Uploaded", report.Succeeded},
		{"Failed", len(report.Failed)},
		{"Skipped", len(report.Skipped)},
		{"Duplicates", len(report.Duplicates)},
		{"Rate-limited", len(report.RateLimited)},
		{"Total", report.Total},
		{"App limit hit", report.AppLimit},
	}
	for i, row := range summary {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow("Summary", cell, &row); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}

	if _, err := f.NewSheet("Files"); err != nil {
		return fmt.Errorf("create files sheet: %w", err)
	}

	sorted := make([]domain.FileResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Filename < sorted[j].Filename
	})

	header := []any{"Filename", "Status", "Detail", "Document ID"}
	if err := f.SetSheetRow("Files", "A1", &header); err != nil {
		return fmt.Errorf("write files header: %w", err)
	}
	for i, r := range sorted {
		var documentID any
		if r.DocumentID != 0 {
			documentID = r.DocumentID
		}
		row := []any{r.Filename, string(r.Status), r.Detail, documentID}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow("Files", cell, &row); err != nil {
			return fmt.Errorf("write files row: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report %s: %w", path, err)
	}
	return nil
}
