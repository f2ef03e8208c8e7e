package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/narora21/chrono-patient-uploader/internal/core/domain"
	"github.com/narora21/chrono-patient-uploader/internal/core/ports"
)

// Options tune one batch run. DestDir empty leaves uploaded files in place.
type Options struct {
	Workers        int
	DryRun         bool
	DestDir        string
	InterFileDelay time.Duration
	StartJitterMax time.Duration
}

// BatchUploadUseCase walks a directory of scanned documents and pushes each
// parseable file to the matching patient chart. It implements
// ports.BatchRunner.
type BatchUploadUseCase struct {
	parser    ports.FilenameParser
	patients  ports.PatientDirectory
	documents ports.DocumentLister
	uploader  ports.DocumentUploader
	files     ports.FileStore
	observer  ports.BatchObserver
	logger    *slog.Logger
	opts      Options
}

func NewBatchUploadUseCase(
	parser ports.FilenameParser,
	patients ports.PatientDirectory,
	documents ports.DocumentLister,
	uploader ports.DocumentUploader,
	files ports.FileStore,
	observer ports.BatchObserver,
	logger *slog.Logger,
	opts Options,
) *BatchUploadUseCase {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if observer == nil {
		observer = ports.NopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchUploadUseCase{
		parser:    parser,
		patients:  patients,
		documents: documents,
		uploader:  uploader,
		files:     files,
		observer:  observer,
		logger:    logger,
		opts:      opts,
	}
}

// Run processes every file in dir and returns the aggregated report. Files
// are handed to workers round-robin in sorted order, so a given worker count
// always produces the same assignment.
func (uc *BatchUploadUseCase) Run(ctx context.Context, dir string) (*domain.BatchReport, error) {
	start := time.Now()
	runID := uuid.NewString()

	names, err := uc.files.ListFiles(dir)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	if uc.opts.DestDir != "" && !uc.opts.DryRun {
		if err := uc.files.EnsureDir(uc.opts.DestDir); err != nil {
			return nil, err
		}
	}

	uc.logger.Info("run_started",
		"run_id", runID,
		"dir", dir,
		"files", len(names),
		"workers", uc.opts.Workers,
		"dry_run", uc.opts.DryRun,
	)

	caches := newRunCache()
	chunks := partition(len(names), uc.opts.Workers)

	results := make([]*domain.FileResult, len(names))

	worker := func(id int) {
		if uc.opts.StartJitterMax > 0 {
			sleepWithContext(ctx, rand.N(uc.opts.StartJitterMax+1))
		}
		// Each worker paces only its own chunk. The limiter starts with
		// one token, so the worker's first file goes immediately.
		var limiter *rate.Limiter
		if !uc.opts.DryRun && uc.opts.InterFileDelay > 0 {
			limiter = rate.NewLimiter(rate.Every(uc.opts.InterFileDelay), 1)
		}
		for _, i := range chunks[id] {
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return
				}
			} else if ctx.Err() != nil {
				return
			}
			result := uc.processFile(ctx, dir, names[i], caches)
			results[i] = &result
			uc.observer.FileProcessed(result)
		}
	}

	if uc.opts.Workers == 1 {
		worker(0)
	} else {
		var wg sync.WaitGroup
		for w := range chunks {
			if len(chunks[w]) == 0 {
				continue
			}
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				worker(id)
			}(w)
		}
		wg.Wait()
	}

	collected := make([]domain.FileResult, 0, len(names))
	for _, r := range results {
		if r != nil {
			collected = append(collected, *r)
		}
	}

	report := domain.NewBatchReport(runID, uc.opts.DryRun, collected)
	duration := time.Since(start)
	uc.observer.RunCompleted(report, duration)

	uc.logger.Info("run_completed",
		"run_id", runID,
		"total", report.Total,
		"succeeded", report.Succeeded,
		"failed", len(report.Failed),
		"skipped", len(report.Skipped),
		"duplicates", len(report.Duplicates),
		"rate_limited", len(report.RateLimited),
		"duration", duration,
	)
	return report, nil
}

func (uc *BatchUploadUseCase) processFile(ctx context.Context, dir, name string, caches *runCache) domain.FileResult {
	parsed, ok := uc.parser.Parse(name)
	if !ok {
		uc.logger.Warn("parse_failed", "file", name)
		return domain.FileResult{
			Filename: name,
			Status:   domain.StatusParseFailed,
			Detail:   "filename does not match the expected pattern",
		}
	}

	lookup, err := uc.findPatient(ctx, parsed, caches)
	if err != nil {
		return uc.failureResult(name, "patient lookup failed", err)
	}
	switch lookup.Status {
	case domain.LookupNotFound:
		return domain.FileResult{
			Filename: name,
			Status:   domain.StatusPatientNotFound,
			Detail:   lookup.Detail,
		}
	case domain.LookupMultipleMatches:
		return domain.FileResult{
			Filename: name,
			Status:   domain.StatusPatientMultipleMatches,
			Detail:   "multiple patients matched: " + lookup.Detail,
		}
	}

	docs, err := uc.listDocuments(ctx, lookup.PatientID, caches)
	if err != nil {
		return uc.failureResult(name, "duplicate check failed", err)
	}
	if domain.ContainsDuplicate(docs, parsed.Date, parsed.Description, parsed.TagFull) {
		return domain.FileResult{
			Filename: name,
			Status:   domain.StatusDuplicate,
			Detail: fmt.Sprintf("patient %d, date %s, description '%s'",
				lookup.PatientID, parsed.Date, parsed.Description),
		}
	}

	if uc.opts.DryRun {
		uc.logger.Info("dry_run_upload",
			"file", name,
			"patient_id", lookup.PatientID,
			"date", parsed.Date,
			"description", parsed.Description,
		)
		return domain.FileResult{
			Filename: name,
			Status:   domain.StatusSucceeded,
			Detail:   "dry run: upload skipped",
		}
	}

	outcome, err := uc.uploader.UploadDocument(ctx, domain.UploadRequest{
		FilePath:    filepath.Join(dir, name),
		Filename:    name,
		PatientID:   lookup.PatientID,
		DoctorID:    lookup.DoctorID,
		Date:        parsed.Date,
		Description: parsed.Description,
		Metatag:     parsed.TagFull,
	})
	if err != nil {
		return uc.failureResult(name, "upload failed", err)
	}
	if outcome.Status != domain.UploadSuccess {
		uc.logger.Warn("upload_rejected", "file", name, "detail", outcome.Detail)
		return domain.FileResult{
			Filename: name,
			Status:   domain.StatusUploadFailed,
			Detail:   outcome.Detail,
		}
	}

	if uc.opts.DestDir != "" {
		if err := uc.files.Move(filepath.Join(dir, name), uc.opts.DestDir); err != nil {
			// The document is on the chart; a stuck file only risks a
			// duplicate skip next run.
			uc.logger.Warn("move_failed", "file", name, "error", err)
		}
	}

	uc.logger.Info("uploaded", "file", name, "document_id", outcome.DocumentID)
	return domain.FileResult{
		Filename:   name,
		Status:     domain.StatusSucceeded,
		DocumentID: outcome.DocumentID,
	}
}

func (uc *BatchUploadUseCase) findPatient(ctx context.Context, parsed *domain.ParsedFilename, caches *runCache) (domain.PatientLookupResult, error) {
	query := domain.PatientQuery{
		LastName:      parsed.LastName,
		FirstName:     parsed.FirstName,
		MiddleInitial: parsed.MiddleInitial,
		DOB:           parsed.DOB,
	}
	key := query.CacheKey()
	if cached, ok := caches.lookup(key); ok {
		return cached, nil
	}

	result, err := uc.patients.FindPatient(ctx, query)
	if err != nil {
		return domain.PatientLookupResult{}, err
	}
	caches.storeLookup(key, result)
	return result, nil
}

func (uc *BatchUploadUseCase) listDocuments(ctx context.Context, patientID int64, caches *runCache) ([]domain.StoredDocument, error) {
	if cached, ok := caches.documents(patientID); ok {
		return cached, nil
	}

	docs, err := uc.documents.ListPatientDocuments(ctx, patientID)
	if err != nil {
		return nil, err
	}
	caches.storeDocuments(patientID, docs)
	return docs, nil
}

func (uc *BatchUploadUseCase) failureResult(name, stage string, err error) domain.FileResult {
	if rl, ok := domain.IsRateLimit(err); ok {
		uc.logger.Warn("rate_limited", "file", name, "stage", stage, "app_limit", rl.AppLimit)
		return domain.FileResult{
			Filename: name,
			Status:   domain.StatusRateLimited,
			Detail:   err.Error(),
			AppLimit: rl.AppLimit,
		}
	}
	uc.logger.Warn("file_failed", "file", name, "stage", stage, "error", err)
	return domain.FileResult{
		Filename: name,
		Status:   domain.StatusUploadFailed,
		Detail:   stage + ": " + err.Error(),
	}
}

// partition assigns file indexes to workers round-robin: index i goes to
// worker i mod workers, keeping each worker's indexes in ascending order.
func partition(total, workers int) [][]int {
	chunks := make([][]int, workers)
	for i := 0; i < total; i++ {
		chunks[i%workers] = append(chunks[i%workers], i)
	}
	return chunks
}

func sleepWithContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
