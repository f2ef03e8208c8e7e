package ports

import (
	"context"
	"time"

	"github.com/narora21/chrono-patient-uploader/internal/core/domain"
)

// FilenameParser turns a filename into structured fields, or reports that the
// file does not follow the configured pattern.
type FilenameParser interface {
	Parse(filename string) (*domain.ParsedFilename, bool)
}

// PatientDirectory looks a patient up by name.
type PatientDirectory interface {
	FindPatient(ctx context.Context, q domain.PatientQuery) (domain.PatientLookupResult, error)
}

// DocumentLister fetches the full list of documents already on a chart.
type DocumentLister interface {
	ListPatientDocuments(ctx context.Context, patientID int64) ([]domain.StoredDocument, error)
}

// DocumentUploader pushes one file to a chart. Ordinary rejections come back
// as a Failed outcome; only rate limiting and transport failures are errors.
type DocumentUploader interface {
	UploadDocument(ctx context.Context, req domain.UploadRequest) (domain.UploadOutcome, error)
}

// FileStore abstracts the source/destination directories.
type FileStore interface {
	ListFiles(dir string) ([]string, error)
	EnsureDir(dir string) error
	Move(src, destDir string) error
}

// TokenSource supplies a valid bearer token on demand, refreshing
// transparently when needed.
type TokenSource interface {
	AuthHeader(ctx context.Context) (string, error)
}

// BatchObserver receives per-file and per-run notifications.
type BatchObserver interface {
	FileProcessed(result domain.FileResult)
	RunCompleted(report *domain.BatchReport, duration time.Duration)
}

// NopObserver satisfies BatchObserver with no-ops.
type NopObserver struct{}

func (NopObserver) FileProcessed(domain.FileResult)                 {}
func (NopObserver) RunCompleted(*domain.BatchReport, time.Duration) {}

// ObserverList fans notifications out to several observers.
type ObserverList []BatchObserver

func (l ObserverList) FileProcessed(result domain.FileResult) {
	for _, o := range l {
		o.FileProcessed(result)
	}
}

func (l ObserverList) RunCompleted(report *domain.BatchReport, duration time.Duration) {
	for _, o := range l {
		o.RunCompleted(report, duration)
	}
}
