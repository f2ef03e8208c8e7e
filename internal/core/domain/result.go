package domain

type UploadStatus string

const (
	UploadSuccess UploadStatus = "success"
	UploadFailed  UploadStatus = "failed"
)

type UploadOutcome struct {
	Status     UploadStatus
	DocumentID int64
	Detail     string
}

// FileStatus is the terminal classification of one processed file.
type FileStatus string

const (
	StatusSucceeded              FileStatus = "succeeded"
	StatusParseFailed            FileStatus = "parse_failed"
	StatusPatientNotFound        FileStatus = "patient_not_found"
	StatusPatientMultipleMatches FileStatus = "patient_multiple_matches"
	StatusDuplicate              FileStatus = "duplicate"
	StatusUploadFailed           FileStatus = "upload_failed"
	StatusRateLimited            FileStatus = "rate_limited"
)

type FileResult struct {
	Filename   string
	Status     FileStatus
	Detail     string
	DocumentID int64
	// AppLimit marks a rate-limited file that hit the hourly application
	// limit rather than a transient burst limit.
	AppLimit bool
}

// BatchReport aggregates the terminal results of one run. The per-category
// lists keep the order results were collected in; only counts are guaranteed
// across workers.
type BatchReport struct {
	RunID  string
	DryRun bool

	Succeeded   int
	Failed      []FileResult
	Skipped     []FileResult
	Duplicates  []FileResult
	RateLimited []FileResult
	Total       int

	// AppLimit is set when any file failed on the hourly application limit.
	AppLimit bool
}

func NewBatchReport(runID string, dryRun bool, results []FileResult) *BatchReport {
	report := &BatchReport{
		RunID:  runID,
		DryRun: dryRun,
		Total:  len(results),
	}
	for _, r := range results {
		switch r.Status {
		case StatusSucceeded:
			report.Succeeded++
		case StatusParseFailed:
			report.Skipped = append(report.Skipped, r)
		case StatusDuplicate:
			report.Duplicates = append(report.Duplicates, r)
		case StatusRateLimited:
			report.RateLimited = append(report.RateLimited, r)
			if r.AppLimit {
				report.AppLimit = true
			}
		default:
			report.Failed = append(report.Failed, r)
		}
	}
	return report
}
