package ports

import (
	"context"

	"github.com/narora21/chrono-patient-uploader/internal/core/domain"
)

// BatchRunner is the inbound contract for one batch upload run.
type BatchRunner interface {
	Run(ctx context.Context, dir string) (*domain.BatchReport, error)
}
