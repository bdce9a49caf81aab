package annotations

import (
	"context"

	"github.com/clipscribe/video-annotator/internal/models"
)

type Repository interface {
	// CreateAnnotation persists a record once per job. Re-running the insert
	// for the same job id returns the already stored record instead of
	// creating a duplicate.
	CreateAnnotation(ctx context.Context, record *models.AnnotationRecord) (*models.AnnotationRecord, error)
	GetAnnotationByID(ctx context.Context, id int64) (*models.AnnotationRecord, error)
	GetAnnotationByJobID(ctx context.Context, jobID string) (*models.AnnotationRecord, error)
}
