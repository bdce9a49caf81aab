package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clipscribe/video-annotator/internal/annotations"
	"github.com/clipscribe/video-annotator/internal/models"
	"github.com/jmoiron/sqlx"
)

type annotationRepo struct {
	db *sqlx.DB
}

func NewAnnotationRepo(db *sqlx.DB) annotations.Repository {
	return &annotationRepo{
		db: db,
	}
}

func (r *annotationRepo) CreateAnnotation(ctx context.Context, record *models.AnnotationRecord) (*models.AnnotationRecord, error) {
	created := &models.AnnotationRecord{}
	err := r.db.QueryRowxContext(
		ctx,
		createAnnotationQuery,
		record.JobID,
		record.VideoPath,
		record.AudioPath,
		record.Transcription,
		record.Captions,
		record.VideoS3Key,
		record.AudioS3Key,
	).StructScan(created)
	if err == nil {
		return created, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		// Conflict on job_id: the record already exists, hand it back.
		return r.GetAnnotationByJobID(ctx, record.JobID)
	}
	return nil, fmt.Errorf("failed to create annotation: %w", err)
}

func (r *annotationRepo) GetAnnotationByID(ctx context.Context, id int64) (*models.AnnotationRecord, error) {
	record := &models.AnnotationRecord{}
	if err := r.db.QueryRowxContext(
		ctx,
		getAnnotationByIDQuery,
		id,
	).StructScan(record); err != nil {
		return nil, fmt.Errorf("failed to get annotation by id: %w", err)
	}
	return record, nil
}

func (r *annotationRepo) GetAnnotationByJobID(ctx context.Context, jobID string) (*models.AnnotationRecord, error) {
	record := &models.AnnotationRecord{}
	if err := r.db.QueryRowxContext(
		ctx,
		getAnnotationByJobIDQuery,
		jobID,
	).StructScan(record); err != nil {
		return nil, fmt.Errorf("failed to get annotation by job id: %w", err)
	}
	return record, nil
}
