package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuskit/scts-api/internal/models"
	appErrors "github.com/campuskit/scts-api/pkg/errors"
)

type batchRepository interface {
	List(ctx context.Context, filter models.BatchFilter) ([]models.Batch, int, error)
	FindByID(ctx context.Context, id string) (*models.Batch, error)
	Create(ctx context.Context, batch *models.Batch) error
	Update(ctx context.Context, batch *models.Batch) error
	Delete(ctx context.Context, id string) error
}

// CreateBatchRequest captures fields for registering student cohorts.
type CreateBatchRequest struct {
	Name     string   `json:"name" validate:"required"`
	Size     int      `json:"size" validate:"required,min=1"`
	Program  string   `json:"program"`
	Subjects []string `json:"subjects" validate:"required,min=1"`
}

// UpdateBatchRequest modifies cohort fields.
type UpdateBatchRequest struct {
	Name     string   `json:"name" validate:"required"`
	Size     int      `json:"size" validate:"required,min=1"`
	Program  string   `json:"program"`
	Subjects []string `json:"subjects" validate:"required,min=1"`
}

// BatchService handles cohort domain workflows. Subject references are
// verified at write time; the generator still tolerates records that went
// stale afterwards.
type BatchService struct {
	repo      batchRepository
	subjects  subjectFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBatchService creates a new batch service.
func NewBatchService(repo batchRepository, subjects subjectFinder, validate *validator.Validate, logger *zap.Logger) *BatchService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchService{repo: repo, subjects: subjects, validator: validate, logger: logger}
}

// List returns paginated batches.
func (s *BatchService) List(ctx context.Context, filter models.BatchFilter) ([]models.Batch, *models.Pagination, error) {
	batches, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list batches")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return batches, pagination, nil
}

// Get returns a batch by identifier.
func (s *BatchService) Get(ctx context.Context, id string) (*models.Batch, error) {
	batch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	return batch, nil
}

// Create registers a new cohort after verifying every subject reference.
func (s *BatchService) Create(ctx context.Context, req CreateBatchRequest) (*models.Batch, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}
	if err := s.checkSubjects(ctx, req.Subjects); err != nil {
		return nil, err
	}

	batch := &models.Batch{
		Name:     strings.TrimSpace(req.Name),
		Size:     req.Size,
		Program:  req.Program,
		Subjects: req.Subjects,
	}

	if err := s.repo.Create(ctx, batch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create batch")
	}
	return batch, nil
}

// Update modifies an existing cohort.
func (s *BatchService) Update(ctx context.Context, id string, req UpdateBatchRequest) (*models.Batch, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}

	batch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	if err := s.checkSubjects(ctx, req.Subjects); err != nil {
		return nil, err
	}

	batch.Name = strings.TrimSpace(req.Name)
	batch.Size = req.Size
	batch.Program = req.Program
	batch.Subjects = req.Subjects

	if err := s.repo.Update(ctx, batch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update batch")
	}
	return batch, nil
}

// Delete removes a batch record.
func (s *BatchService) Delete(ctx context.Context, id string) error {
	_, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete batch")
	}
	return nil
}

func (s *BatchService) checkSubjects(ctx context.Context, ids []string) error {
	for _, subjectID := range ids {
		if _, err := s.subjects.FindByID(ctx, subjectID); err != nil {
			if err == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrValidation, "unknown subject id: "+subjectID)
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject reference")
		}
	}
	return nil
}
