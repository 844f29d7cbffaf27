package service

import (
	"context"
	"database/sql"
	"sync"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/campuskit/scts-api/internal/dto"
	"github.com/campuskit/scts-api/internal/models"
	appErrors "github.com/campuskit/scts-api/pkg/errors"
)

type facultyCatalogSource interface {
	ListAll(ctx context.Context) ([]models.Faculty, error)
}

type subjectCatalogSource interface {
	ListAll(ctx context.Context) ([]models.Subject, error)
}

type roomCatalogSource interface {
	ListAll(ctx context.Context) ([]models.Room, error)
}

type batchCatalogSource interface {
	ListAll(ctx context.Context) ([]models.Batch, error)
}

type slotCatalogSource interface {
	ListAll(ctx context.Context) ([]models.Slot, error)
}

type scheduleStore interface {
	List(ctx context.Context, filter models.ScheduleEntryFilter) ([]models.ScheduleEntry, error)
	ListAll(ctx context.Context) ([]models.ScheduleEntry, error)
	Create(ctx context.Context, entry *models.ScheduleEntry) error
	ReplaceAllWithTx(ctx context.Context, tx *sqlx.Tx, entries []models.ScheduleEntry) error
	DeleteAll(ctx context.Context) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type generationObserver interface {
	ObserveGenerationRun(scheduled, conflicts int)
}

// TimetableService runs bulk generation over the resource catalog and
// exposes the committed schedule. A generation run is one uninterruptible
// in-memory computation; the mutex guarantees at most one run mutates the
// stored schedule at a time.
type TimetableService struct {
	faculty  facultyCatalogSource
	subjects subjectCatalogSource
	rooms    roomCatalogSource
	batches  batchCatalogSource
	slots    slotCatalogSource
	entries  scheduleStore
	tx       txProvider
	metrics  generationObserver
	logger   *zap.Logger

	mu sync.Mutex
}

// NewTimetableService wires the generation dependencies.
func NewTimetableService(
	faculty facultyCatalogSource,
	subjects subjectCatalogSource,
	rooms roomCatalogSource,
	batches batchCatalogSource,
	slots slotCatalogSource,
	entries scheduleStore,
	tx txProvider,
	metrics generationObserver,
	logger *zap.Logger,
) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		faculty:  faculty,
		subjects: subjects,
		rooms:    rooms,
		batches:  batches,
		slots:    slots,
		entries:  entries,
		tx:       tx,
		metrics:  metrics,
		logger:   logger,
	}
}

// Generate expands the catalog into session demand, allocates every request
// with the greedy first-fit pass, and replaces the stored schedule with the
// new committed entries. Unsatisfiable requests never abort the run; they
// come back as conflicts.
func (s *TimetableService) Generate(ctx context.Context) (*dto.GenerateTimetableResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	catalog, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if len(catalog.Slots) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no slots configured; seed the slot grid first")
	}

	requests := buildSessionDemand(catalog, s.logger)
	result := allocate(catalog, requests)

	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	if err := s.entries.ReplaceAllWithTx(ctx, tx, result.Entries); err != nil {
		_ = tx.Rollback()
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist generated schedule")
	}
	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit generated schedule")
	}

	if s.metrics != nil {
		s.metrics.ObserveGenerationRun(len(result.Entries), len(result.Conflicts))
	}
	s.logger.Info("generation run complete",
		zap.Int("requests", len(requests)),
		zap.Int("scheduled", len(result.Entries)),
		zap.Int("conflicts", len(result.Conflicts)),
	)

	return &dto.GenerateTimetableResponse{
		Schedule:  result.Entries,
		Conflicts: result.Conflicts,
		Stats: dto.TimetableRunStats{
			Requests:  len(requests),
			Scheduled: len(result.Entries),
			Conflicts: len(result.Conflicts),
		},
	}, nil
}

// List returns committed entries matching the filter.
func (s *TimetableService) List(ctx context.Context, filter models.ScheduleEntryFilter) ([]models.ScheduleEntry, error) {
	entries, err := s.entries.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule entries")
	}
	return entries, nil
}

// Clear removes every committed entry.
func (s *TimetableService) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.entries.DeleteAll(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear schedule")
	}
	return nil
}

// ListSlots returns the configured slot grid.
func (s *TimetableService) ListSlots(ctx context.Context) ([]models.Slot, error) {
	slots, err := s.slots.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list slots")
	}
	return slots, nil
}

func (s *TimetableService) loadCatalog(ctx context.Context) (*models.Catalog, error) {
	faculty, err := s.faculty.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}
	subjects, err := s.subjects.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}
	rooms, err := s.rooms.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	batches, err := s.batches.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batches")
	}
	slots, err := s.slots.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slots")
	}

	return &models.Catalog{
		Faculty:  faculty,
		Subjects: subjects,
		Rooms:    rooms,
		Batches:  batches,
		Slots:    slots,
	}, nil
}
