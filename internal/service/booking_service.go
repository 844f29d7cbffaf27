package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campuskit/scts-api/internal/dto"
	"github.com/campuskit/scts-api/internal/models"
	appErrors "github.com/campuskit/scts-api/pkg/errors"
)

type slotFinder interface {
	FindByID(ctx context.Context, id string) (*models.Slot, error)
}

type subjectFinder interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

type facultyFinder interface {
	FindByID(ctx context.Context, id string) (*models.Faculty, error)
}

type roomFinder interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
}

type batchFinder interface {
	FindByID(ctx context.Context, id string) (*models.Batch, error)
}

// Rejection messages for the three clash dimensions. Batch clash wins over
// faculty clash, which wins over room clash; only the first match is
// reported.
const (
	msgBatchClash   = "This batch already has a class in this slot."
	msgFacultyClash = "Faculty is already teaching in this slot."
	msgRoomClash    = "Room is already occupied in this slot."

	msgNotQualified     = "Selected faculty is not qualified for this subject."
	msgCapacityTooLow   = "Room capacity is below the batch size."
	msgRoomTypeMismatch = "Room type does not match the session type."
)

// BookingService validates and commits single manual schedule entries
// against the authoritative committed entry list. Each booking is an
// atomic read-check-append: the mutex keeps two concurrent bookings from
// both validating against a stale list.
type BookingService struct {
	entries   scheduleStore
	slots     slotFinder
	subjects  subjectFinder
	faculty   facultyFinder
	rooms     roomFinder
	batches   batchFinder
	validator *validator.Validate
	logger    *zap.Logger

	mu sync.Mutex
}

// NewBookingService wires the booking dependencies.
func NewBookingService(
	entries scheduleStore,
	slots slotFinder,
	subjects subjectFinder,
	faculty facultyFinder,
	rooms roomFinder,
	batches batchFinder,
	validate *validator.Validate,
	logger *zap.Logger,
) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		entries:   entries,
		slots:     slots,
		subjects:  subjects,
		faculty:   faculty,
		rooms:     rooms,
		batches:   batches,
		validator: validate,
		logger:    logger,
	}
}

// Book validates the proposed entry and appends it to the committed
// schedule. Clash rejections carry a CONFLICT code and one specific,
// caller-renderable message; invariant rejections (expertise, capacity,
// room type) carry a VALIDATION code.
func (s *BookingService) Book(ctx context.Context, req dto.CreateEntryRequest) (*models.ScheduleEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}

	slot, err := s.resolveSlot(ctx, req.SlotID)
	if err != nil {
		return nil, err
	}
	subject, err := s.resolveSubject(ctx, req.SubjectID)
	if err != nil {
		return nil, err
	}
	fac, err := s.resolveFaculty(ctx, req.FacultyID)
	if err != nil {
		return nil, err
	}
	room, err := s.resolveRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	batch, err := s.resolveBatch(ctx, req.BatchID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.entries.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule entries")
	}

	if msg := clashMessage(existing, req); msg != "" {
		return nil, appErrors.Clone(appErrors.ErrConflict, msg)
	}

	if !fac.CanTeach(subject.ID) {
		return nil, appErrors.Clone(appErrors.ErrValidation, msgNotQualified)
	}
	if room.Capacity < batch.Size {
		return nil, appErrors.Clone(appErrors.ErrValidation, msgCapacityTooLow)
	}
	sessionType := models.SessionLecture
	if subject.IsLab {
		sessionType = models.SessionLab
	}
	if room.Type != sessionType.RoomType() {
		return nil, appErrors.Clone(appErrors.ErrValidation, msgRoomTypeMismatch)
	}

	entry := &models.ScheduleEntry{
		ID:        "manual-" + uuid.NewString(),
		SlotID:    slot.ID,
		SubjectID: subject.ID,
		FacultyID: fac.ID,
		RoomID:    room.ID,
		BatchID:   batch.ID,
		IsLocked:  true,
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save booking")
	}

	s.logger.Info("manual booking committed",
		zap.String("entry_id", entry.ID),
		zap.String("slot_id", entry.SlotID),
		zap.String("batch_id", entry.BatchID),
	)
	return entry, nil
}

// clashMessage returns the rejection message for the first entry sharing
// the requested slot and any of batch, faculty or room, or "" if the slot
// is free for all three.
func clashMessage(existing []models.ScheduleEntry, req dto.CreateEntryRequest) string {
	for _, entry := range existing {
		if entry.SlotID != req.SlotID {
			continue
		}
		switch {
		case entry.BatchID == req.BatchID:
			return msgBatchClash
		case entry.FacultyID == req.FacultyID:
			return msgFacultyClash
		case entry.RoomID == req.RoomID:
			return msgRoomClash
		}
	}
	return ""
}

func (s *BookingService) resolveSlot(ctx context.Context, id string) (*models.Slot, error) {
	slot, err := s.slots.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot")
	}
	return slot, nil
}

func (s *BookingService) resolveSubject(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.subjects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	return subject, nil
}

func (s *BookingService) resolveFaculty(ctx context.Context, id string) (*models.Faculty, error) {
	fac, err := s.faculty.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}
	return fac, nil
}

func (s *BookingService) resolveRoom(ctx context.Context, id string) (*models.Room, error) {
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	return room, nil
}

func (s *BookingService) resolveBatch(ctx context.Context, id string) (*models.Batch, error) {
	batch, err := s.batches.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	return batch, nil
}
