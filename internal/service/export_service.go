package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campuskit/scts-api/internal/models"
	appErrors "github.com/campuskit/scts-api/pkg/errors"
	"github.com/campuskit/scts-api/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFormat identifies a supported timetable export encoding.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult carries a rendered timetable document.
type ExportResult struct {
	Payload     []byte
	ContentType string
	Filename    string
}

// ExportService renders the committed timetable into downloadable
// documents, resolving ids to human-readable names from the catalog.
type ExportService struct {
	entries  scheduleStore
	faculty  facultyCatalogSource
	subjects subjectCatalogSource
	rooms    roomCatalogSource
	batches  batchCatalogSource
	slots    slotCatalogSource
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(
	entries scheduleStore,
	faculty facultyCatalogSource,
	subjects subjectCatalogSource,
	rooms roomCatalogSource,
	batches batchCatalogSource,
	slots slotCatalogSource,
	csv csvRenderer,
	pdf pdfRenderer,
	logger *zap.Logger,
) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		entries:  entries,
		faculty:  faculty,
		subjects: subjects,
		rooms:    rooms,
		batches:  batches,
		slots:    slots,
		csv:      csv,
		pdf:      pdf,
		logger:   logger,
	}
}

var timetableExportHeaders = []string{"Day", "Time", "Batch", "Subject", "Type", "Faculty", "Room", "Locked"}

// Generate renders the full committed timetable in the requested format.
func (s *ExportService) Generate(ctx context.Context, format ExportFormat) (*ExportResult, error) {
	dataset, err := s.buildDataset(ctx)
	if err != nil {
		return nil, err
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	switch format {
	case ExportFormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{
			Payload:     payload,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("timetable-%s.csv", stamp),
		}, nil
	case ExportFormatPDF:
		payload, err := s.pdf.Render(dataset, "Weekly Timetable")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{
			Payload:     payload,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("timetable-%s.pdf", stamp),
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format: "+string(format))
	}
}

func (s *ExportService) buildDataset(ctx context.Context) (export.Dataset, error) {
	entries, err := s.entries.ListAll(ctx)
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule entries")
	}

	facultyNames, err := s.facultyNames(ctx)
	if err != nil {
		return export.Dataset{}, err
	}
	subjects, err := s.subjectIndex(ctx)
	if err != nil {
		return export.Dataset{}, err
	}
	rooms, err := s.roomIndex(ctx)
	if err != nil {
		return export.Dataset{}, err
	}
	batchNames, err := s.batchNames(ctx)
	if err != nil {
		return export.Dataset{}, err
	}
	slotIndex, err := s.slotIndex(ctx)
	if err != nil {
		return export.Dataset{}, err
	}

	rows := make([]map[string]string, 0, len(entries))
	for _, entry := range entries {
		subject := subjects[entry.SubjectID]
		slot := slotIndex[entry.SlotID]
		room, roomKnown := rooms[entry.RoomID]

		// The room type equals the session type for every committed entry;
		// a lab-flagged subject still holds its lectures in lecture rooms.
		sessionType := string(models.SessionLecture)
		if roomKnown {
			if room.Type == models.RoomTypeLab {
				sessionType = string(models.SessionLab)
			}
		} else if subject.IsLab {
			sessionType = string(models.SessionLab)
		}
		rows = append(rows, map[string]string{
			"Day":     slot.Day,
			"Time":    slot.StartTime + " - " + slot.EndTime,
			"Batch":   orID(batchNames[entry.BatchID], entry.BatchID),
			"Subject": orID(subject.Code, entry.SubjectID),
			"Type":    sessionType,
			"Faculty": orID(facultyNames[entry.FacultyID], entry.FacultyID),
			"Room":    orID(room.Name, entry.RoomID),
			"Locked":  fmt.Sprintf("%t", entry.IsLocked),
		})
	}

	return export.Dataset{Headers: timetableExportHeaders, Rows: rows}, nil
}

func orID(name, id string) string {
	if strings.TrimSpace(name) == "" {
		return id
	}
	return name
}

func (s *ExportService) facultyNames(ctx context.Context) (map[string]string, error) {
	faculty, err := s.faculty.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}
	names := make(map[string]string, len(faculty))
	for _, f := range faculty {
		names[f.ID] = f.Name
	}
	return names, nil
}

func (s *ExportService) subjectIndex(ctx context.Context) (map[string]models.Subject, error) {
	subjects, err := s.subjects.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}
	index := make(map[string]models.Subject, len(subjects))
	for _, subject := range subjects {
		index[subject.ID] = subject
	}
	return index, nil
}

func (s *ExportService) roomIndex(ctx context.Context) (map[string]models.Room, error) {
	rooms, err := s.rooms.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	index := make(map[string]models.Room, len(rooms))
	for _, room := range rooms {
		index[room.ID] = room
	}
	return index, nil
}

func (s *ExportService) batchNames(ctx context.Context) (map[string]string, error) {
	batches, err := s.batches.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batches")
	}
	names := make(map[string]string, len(batches))
	for _, batch := range batches {
		names[batch.ID] = batch.Name
	}
	return names, nil
}

func (s *ExportService) slotIndex(ctx context.Context) (map[string]models.Slot, error) {
	slots, err := s.slots.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slots")
	}
	index := make(map[string]models.Slot, len(slots))
	for _, slot := range slots {
		index[slot.ID] = slot
	}
	return index, nil
}
