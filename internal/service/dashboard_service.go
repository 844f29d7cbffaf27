package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/campuskit/scts-api/internal/dto"
	"github.com/campuskit/scts-api/internal/models"
	appErrors "github.com/campuskit/scts-api/pkg/errors"
)

const dashboardStatsCacheKey = "dashboard:stats"

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type cacheObserver interface {
	ObserveCacheHit()
	ObserveCacheMiss()
}

// DashboardService aggregates the committed schedule into operator-facing
// stats. Aggregates are cached; InvalidateCache must be called whenever the
// schedule changes.
type DashboardService struct {
	entries  scheduleStore
	faculty  facultyCatalogSource
	subjects subjectCatalogSource
	rooms    roomCatalogSource
	slots    slotCatalogSource
	cache    dashboardCache
	metrics  cacheObserver
	ttl      time.Duration
	logger   *zap.Logger
}

// NewDashboardService wires the dashboard dependencies.
func NewDashboardService(
	entries scheduleStore,
	faculty facultyCatalogSource,
	subjects subjectCatalogSource,
	rooms roomCatalogSource,
	slots slotCatalogSource,
	cache dashboardCache,
	metrics cacheObserver,
	ttl time.Duration,
	logger *zap.Logger,
) *DashboardService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		entries:  entries,
		faculty:  faculty,
		subjects: subjects,
		rooms:    rooms,
		slots:    slots,
		cache:    cache,
		metrics:  metrics,
		ttl:      ttl,
		logger:   logger,
	}
}

// Stats returns the aggregated dashboard payload, served from cache when
// fresh.
func (s *DashboardService) Stats(ctx context.Context) (*dto.DashboardStatsResponse, error) {
	if s.cache != nil {
		var cached dto.DashboardStatsResponse
		err := s.cache.Get(ctx, dashboardStatsCacheKey, &cached)
		if err == nil {
			if s.metrics != nil {
				s.metrics.ObserveCacheHit()
			}
			return &cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.ObserveCacheMiss()
		}
	}

	stats, err := s.computeStats(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, dashboardStatsCacheKey, stats, s.ttl); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

// InvalidateCache drops cached aggregates after the schedule changes.
func (s *DashboardService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func (s *DashboardService) computeStats(ctx context.Context) (*dto.DashboardStatsResponse, error) {
	entries, err := s.entries.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule entries")
	}
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
	slots, err := s.slots.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slots")
	}

	roomTypes := make(map[string]models.RoomType, len(rooms))
	for _, room := range rooms {
		roomTypes[room.ID] = room.Type
	}

	// A session's type is the type of the room it sits in; a lab-flagged
	// subject's lecture sessions occupy lecture rooms and count as lectures.
	roomCounts := make(map[string]int)
	subjectCounts := make(map[string]int)
	facultyCounts := make(map[string]int)
	lectures, labs := 0, 0
	for _, entry := range entries {
		roomCounts[entry.RoomID]++
		subjectCounts[entry.SubjectID]++
		facultyCounts[entry.FacultyID]++
		if roomTypes[entry.RoomID] == models.RoomTypeLab {
			labs++
		} else {
			lectures++
		}
	}

	stats := &dto.DashboardStatsResponse{
		TotalSessions:   len(entries),
		LectureSessions: lectures,
		LabSessions:     labs,
		RoomUtilization: make([]dto.RoomUtilization, 0, len(rooms)),
		SubjectSessions: make([]dto.SubjectSessions, 0, len(subjects)),
		FacultyLoad:     make([]dto.FacultyLoadSummary, 0, len(faculty)),
	}

	for _, room := range rooms {
		utilization := 0.0
		if len(slots) > 0 {
			utilization = float64(roomCounts[room.ID]) / float64(len(slots)) * 100
		}
		stats.RoomUtilization = append(stats.RoomUtilization, dto.RoomUtilization{
			RoomID:      room.ID,
			RoomName:    room.Name,
			Sessions:    roomCounts[room.ID],
			Utilization: utilization,
		})
	}
	sort.SliceStable(stats.RoomUtilization, func(i, j int) bool {
		return stats.RoomUtilization[i].Sessions > stats.RoomUtilization[j].Sessions
	})

	for _, subject := range subjects {
		stats.SubjectSessions = append(stats.SubjectSessions, dto.SubjectSessions{
			SubjectID:   subject.ID,
			SubjectCode: subject.Code,
			Sessions:    subjectCounts[subject.ID],
		})
	}
	sort.SliceStable(stats.SubjectSessions, func(i, j int) bool {
		return stats.SubjectSessions[i].Sessions > stats.SubjectSessions[j].Sessions
	})

	for _, fac := range faculty {
		assigned := facultyCounts[fac.ID]
		stats.FacultyLoad = append(stats.FacultyLoad, dto.FacultyLoadSummary{
			FacultyID:     fac.ID,
			FacultyName:   fac.Name,
			AssignedHours: assigned,
			MaxLoad:       fac.MaxLoad,
			OverCap:       fac.MaxLoad > 0 && assigned > fac.MaxLoad,
		})
	}
	sort.SliceStable(stats.FacultyLoad, func(i, j int) bool {
		return stats.FacultyLoad[i].AssignedHours > stats.FacultyLoad[j].AssignedHours
	})

	return stats, nil
}
