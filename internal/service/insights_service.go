package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuskit/scts-api/internal/dto"
	"github.com/campuskit/scts-api/pkg/config"
	appErrors "github.com/campuskit/scts-api/pkg/errors"
)

// InsightsService answers free-form questions about the committed
// timetable by sending a summary of the current schedule plus the question
// to a hosted generative model.
type InsightsService struct {
	cfg       config.InsightsConfig
	client    *http.Client
	dashboard *DashboardService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInsightsService constructs the insights client.
func NewInsightsService(cfg config.InsightsConfig, dashboard *DashboardService, validate *validator.Validate, logger *zap.Logger) *InsightsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &InsightsService{
		cfg:       cfg,
		client:    &http.Client{Timeout: timeout},
		dashboard: dashboard,
		validator: validate,
		logger:    logger,
	}
}

type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Ask sends the question with a schedule summary and returns the model's
// answer.
func (s *InsightsService) Ask(ctx context.Context, req dto.InsightsRequest) (*dto.InsightsResponse, error) {
	if !s.cfg.Enabled {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "insights are disabled")
	}
	if s.cfg.APIKey == "" {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "insights api key is not configured")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid insights payload")
	}

	prompt, err := s.buildPrompt(ctx, req.Question)
	if err != nil {
		return nil, err
	}

	payload := generateContentRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode insights request")
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(s.cfg.BaseURL, "/"), s.cfg.Model, s.cfg.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build insights request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "insights provider unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read insights response")
	}
	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("insights provider returned non-200",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", raw),
		)
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "insights provider request failed")
	}

	var parsed generateContentResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode insights response")
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "insights provider returned an empty answer")
	}

	return &dto.InsightsResponse{
		Answer: parsed.Candidates[0].Content.Parts[0].Text,
		Model:  s.cfg.Model,
	}, nil
}

func (s *InsightsService) buildPrompt(ctx context.Context, question string) (string, error) {
	stats, err := s.dashboard.Stats(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("You are an assistant for a college timetable system.\n")
	b.WriteString("Current schedule summary:\n")
	fmt.Fprintf(&b, "- total sessions: %d (%d lectures, %d labs)\n", stats.TotalSessions, stats.LectureSessions, stats.LabSessions)
	for _, room := range stats.RoomUtilization {
		fmt.Fprintf(&b, "- room %s: %d sessions (%.1f%% of slots)\n", room.RoomName, room.Sessions, room.Utilization)
	}
	for _, load := range stats.FacultyLoad {
		fmt.Fprintf(&b, "- faculty %s: %d assigned hours (cap %d)\n", load.FacultyName, load.AssignedHours, load.MaxLoad)
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	return b.String(), nil
}
