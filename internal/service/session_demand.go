package service

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/campuskit/scts-api/internal/models"
)

// sessionRequest is one required teaching hour for a batch+subject pair,
// awaiting assignment. The id is stable across runs:
// <batchID>-<subjectID>-LEC|LAB-<occurrence>.
type sessionRequest struct {
	ID      string
	Subject models.Subject
	Batch   models.Batch
	Type    models.SessionType
}

func sessionTypeTag(t models.SessionType) string {
	if t == models.SessionLab {
		return "LAB"
	}
	return "LEC"
}

// buildSessionDemand expands the catalog into the ordered list of session
// requests: for every batch, for every subject in the batch's list, one
// request per required lecture hour, then one per required lab hour.
// Subject ids that do not resolve are skipped with a warning; a dangling
// reference is a catalog data problem, not a generation failure.
func buildSessionDemand(catalog *models.Catalog, logger *zap.Logger) []sessionRequest {
	subjects := catalog.SubjectsByID()

	var requests []sessionRequest
	for _, batch := range catalog.Batches {
		for _, subjectID := range batch.Subjects {
			subject, ok := subjects[subjectID]
			if !ok {
				logger.Warn("skipping unresolved subject reference",
					zap.String("batch_id", batch.ID),
					zap.String("subject_id", subjectID),
				)
				continue
			}

			for i := 0; i < subject.LectureHours; i++ {
				requests = append(requests, sessionRequest{
					ID:      fmt.Sprintf("%s-%s-LEC-%d", batch.ID, subject.ID, i),
					Subject: subject,
					Batch:   batch,
					Type:    models.SessionLecture,
				})
			}
			if subject.IsLab {
				for i := 0; i < subject.LabHours; i++ {
					requests = append(requests, sessionRequest{
						ID:      fmt.Sprintf("%s-%s-LAB-%d", batch.ID, subject.ID, i),
						Subject: subject,
						Batch:   batch,
						Type:    models.SessionLab,
					})
				}
			}
		}
	}
	return requests
}
