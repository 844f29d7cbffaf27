package dto

// InsightsRequest asks the insights assistant a free-form question about
// the current timetable.
type InsightsRequest struct {
	Question string `json:"question" validate:"required,min=3,max=2000"`
}

// InsightsResponse carries the generated answer.
type InsightsResponse struct {
	Answer string `json:"answer"`
	Model  string `json:"model"`
}
