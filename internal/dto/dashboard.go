package dto

// DashboardStatsResponse aggregates the committed schedule for the
// operator dashboard.
type DashboardStatsResponse struct {
	TotalSessions   int                  `json:"totalSessions"`
	LectureSessions int                  `json:"lectureSessions"`
	LabSessions     int                  `json:"labSessions"`
	RoomUtilization []RoomUtilization    `json:"roomUtilization"`
	SubjectSessions []SubjectSessions    `json:"subjectSessions"`
	FacultyLoad     []FacultyLoadSummary `json:"facultyLoad"`
}

// RoomUtilization reports how many of the grid's slots a room occupies.
type RoomUtilization struct {
	RoomID      string  `json:"roomId"`
	RoomName    string  `json:"roomName"`
	Sessions    int     `json:"sessions"`
	Utilization float64 `json:"utilization"`
}

// SubjectSessions counts committed sessions per subject.
type SubjectSessions struct {
	SubjectID   string `json:"subjectId"`
	SubjectCode string `json:"subjectCode"`
	Sessions    int    `json:"sessions"`
}

// FacultyLoadSummary compares assigned hours with the advisory cap.
type FacultyLoadSummary struct {
	FacultyID     string `json:"facultyId"`
	FacultyName   string `json:"facultyName"`
	AssignedHours int    `json:"assignedHours"`
	MaxLoad       int    `json:"maxLoad"`
	OverCap       bool   `json:"overCap"`
}
