package dto

import "time"

// GradeOverviewResponse aggregates per-class grade summaries for one user.
type GradeOverviewResponse struct {
	Type    string              `json:"type"`
	Classes []ClassGradeSummary `json:"classes"`
}

// ClassGradeSummary is one row of the grade overview. Average is nil when the
// class has no graded work yet.
type ClassGradeSummary struct {
	ClassID           uint     `json:"class_id"`
	ClassName         string   `json:"class_name"`
	Average           *float64 `json:"average"`
	TotalAssignments  int      `json:"total_assignments"`
	GradedAssignments int      `json:"graded_assignments,omitempty"`
	TotalStudents     int      `json:"total_students,omitempty"`
	TotalGrades       int      `json:"total_grades,omitempty"`
}

// ClassGradesResponse is the detailed per-assignment grade view for one class.
type ClassGradesResponse struct {
	Type        string                 `json:"type"`
	ClassName   string                 `json:"class_name"`
	Assignments []AssignmentGradeEntry `json:"assignments"`
}

// AssignmentGradeEntry is one assignment row in a class grade report. For
// students Grade/Feedback describe their own submission; for teachers Average
// and TotalSubmissions describe the class pool.
type AssignmentGradeEntry struct {
	AssignmentID     uint       `json:"assignment_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	DueDate          *time.Time `json:"due_date"`
	Grade            *float64   `json:"grade,omitempty"`
	Feedback         *string    `json:"feedback,omitempty"`
	SubmittedAt      *time.Time `json:"submitted_at,omitempty"`
	Average          *float64   `json:"average,omitempty"`
	TotalSubmissions int        `json:"total_submissions,omitempty"`
}

// StudentGradeRow reports one student's standing on a single assignment.
type StudentGradeRow struct {
	Student     UserPublic `json:"student"`
	Grade       *float64   `json:"grade"`
	Feedback    *string    `json:"feedback"`
	Submitted   bool       `json:"submitted"`
	SubmittedAt *time.Time `json:"submitted_at"`
}

// AssignmentGradesResponse lists per-student grades for one assignment.
type AssignmentGradesResponse struct {
	Assignment AssignmentResponse `json:"assignment"`
	ClassName  string             `json:"class_name"`
	Students   []StudentGradeRow  `json:"students"`
}

// HypotheticalAssignment is a synthetic, never-persisted assignment supplied
// by the client for a what-if projection.
type HypotheticalAssignment struct {
	ID    string  `json:"id"`
	Name  string  `json:"name" validate:"required"`
	Grade float64 `json:"grade" validate:"gte=0,lte=100"`
}

// WhatIfRequest asks for a grade projection over one class.
type WhatIfRequest struct {
	ClassID                 uint                     `json:"class_id" validate:"required,gt=0"`
	HypotheticalGrades      map[uint]float64         `json:"hypothetical_grades"`
	HypotheticalAssignments []HypotheticalAssignment `json:"hypothetical_assignments" validate:"dive"`
}

// What-if breakdown entry kinds. Real entries mirror persisted assignments;
// hypothetical entries exist only for the lifetime of the request.
const (
	WhatIfEntryReal         = "real"
	WhatIfEntryHypothetical = "hypothetical"
)

// WhatIfEntry is one row of the what-if breakdown. AssignmentID is set for
// real entries, SyntheticID for hypothetical ones.
type WhatIfEntry struct {
	Kind         string   `json:"kind"`
	AssignmentID *uint    `json:"assignment_id,omitempty"`
	SyntheticID  string   `json:"synthetic_id,omitempty"`
	Title        string   `json:"title"`
	Grade        *float64 `json:"grade"`
	Hypothetical *float64 `json:"hypothetical"`
}

// WhatIfResponse carries the current and projected averages plus the
// per-assignment breakdown for rendering an editable what-if table.
type WhatIfResponse struct {
	ClassName         string        `json:"class_name"`
	CurrentGrade      float64       `json:"current_grade"`
	ProjectedGrade    float64       `json:"projected_grade"`
	TotalAssignments  int           `json:"total_assignments"`
	GradedAssignments int           `json:"graded_assignments"`
	Entries           []WhatIfEntry `json:"entries"`
}
