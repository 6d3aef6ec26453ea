package dto

import (
	"encoding/json"
	"time"

	"github.com/lumio-edu/lumio-api/internal/models"
)

// SubmissionCreateRequest carries a student's answer payload for an assignment.
type SubmissionCreateRequest struct {
	Answers json.RawMessage `json:"answers" validate:"required"`
}

// QuizSubmitRequest maps question identifiers to the student's chosen answers.
type QuizSubmitRequest struct {
	Answers map[string]string `json:"answers" validate:"required"`
}

// GradeUpdateRequest is used by teachers to grade or re-grade a submission.
type GradeUpdateRequest struct {
	Grade    *float64 `json:"grade" validate:"omitempty,gte=0,lte=100"`
	Feedback *string  `json:"feedback"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID           uint            `json:"id"`
	AssignmentID *uint           `json:"assignment_id"`
	QuizID       *uint           `json:"quiz_id"`
	StudentID    uint            `json:"student_id"`
	Answers      json.RawMessage `json:"answers"`
	Grade        *float64        `json:"grade"`
	Feedback     string          `json:"feedback"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Student      *UserPublic     `json:"student,omitempty"`
}

// StudentSubmissionRow pairs an enrolled student with their submission, if any.
type StudentSubmissionRow struct {
	Student    UserPublic          `json:"student"`
	Submission *SubmissionResponse `json:"submission"`
}

// AssignmentSubmissionsResponse lists every enrolled student with their
// submission for one assignment.
type AssignmentSubmissionsResponse struct {
	Assignment AssignmentResponse     `json:"assignment"`
	Students   []StudentSubmissionRow `json:"students"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		QuizID:       model.QuizID,
		StudentID:    model.StudentID,
		Answers:      json.RawMessage(model.Answers),
		Grade:        model.Grade,
		Feedback:     model.Feedback,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
	if model.Student.ID != 0 {
		response.Student = &UserPublic{ID: model.Student.ID, Name: model.Student.Name, Email: model.Student.Email}
	}
	return response
}
