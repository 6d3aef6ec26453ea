package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission is a student's single answer record for an assignment or a quiz.
// A grade, when present, is a percentage in [0,100]; absent means ungraded.
type Submission struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	AssignmentID *uint          `gorm:"uniqueIndex:idx_submission_student_assignment" json:"assignment_id"`
	QuizID       *uint          `gorm:"index" json:"quiz_id"`
	StudentID    uint           `gorm:"not null;uniqueIndex:idx_submission_student_assignment" json:"student_id"`
	Answers      datatypes.JSON `json:"answers"`
	Grade        *float64       `json:"grade"`
	Feedback     string         `gorm:"type:text" json:"feedback"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Assignment   *Assignment    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment,omitempty"`
	Quiz         *Quiz          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"quiz,omitempty"`
	Student      User           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}

// IsGraded reports whether the submission carries a grade.
func (s Submission) IsGraded() bool {
	return s.Grade != nil
}
