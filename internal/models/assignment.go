package models

import "time"

// Submission types an assignment can accept.
const (
	SubmissionTypeText = "text"
	SubmissionTypeLink = "link"
)

// DefaultAssignmentPoints is the nominal weight of an assignment when none is given.
const DefaultAssignmentPoints = 100

// Assignment is a gradable unit of work belonging to a class.
type Assignment struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	ClassID        uint         `gorm:"not null;index" json:"class_id"`
	Title          string       `gorm:"size:255;not null" json:"title"`
	Description    string       `gorm:"type:text" json:"description"`
	DueDate        *time.Time   `json:"due_date"`
	Points         float64      `gorm:"not null;default:100" json:"points"`
	SubmissionType string       `gorm:"size:32;not null;default:text" json:"submission_type"`
	FileURL        string       `gorm:"size:512" json:"file_url"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	Class          Class        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"class"`
	Submissions    []Submission `json:"-"`
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return a.DueDate != nil && reference.After(*a.DueDate)
}
