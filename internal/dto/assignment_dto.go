package dto

import (
	"time"

	"github.com/lumio-edu/lumio-api/internal/models"
)

// AssignmentCreateRequest is the payload for creating an assignment.
type AssignmentCreateRequest struct {
	ClassID        uint    `json:"class_id" validate:"required,gt=0"`
	Title          string  `json:"title" validate:"required,min=2,max=255"`
	Description    string  `json:"description"`
	DueDate        *string `json:"due_date" validate:"omitempty"`
	Points         float64 `json:"points" validate:"omitempty,gt=0,lte=1000"`
	SubmissionType string  `json:"submission_type" validate:"omitempty,oneof=text link"`
}

// AssignmentResponse is returned to API clients when viewing assignments.
type AssignmentResponse struct {
	ID             uint       `json:"id"`
	ClassID        uint       `json:"class_id"`
	ClassName      string     `json:"class_name,omitempty"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	DueDate        *time.Time `json:"due_date"`
	Points         float64    `json:"points"`
	SubmissionType string     `json:"submission_type"`
	FileURL        string     `json:"file_url,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewAssignmentResponse converts an Assignment model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	response := AssignmentResponse{
		ID:             model.ID,
		ClassID:        model.ClassID,
		Title:          model.Title,
		Description:    model.Description,
		DueDate:        model.DueDate,
		Points:         model.Points,
		SubmissionType: model.SubmissionType,
		FileURL:        model.FileURL,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
	if model.Class.ID != 0 {
		response.ClassName = model.Class.Name
	}
	return response
}

// NewAssignmentResponseSlice converts assignment models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}
	return responses
}
