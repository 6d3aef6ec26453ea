package dto

import (
	"encoding/json"
	"time"
)

// AssistantQueryRequest carries a free-form question for the AI assistant.
type AssistantQueryRequest struct {
	Question string `json:"question" validate:"required,min=2"`
}

// AssistantQueryResponse returns the assistant's plain-text answer.
type AssistantQueryResponse struct {
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// GenerateAssignmentRequest asks the assistant to draft assignment content.
type GenerateAssignmentRequest struct {
	Topic         string `json:"topic" validate:"required,min=2"`
	Type          string `json:"type" validate:"required,oneof=mcq essay"`
	Difficulty    string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	QuestionCount int    `json:"question_count" validate:"omitempty,gt=0,lte=50"`
}

// GenerateAssignmentResponse wraps the schema-validated generated content.
type GenerateAssignmentResponse struct {
	Content   json.RawMessage `json:"content"`
	Timestamp time.Time       `json:"timestamp"`
}
