package dto

import (
	"encoding/json"
	"time"

	"github.com/lumio-edu/lumio-api/internal/models"
)

// QuizCreateRequest is the payload for creating a quiz.
type QuizCreateRequest struct {
	ClassID uint    `json:"class_id" validate:"required,gt=0"`
	Title   string  `json:"title" validate:"required,min=2,max=255"`
	DueDate *string `json:"due_date"`
}

// QuestionCreateRequest adds a question to an existing quiz.
type QuestionCreateRequest struct {
	QuizID    uint     `json:"quiz_id" validate:"required,gt=0"`
	Prompt    string   `json:"prompt" validate:"required"`
	Type      string   `json:"type" validate:"required,oneof=MCQ SHORT"`
	Options   []string `json:"options" validate:"omitempty,min=2"`
	AnswerKey string   `json:"answer_key"`
}

// QuestionResponse is the question view returned to API clients.
type QuestionResponse struct {
	ID        uint            `json:"id"`
	QuizID    uint            `json:"quiz_id"`
	Prompt    string          `json:"prompt"`
	Type      string          `json:"type"`
	Options   json.RawMessage `json:"options"`
	AnswerKey string          `json:"answer_key,omitempty"`
}

// QuizResponse is the quiz view returned to API clients.
type QuizResponse struct {
	ID        uint               `json:"id"`
	ClassID   uint               `json:"class_id"`
	Title     string             `json:"title"`
	DueDate   *time.Time         `json:"due_date"`
	Questions []QuestionResponse `json:"questions"`
	CreatedAt time.Time          `json:"created_at"`
}

// NewQuestionResponse converts a Question model into a DTO.
func NewQuestionResponse(model models.Question) QuestionResponse {
	return QuestionResponse{
		ID:        model.ID,
		QuizID:    model.QuizID,
		Prompt:    model.Prompt,
		Type:      model.Type,
		Options:   json.RawMessage(model.Options),
		AnswerKey: model.AnswerKey,
	}
}

// NewQuizResponse converts a Quiz model into a DTO.
func NewQuizResponse(model models.Quiz) QuizResponse {
	questions := make([]QuestionResponse, 0, len(model.Questions))
	for _, question := range model.Questions {
		questions = append(questions, NewQuestionResponse(question))
	}
	return QuizResponse{
		ID:        model.ID,
		ClassID:   model.ClassID,
		Title:     model.Title,
		DueDate:   model.DueDate,
		Questions: questions,
		CreatedAt: model.CreatedAt,
	}
}

// NewQuizResponseSlice converts quiz models into DTOs.
func NewQuizResponseSlice(quizzes []models.Quiz) []QuizResponse {
	responses := make([]QuizResponse, 0, len(quizzes))
	for _, quiz := range quizzes {
		responses = append(responses, NewQuizResponse(quiz))
	}
	return responses
}
