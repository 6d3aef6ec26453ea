package ai

import (
	"context"
	"errors"
)

// ErrServiceUnavailable indicates the upstream model could not be reached.
var ErrServiceUnavailable = errors.New("ai service unavailable")

// GradingInput contains the artefacts needed to grade a student submission.
type GradingInput struct {
	AssignmentTitle       string
	AssignmentDescription string
	StudentAnswer         string
	MaxPoints             float64
}

// GradingResult is the structured feedback returned by the AI grader.
type GradingResult struct {
	Grade    float64 `json:"grade"`
	Feedback string  `json:"feedback"`
}

// Grader describes an AI model capable of grading student submissions.
type Grader interface {
	Grade(ctx context.Context, input GradingInput) (GradingResult, error)
}

// Assistant describes an AI model capable of free-form chat completion.
type Assistant interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
