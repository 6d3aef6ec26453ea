package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/lumio-edu/lumio-api/internal/dto"
	"github.com/lumio-edu/lumio-api/internal/models"
	"github.com/lumio-edu/lumio-api/internal/repository"
	"github.com/lumio-edu/lumio-api/pkg/ai"
)

var (
	// ErrAssistantNotConfigured indicates no AI backend is wired up.
	ErrAssistantNotConfigured = errors.New("assistant is not configured")
	// ErrGeneratedContentInvalid indicates the model produced content that
	// does not match the expected shape.
	ErrGeneratedContentInvalid = errors.New("generated content failed validation")
)

const mcqContentSchema = `{
	"type": "object",
	"required": ["questions"],
	"properties": {
		"questions": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["prompt", "options", "answer"],
				"properties": {
					"prompt": {"type": "string", "minLength": 1},
					"options": {"type": "array", "minItems": 2, "items": {"type": "string"}},
					"answer": {"type": "string", "minLength": 1}
				}
			}
		}
	}
}`

const essayContentSchema = `{
	"type": "object",
	"required": ["title", "description"],
	"properties": {
		"title": {"type": "string", "minLength": 1},
		"description": {"type": "string", "minLength": 1}
	}
}`

// AssistantService answers study questions with the caller's own grade
// context and drafts assignment content for teachers.
type AssistantService interface {
	Query(ctx context.Context, userID uint, role string, payload dto.AssistantQueryRequest) (dto.AssistantQueryResponse, error)
	GenerateAssignment(ctx context.Context, teacherID uint, payload dto.GenerateAssignmentRequest) (dto.GenerateAssignmentResponse, error)
}

type assistantService struct {
	assistant   ai.Assistant
	classes     repository.ClassRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	validator   *validator.Validate
	mcqSchema   *jsonschema.Schema
	essaySchema *jsonschema.Schema
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssistantService builds a new assistant service. assistant may be nil
// when no AI backend is configured.
func NewAssistantService(
	assistant ai.Assistant,
	classes repository.ClassRepository,
	assignments repository.AssignmentRepository,
	submissions repository.SubmissionRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) (AssistantService, error) {
	mcqSchema, err := compileSchema("mcq.schema.json", mcqContentSchema)
	if err != nil {
		return nil, err
	}
	essaySchema, err := compileSchema("essay.schema.json", essayContentSchema)
	if err != nil {
		return nil, err
	}

	return &assistantService{
		assistant:   assistant,
		classes:     classes,
		assignments: assignments,
		submissions: submissions,
		validator:   validate,
		mcqSchema:   mcqSchema,
		essaySchema: essaySchema,
		logger:      logger.With().Str("component", "assistant_service").Logger(),
		now:         time.Now,
	}, nil
}

func compileSchema(name, raw string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

func (s *assistantService) Query(ctx context.Context, userID uint, role string, payload dto.AssistantQueryRequest) (dto.AssistantQueryResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssistantQueryResponse{}, err
	}
	if s.assistant == nil {
		return dto.AssistantQueryResponse{}, ErrAssistantNotConfigured
	}

	contextBlock, err := s.buildUserContext(ctx, userID, role)
	if err != nil {
		return dto.AssistantQueryResponse{}, err
	}

	system := "You are a helpful school assistant. Answer using the context about the " +
		"user's classes and grades when relevant. Keep answers short and concrete."
	user := contextBlock + "\n\nQuestion: " + payload.Question

	answer, err := s.assistant.Complete(ctx, system, user)
	if err != nil {
		if errors.Is(err, ai.ErrServiceUnavailable) {
			return dto.AssistantQueryResponse{}, ErrGradingServiceUnavailable
		}
		return dto.AssistantQueryResponse{}, err
	}

	return dto.AssistantQueryResponse{Response: answer, Timestamp: s.now().UTC()}, nil
}

// GenerateAssignment asks the model for quiz or essay content and verifies
// the result against a JSON schema before handing it back.
func (s *assistantService) GenerateAssignment(ctx context.Context, teacherID uint, payload dto.GenerateAssignmentRequest) (dto.GenerateAssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GenerateAssignmentResponse{}, err
	}
	if s.assistant == nil {
		return dto.GenerateAssignmentResponse{}, ErrAssistantNotConfigured
	}

	difficulty := payload.Difficulty
	if difficulty == "" {
		difficulty = "medium"
	}
	count := payload.QuestionCount
	if count == 0 {
		count = 5
	}

	var system, user string
	schema := s.essaySchema
	if payload.Type == "mcq" {
		schema = s.mcqSchema
		system = "You generate multiple choice quizzes. Respond with a JSON object " +
			`{"questions": [{"prompt": "...", "options": ["..."], "answer": "..."}]}. ` +
			"The answer must be one of the options. No other text."
		user = fmt.Sprintf("Create %d %s questions about: %s", count, difficulty, payload.Topic)
	} else {
		system = "You generate essay assignments. Respond with a JSON object " +
			`{"title": "...", "description": "..."}. No other text.`
		user = fmt.Sprintf("Create a %s difficulty essay assignment about: %s", difficulty, payload.Topic)
	}

	raw, err := s.assistant.Complete(ctx, system, user)
	if err != nil {
		if errors.Is(err, ai.ErrServiceUnavailable) {
			return dto.GenerateAssignmentResponse{}, ErrGradingServiceUnavailable
		}
		return dto.GenerateAssignmentResponse{}, err
	}

	var content interface{}
	if err := json.Unmarshal([]byte(raw), &content); err != nil {
		s.logger.Warn().Err(err).Msg("generated content is not valid json")
		return dto.GenerateAssignmentResponse{}, ErrGeneratedContentInvalid
	}
	if err := schema.Validate(content); err != nil {
		s.logger.Warn().Err(err).Str("type", payload.Type).Msg("generated content failed schema validation")
		return dto.GenerateAssignmentResponse{}, ErrGeneratedContentInvalid
	}

	s.logger.Info().Uint("teacher_id", teacherID).Str("type", payload.Type).Msg("assignment content generated")

	return dto.GenerateAssignmentResponse{
		Content:   json.RawMessage(raw),
		Timestamp: s.now().UTC(),
	}, nil
}

// buildUserContext summarises the caller's classes and grades for the prompt.
// Student averages here weight each submission by the assignment's point
// value, matching how students reason about heavier assignments.
func (s *assistantService) buildUserContext(ctx context.Context, userID uint, role string) (string, error) {
	builder := strings.Builder{}

	switch role {
	case models.RoleStudent:
		builder.WriteString("Context: you are helping a student.\n")
		classes, err := s.classes.ListByStudent(ctx, userID)
		if err != nil {
			return "", err
		}
		for _, class := range classes {
			assignments, err := s.assignments.ListByClass(ctx, class.ID)
			if err != nil {
				return "", err
			}
			submissions, err := s.submissions.ListForAssignments(ctx, assignmentIDs(assignments), userID)
			if err != nil {
				return "", err
			}

			pointsByAssignment := make(map[uint]float64, len(assignments))
			for _, assignment := range assignments {
				pointsByAssignment[assignment.ID] = assignment.Points
			}

			var weightedSum, weightTotal float64
			for _, submission := range submissions {
				if submission.Grade == nil || submission.AssignmentID == nil {
					continue
				}
				weight := pointsByAssignment[*submission.AssignmentID]
				if weight <= 0 {
					weight = models.DefaultAssignmentPoints
				}
				weightedSum += *submission.Grade * weight
				weightTotal += weight
			}

			if weightTotal > 0 {
				fmt.Fprintf(&builder, "- Class %q: weighted average %.1f%%, %d assignments\n",
					class.Name, weightedSum/weightTotal, len(assignments))
			} else {
				fmt.Fprintf(&builder, "- Class %q: no grades yet, %d assignments\n", class.Name, len(assignments))
			}
		}
	case models.RoleTeacher:
		builder.WriteString("Context: you are helping a teacher.\n")
		classes, err := s.classes.ListByTeacher(ctx, userID)
		if err != nil {
			return "", err
		}
		for _, class := range classes {
			assignments, err := s.assignments.ListByClass(ctx, class.ID)
			if err != nil {
				return "", err
			}
			roster, err := s.classes.Roster(ctx, class.ID)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&builder, "- Class %q: %d students, %d assignments\n",
				class.Name, len(roster), len(assignments))
		}
	default:
		builder.WriteString("Context: you are helping a school administrator.\n")
	}

	return builder.String(), nil
}
