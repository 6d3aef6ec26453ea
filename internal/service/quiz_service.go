package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lumio-edu/lumio-api/internal/dto"
	"github.com/lumio-edu/lumio-api/internal/models"
	"github.com/lumio-edu/lumio-api/internal/repository"
)

// ErrInvalidQuestion indicates a question payload violates the rules for its type.
var ErrInvalidQuestion = errors.New("invalid question")

// QuizService exposes quiz authoring and listing use cases.
type QuizService interface {
	Create(ctx context.Context, teacherID uint, payload dto.QuizCreateRequest) (dto.QuizResponse, error)
	AddQuestion(ctx context.Context, teacherID uint, payload dto.QuestionCreateRequest) (dto.QuestionResponse, error)
	Get(ctx context.Context, userID uint, role string, quizID uint) (dto.QuizResponse, error)
	ListByClass(ctx context.Context, userID uint, role string, classID uint) ([]dto.QuizResponse, error)
}

type quizService struct {
	quizzes   repository.QuizRepository
	classes   repository.ClassRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewQuizService builds a new quiz service.
func NewQuizService(quizzes repository.QuizRepository, classes repository.ClassRepository, validate *validator.Validate, logger zerolog.Logger) QuizService {
	return &quizService{
		quizzes:   quizzes,
		classes:   classes,
		validator: validate,
		logger:    logger.With().Str("component", "quiz_service").Logger(),
	}
}

func (s *quizService) Create(ctx context.Context, teacherID uint, payload dto.QuizCreateRequest) (dto.QuizResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuizResponse{}, err
	}

	class, err := s.classes.GetByID(ctx, payload.ClassID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizResponse{}, ErrClassNotFound
		}
		return dto.QuizResponse{}, err
	}
	if class.TeacherID != teacherID {
		return dto.QuizResponse{}, ErrNotClassOwner
	}

	quiz := models.Quiz{
		ClassID: payload.ClassID,
		Title:   payload.Title,
	}
	if payload.DueDate != nil && *payload.DueDate != "" {
		dueDate, err := time.Parse(time.RFC3339, *payload.DueDate)
		if err != nil {
			return dto.QuizResponse{}, fmt.Errorf("%w: %v", ErrInvalidDueDate, err)
		}
		quiz.DueDate = &dueDate
	}

	if err := s.quizzes.Create(ctx, &quiz); err != nil {
		return dto.QuizResponse{}, err
	}

	s.logger.Info().Uint("quiz_id", quiz.ID).Uint("class_id", class.ID).Msg("quiz created")
	return dto.NewQuizResponse(quiz), nil
}

func (s *quizService) AddQuestion(ctx context.Context, teacherID uint, payload dto.QuestionCreateRequest) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}
	if payload.Type == models.QuestionTypeMCQ {
		if len(payload.Options) < 2 {
			return dto.QuestionResponse{}, fmt.Errorf("%w: multiple choice questions need at least two options", ErrInvalidQuestion)
		}
		if payload.AnswerKey == "" {
			return dto.QuestionResponse{}, fmt.Errorf("%w: multiple choice questions need an answer key", ErrInvalidQuestion)
		}
	}

	quiz, err := s.quizzes.GetByID(ctx, payload.QuizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuestionResponse{}, ErrQuizNotFound
		}
		return dto.QuestionResponse{}, err
	}

	class, err := s.classes.GetByID(ctx, quiz.ClassID)
	if err != nil {
		return dto.QuestionResponse{}, err
	}
	if class.TeacherID != teacherID {
		return dto.QuestionResponse{}, ErrNotClassOwner
	}

	question := models.Question{
		QuizID:    payload.QuizID,
		Prompt:    payload.Prompt,
		Type:      payload.Type,
		AnswerKey: payload.AnswerKey,
	}
	if len(payload.Options) > 0 {
		options, err := json.Marshal(payload.Options)
		if err != nil {
			return dto.QuestionResponse{}, err
		}
		question.Options = datatypes.JSON(options)
	}

	if err := s.quizzes.AddQuestion(ctx, &question); err != nil {
		return dto.QuestionResponse{}, err
	}

	return dto.NewQuestionResponse(question), nil
}

func (s *quizService) Get(ctx context.Context, userID uint, role string, quizID uint) (dto.QuizResponse, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizResponse{}, ErrQuizNotFound
		}
		return dto.QuizResponse{}, err
	}

	class, err := s.classes.GetByID(ctx, quiz.ClassID)
	if err != nil {
		return dto.QuizResponse{}, err
	}

	isOwner := role == models.RoleTeacher && class.TeacherID == userID
	if !isOwner && role != models.RoleAdmin {
		enrolled, err := s.classes.IsEnrolled(ctx, userID, quiz.ClassID)
		if err != nil {
			return dto.QuizResponse{}, err
		}
		if !enrolled {
			return dto.QuizResponse{}, ErrNotEnrolled
		}
	}

	response := dto.NewQuizResponse(quiz)
	if !isOwner && role != models.RoleAdmin {
		stripAnswerKeys(&response)
	}
	return response, nil
}

func (s *quizService) ListByClass(ctx context.Context, userID uint, role string, classID uint) ([]dto.QuizResponse, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	isOwner := role == models.RoleTeacher && class.TeacherID == userID
	if !isOwner && role != models.RoleAdmin {
		enrolled, err := s.classes.IsEnrolled(ctx, userID, classID)
		if err != nil {
			return nil, err
		}
		if !enrolled {
			return nil, ErrNotEnrolled
		}
	}

	quizzes, err := s.quizzes.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	responses := dto.NewQuizResponseSlice(quizzes)
	if !isOwner && role != models.RoleAdmin {
		for i := range responses {
			stripAnswerKeys(&responses[i])
		}
	}
	return responses, nil
}

// stripAnswerKeys hides the expected answers from students.
func stripAnswerKeys(quiz *dto.QuizResponse) {
	for i := range quiz.Questions {
		quiz.Questions[i].AnswerKey = ""
	}
}
