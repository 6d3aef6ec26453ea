package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/lumio-edu/lumio-api/internal/dto"
	"github.com/lumio-edu/lumio-api/internal/models"
	"github.com/lumio-edu/lumio-api/internal/repository"
)

var (
	// ErrClassNotFound indicates the requested class does not exist.
	ErrClassNotFound = errors.New("class not found")
	// ErrNotClassOwner indicates the caller does not own the class.
	ErrNotClassOwner = errors.New("not the class teacher")
	// ErrNotEnrolled indicates the student is not enrolled in the class.
	ErrNotEnrolled = errors.New("not enrolled in class")
	// ErrInvalidJoinCode indicates no class matches the supplied code.
	ErrInvalidJoinCode = errors.New("invalid join code")
	// ErrNotAStudent indicates the target user cannot be enrolled.
	ErrNotAStudent = errors.New("user is not a student")
)

// ClassService exposes class and enrollment use cases.
type ClassService interface {
	Create(ctx context.Context, teacherID uint, payload dto.ClassCreateRequest) (dto.ClassResponse, error)
	Get(ctx context.Context, userID uint, role string, classID uint) (dto.ClassResponse, error)
	ListForUser(ctx context.Context, userID uint, role string) ([]dto.ClassResponse, error)
	Join(ctx context.Context, studentID uint, payload dto.ClassJoinRequest) (dto.ClassJoinResponse, error)
	AddStudent(ctx context.Context, teacherID, classID uint, payload dto.ClassAddStudentRequest) error
	RemoveStudent(ctx context.Context, teacherID, classID, studentID uint) error
	Delete(ctx context.Context, teacherID, classID uint) error
}

type classService struct {
	classes   repository.ClassRepository
	users     repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewClassService builds a new class service.
func NewClassService(classes repository.ClassRepository, users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) ClassService {
	return &classService{
		classes:   classes,
		users:     users,
		validator: validate,
		logger:    logger.With().Str("component", "class_service").Logger(),
	}
}

func (s *classService) Create(ctx context.Context, teacherID uint, payload dto.ClassCreateRequest) (dto.ClassResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassResponse{}, err
	}

	code, err := generateJoinCode()
	if err != nil {
		return dto.ClassResponse{}, err
	}

	class := models.Class{
		Name:      payload.Name,
		JoinCode:  code,
		TeacherID: teacherID,
	}
	if err := s.classes.Create(ctx, &class); err != nil {
		return dto.ClassResponse{}, err
	}

	s.logger.Info().Uint("class_id", class.ID).Uint("teacher_id", teacherID).Msg("class created")

	response := dto.NewClassResponse(class)
	response.JoinCode = class.JoinCode
	return response, nil
}

func (s *classService) Get(ctx context.Context, userID uint, role string, classID uint) (dto.ClassResponse, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, ErrClassNotFound
		}
		return dto.ClassResponse{}, err
	}

	isOwner := role == models.RoleTeacher && class.TeacherID == userID
	if !isOwner && role != models.RoleAdmin {
		enrolled, err := s.classes.IsEnrolled(ctx, userID, classID)
		if err != nil {
			return dto.ClassResponse{}, err
		}
		if !enrolled {
			return dto.ClassResponse{}, ErrNotEnrolled
		}
	}

	response := dto.NewClassResponse(class)
	if isOwner || role == models.RoleAdmin {
		roster, err := s.classes.Roster(ctx, classID)
		if err != nil {
			return dto.ClassResponse{}, err
		}
		response.Students = dto.NewUserPublicSlice(roster)
	}
	if isOwner {
		response.JoinCode = class.JoinCode
	}
	return response, nil
}

func (s *classService) ListForUser(ctx context.Context, userID uint, role string) ([]dto.ClassResponse, error) {
	switch role {
	case models.RoleTeacher:
		classes, err := s.classes.ListByTeacher(ctx, userID)
		if err != nil {
			return nil, err
		}
		responses := make([]dto.ClassResponse, 0, len(classes))
		for _, class := range classes {
			response := dto.NewClassResponse(class)
			response.JoinCode = class.JoinCode
			responses = append(responses, response)
		}
		return responses, nil
	case models.RoleStudent:
		classes, err := s.classes.ListByStudent(ctx, userID)
		if err != nil {
			return nil, err
		}
		return dto.NewClassResponseSlice(classes), nil
	default:
		return []dto.ClassResponse{}, nil
	}
}

func (s *classService) Join(ctx context.Context, studentID uint, payload dto.ClassJoinRequest) (dto.ClassJoinResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassJoinResponse{}, err
	}

	code := strings.ToLower(strings.TrimSpace(payload.Code))
	class, err := s.classes.GetByJoinCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassJoinResponse{}, ErrInvalidJoinCode
		}
		return dto.ClassJoinResponse{}, err
	}

	if err := s.classes.Enroll(ctx, studentID, class.ID); err != nil {
		return dto.ClassJoinResponse{}, err
	}

	s.logger.Info().Uint("class_id", class.ID).Uint("student_id", studentID).Msg("student joined class")

	return dto.ClassJoinResponse{Joined: true, ClassName: class.Name}, nil
}

func (s *classService) AddStudent(ctx context.Context, teacherID, classID uint, payload dto.ClassAddStudentRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		return err
	}
	if class.TeacherID != teacherID {
		return ErrNotClassOwner
	}

	student, err := s.users.GetByID(ctx, payload.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !student.IsStudent() {
		return ErrNotAStudent
	}

	if err := s.classes.Enroll(ctx, student.ID, classID); err != nil {
		return err
	}

	s.logger.Info().Uint("class_id", classID).Uint("student_id", student.ID).Msg("student enrolled by teacher")
	return nil
}

func (s *classService) RemoveStudent(ctx context.Context, teacherID, classID, studentID uint) error {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		return err
	}
	if class.TeacherID != teacherID {
		return ErrNotClassOwner
	}

	if err := s.classes.Unenroll(ctx, studentID, classID); err != nil {
		return err
	}

	s.logger.Info().Uint("class_id", classID).Uint("student_id", studentID).Msg("student removed from class")
	return nil
}

func (s *classService) Delete(ctx context.Context, teacherID, classID uint) error {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		return err
	}
	if class.TeacherID != teacherID {
		return ErrNotClassOwner
	}

	if err := s.classes.Delete(ctx, classID); err != nil {
		return err
	}

	s.logger.Info().Uint("class_id", classID).Msg("class deleted")
	return nil
}

// generateJoinCode produces a six character lowercase hex code.
func generateJoinCode() (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate join code: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
