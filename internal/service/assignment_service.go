package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/lumio-edu/lumio-api/internal/dto"
	"github.com/lumio-edu/lumio-api/internal/models"
	"github.com/lumio-edu/lumio-api/internal/repository"
)

var (
	// ErrAssignmentNotFound indicates the requested assignment does not exist.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrInvalidDueDate indicates the due date is malformed or in the past.
	ErrInvalidDueDate = errors.New("invalid due date")
)

// FileUploader abstracts uploading binary data and returning a URL.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// AssignmentService exposes assignment domain use cases.
type AssignmentService interface {
	Get(ctx context.Context, userID uint, role string, id uint) (dto.AssignmentResponse, error)
	ListByClass(ctx context.Context, userID uint, role string, classID uint) ([]dto.AssignmentResponse, error)
	ListForTeacher(ctx context.Context, teacherID uint) ([]dto.AssignmentResponse, error)
	Create(ctx context.Context, teacherID uint, payload dto.AssignmentCreateRequest, file *multipart.FileHeader) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, teacherID, id uint) error
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	classes     repository.ClassRepository
	notifier    Notifier
	validator   *validator.Validate
	uploader    FileUploader
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(assignments repository.AssignmentRepository, classes repository.ClassRepository, notifier Notifier, validate *validator.Validate, uploader FileUploader, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		classes:     classes,
		notifier:    notifier,
		validator:   validate,
		uploader:    uploader,
		sanitizer:   bluemonday.UGCPolicy(),
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

func (s *assignmentService) Get(ctx context.Context, userID uint, role string, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if err := s.authorizeClassAccess(ctx, userID, role, assignment.Class); err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) ListByClass(ctx context.Context, userID uint, role string, classID uint) ([]dto.AssignmentResponse, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	if err := s.authorizeClassAccess(ctx, userID, role, class); err != nil {
		return nil, err
	}

	assignments, err := s.assignments.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) ListForTeacher(ctx context.Context, teacherID uint) ([]dto.AssignmentResponse, error) {
	assignments, err := s.assignments.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) Create(ctx context.Context, teacherID uint, payload dto.AssignmentCreateRequest, file *multipart.FileHeader) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	class, err := s.classes.GetByID(ctx, payload.ClassID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrClassNotFound
		}
		return dto.AssignmentResponse{}, err
	}
	if class.TeacherID != teacherID {
		return dto.AssignmentResponse{}, ErrNotClassOwner
	}

	assignment := models.Assignment{
		ClassID:        payload.ClassID,
		Title:          payload.Title,
		Description:    s.sanitizer.Sanitize(payload.Description),
		Points:         payload.Points,
		SubmissionType: payload.SubmissionType,
	}
	if assignment.Points == 0 {
		assignment.Points = models.DefaultAssignmentPoints
	}
	if assignment.SubmissionType == "" {
		assignment.SubmissionType = models.SubmissionTypeText
	}

	if payload.DueDate != nil && *payload.DueDate != "" {
		dueDate, err := time.Parse(time.RFC3339, *payload.DueDate)
		if err != nil {
			return dto.AssignmentResponse{}, fmt.Errorf("%w: %v", ErrInvalidDueDate, err)
		}
		if !dueDate.After(s.now()) {
			return dto.AssignmentResponse{}, fmt.Errorf("%w: must be in the future", ErrInvalidDueDate)
		}
		assignment.DueDate = &dueDate
	}

	if file != nil {
		url, err := s.uploadFile(ctx, file)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.FileURL = url
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("class_id", class.ID).Msg("assignment created")

	if s.notifier != nil {
		message := fmt.Sprintf("New assignment %q in %s", assignment.Title, class.Name)
		if err := s.notifier.NotifyClass(ctx, class.ID, models.NotificationTypeAssignmentCreated, message); err != nil {
			s.logger.Warn().Err(err).Msg("failed to notify class about assignment")
		}
	}

	assignment.Class = class
	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Delete(ctx context.Context, teacherID, id uint) error {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}
	if assignment.Class.TeacherID != teacherID {
		return ErrNotClassOwner
	}

	if err := s.assignments.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	s.logger.Info().Uint("assignment_id", id).Msg("assignment deleted")
	return nil
}

func (s *assignmentService) authorizeClassAccess(ctx context.Context, userID uint, role string, class models.Class) error {
	if role == models.RoleAdmin {
		return nil
	}
	if role == models.RoleTeacher && class.TeacherID == userID {
		return nil
	}
	enrolled, err := s.classes.IsEnrolled(ctx, userID, class.ID)
	if err != nil {
		return err
	}
	if !enrolled {
		return ErrNotEnrolled
	}
	return nil
}

func (s *assignmentService) uploadFile(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if s.uploader == nil {
		return "", fmt.Errorf("file uploads are not configured")
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	url, err := s.uploader.Upload(ctx, file.Filename, src)
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return url, nil
}
