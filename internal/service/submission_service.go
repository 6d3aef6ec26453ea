package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lumio-edu/lumio-api/internal/dto"
	"github.com/lumio-edu/lumio-api/internal/models"
	"github.com/lumio-edu/lumio-api/internal/repository"
	"github.com/lumio-edu/lumio-api/pkg/ai"
)

var (
	// ErrSubmissionNotFound indicates the requested submission does not exist.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrNoAnswerContent indicates the submission has nothing gradable in it.
	ErrNoAnswerContent = errors.New("submission has no answer content")
	// ErrAIGradingNotConfigured indicates no AI grader is wired up.
	ErrAIGradingNotConfigured = errors.New("ai grading is not configured")
	// ErrGradingServiceUnavailable indicates the AI backend could not be reached.
	ErrGradingServiceUnavailable = errors.New("grading service unavailable")
	// ErrQuizNotFound indicates the requested quiz does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
)

// OverviewInvalidator drops cached grade overviews after grading writes.
type OverviewInvalidator interface {
	InvalidateOverview(ctx context.Context, classID uint) error
}

// SubmissionService exposes submission and grading use cases.
type SubmissionService interface {
	Submit(ctx context.Context, studentID, assignmentID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	SubmitQuiz(ctx context.Context, studentID, quizID uint, payload dto.QuizSubmitRequest) (dto.SubmissionResponse, error)
	GetMine(ctx context.Context, studentID, assignmentID uint) (dto.SubmissionResponse, error)
	ListForAssignment(ctx context.Context, teacherID, assignmentID uint) (dto.AssignmentSubmissionsResponse, error)
	Grade(ctx context.Context, teacherID, submissionID uint, payload dto.GradeUpdateRequest) (dto.SubmissionResponse, error)
	GradeWithAI(ctx context.Context, teacherID, submissionID uint) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	quizzes     repository.QuizRepository
	classes     repository.ClassRepository
	grader      ai.Grader
	notifier    Notifier
	invalidator OverviewInvalidator
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewSubmissionService builds a new submission service. grader may be nil when
// no AI backend is configured.
func NewSubmissionService(
	submissions repository.SubmissionRepository,
	assignments repository.AssignmentRepository,
	quizzes repository.QuizRepository,
	classes repository.ClassRepository,
	grader ai.Grader,
	notifier Notifier,
	invalidator OverviewInvalidator,
	validate *validator.Validate,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		submissions: submissions,
		assignments: assignments,
		quizzes:     quizzes,
		classes:     classes,
		grader:      grader,
		notifier:    notifier,
		invalidator: invalidator,
		validator:   validate,
		logger:      logger.With().Str("component", "submission_service").Logger(),
	}
}

// Submit stores a student's answers. Resubmitting replaces the previous
// answers and clears any grade already assigned.
func (s *submissionService) Submit(ctx context.Context, studentID, assignmentID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	enrolled, err := s.classes.IsEnrolled(ctx, studentID, assignment.ClassID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if !enrolled {
		return dto.SubmissionResponse{}, ErrNotEnrolled
	}

	existing, err := s.submissions.GetByAssignmentAndStudent(ctx, assignmentID, studentID)
	if err == nil {
		existing.Answers = datatypes.JSON(payload.Answers)
		existing.Grade = nil
		existing.Feedback = ""
		if err := s.submissions.Update(ctx, &existing); err != nil {
			return dto.SubmissionResponse{}, err
		}
		s.logger.Info().Uint("submission_id", existing.ID).Msg("submission replaced")
		return dto.NewSubmissionResponse(existing), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.SubmissionResponse{}, err
	}

	submission := models.Submission{
		AssignmentID: &assignmentID,
		StudentID:    studentID,
		Answers:      datatypes.JSON(payload.Answers),
	}
	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().Uint("submission_id", submission.ID).Uint("assignment_id", assignmentID).Msg("submission created")
	return dto.NewSubmissionResponse(submission), nil
}

// SubmitQuiz stores quiz answers and auto-grades multiple choice questions.
// Quizzes without any multiple choice questions stay ungraded.
func (s *submissionService) SubmitQuiz(ctx context.Context, studentID, quizID uint, payload dto.QuizSubmitRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrQuizNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	enrolled, err := s.classes.IsEnrolled(ctx, studentID, quiz.ClassID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if !enrolled {
		return dto.SubmissionResponse{}, ErrNotEnrolled
	}

	answers, err := json.Marshal(payload.Answers)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	grade := scoreQuiz(quiz, payload.Answers)

	existing, err := s.submissions.GetByQuizAndStudent(ctx, quizID, studentID)
	if err == nil {
		existing.Answers = datatypes.JSON(answers)
		existing.Grade = grade
		if err := s.submissions.Update(ctx, &existing); err != nil {
			return dto.SubmissionResponse{}, err
		}
		return dto.NewSubmissionResponse(existing), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.SubmissionResponse{}, err
	}

	submission := models.Submission{
		QuizID:    &quizID,
		StudentID: studentID,
		Answers:   datatypes.JSON(answers),
		Grade:     grade,
	}
	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().Uint("submission_id", submission.ID).Uint("quiz_id", quizID).Msg("quiz submitted")
	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) GetMine(ctx context.Context, studentID, assignmentID uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByAssignmentAndStudent(ctx, assignmentID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(submission), nil
}

// ListForAssignment returns every enrolled student paired with their
// submission so teachers can see who has not handed anything in.
func (s *submissionService) ListForAssignment(ctx context.Context, teacherID, assignmentID uint) (dto.AssignmentSubmissionsResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentSubmissionsResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentSubmissionsResponse{}, err
	}
	if assignment.Class.TeacherID != teacherID {
		return dto.AssignmentSubmissionsResponse{}, ErrNotClassOwner
	}

	roster, err := s.classes.Roster(ctx, assignment.ClassID)
	if err != nil {
		return dto.AssignmentSubmissionsResponse{}, err
	}

	submissions, err := s.submissions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return dto.AssignmentSubmissionsResponse{}, err
	}

	byStudent := make(map[uint]models.Submission, len(submissions))
	for _, submission := range submissions {
		byStudent[submission.StudentID] = submission
	}

	rows := make([]dto.StudentSubmissionRow, 0, len(roster))
	for _, student := range roster {
		row := dto.StudentSubmissionRow{
			Student: dto.UserPublic{ID: student.ID, Name: student.Name, Email: student.Email},
		}
		if submission, ok := byStudent[student.ID]; ok {
			response := dto.NewSubmissionResponse(submission)
			row.Submission = &response
		}
		rows = append(rows, row)
	}

	return dto.AssignmentSubmissionsResponse{
		Assignment: dto.NewAssignmentResponse(assignment),
		Students:   rows,
	}, nil
}

// Grade records a manual grade or feedback update from the teacher.
func (s *submissionService) Grade(ctx context.Context, teacherID, submissionID uint, payload dto.GradeUpdateRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.loadOwnedSubmission(ctx, teacherID, submissionID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if payload.Grade != nil {
		submission.Grade = payload.Grade
	}
	if payload.Feedback != nil {
		submission.Feedback = *payload.Feedback
	}

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().Uint("submission_id", submission.ID).Msg("submission graded")
	s.afterGrading(ctx, submission)

	return dto.NewSubmissionResponse(submission), nil
}

// GradeWithAI grades the submission through the configured AI backend and
// persists the resulting grade and feedback.
func (s *submissionService) GradeWithAI(ctx context.Context, teacherID, submissionID uint) (dto.SubmissionResponse, error) {
	if s.grader == nil {
		return dto.SubmissionResponse{}, ErrAIGradingNotConfigured
	}

	submission, err := s.loadOwnedSubmission(ctx, teacherID, submissionID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if submission.Assignment == nil {
		return dto.SubmissionResponse{}, ErrNoAnswerContent
	}

	answer := flattenAnswers(submission.Answers)
	if answer == "" {
		return dto.SubmissionResponse{}, ErrNoAnswerContent
	}

	maxPoints := submission.Assignment.Points
	if maxPoints <= 0 {
		maxPoints = models.DefaultAssignmentPoints
	}

	result, err := s.grader.Grade(ctx, ai.GradingInput{
		AssignmentTitle:       submission.Assignment.Title,
		AssignmentDescription: submission.Assignment.Description,
		StudentAnswer:         answer,
		MaxPoints:             maxPoints,
	})
	if err != nil {
		if errors.Is(err, ai.ErrServiceUnavailable) {
			return dto.SubmissionResponse{}, ErrGradingServiceUnavailable
		}
		return dto.SubmissionResponse{}, err
	}

	submission.Grade = &result.Grade
	submission.Feedback = result.Feedback
	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().Uint("submission_id", submission.ID).Float64("grade", result.Grade).Msg("submission graded by ai")
	s.afterGrading(ctx, submission)

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) loadOwnedSubmission(ctx context.Context, teacherID, submissionID uint) (models.Submission, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Submission{}, ErrSubmissionNotFound
		}
		return models.Submission{}, err
	}
	if submission.Assignment == nil || submission.Assignment.Class.TeacherID != teacherID {
		return models.Submission{}, ErrNotClassOwner
	}
	return submission, nil
}

func (s *submissionService) afterGrading(ctx context.Context, submission models.Submission) {
	if s.notifier != nil && submission.Assignment != nil {
		message := fmt.Sprintf("Your submission for %q has been graded", submission.Assignment.Title)
		if err := s.notifier.Notify(ctx, submission.StudentID, models.NotificationTypeGraded, message); err != nil {
			s.logger.Warn().Err(err).Msg("failed to notify student about grade")
		}
	}
	if s.invalidator != nil && submission.Assignment != nil {
		if err := s.invalidator.InvalidateOverview(ctx, submission.Assignment.ClassID); err != nil {
			s.logger.Warn().Err(err).Msg("failed to invalidate grade overview cache")
		}
	}
}

// scoreQuiz computes the percentage of correct multiple choice answers. A nil
// grade is returned when the quiz has no multiple choice questions.
func scoreQuiz(quiz models.Quiz, answers map[string]string) *float64 {
	var total, correct int
	for _, question := range quiz.Questions {
		if question.Type != models.QuestionTypeMCQ {
			continue
		}
		total++
		key := strconv.FormatUint(uint64(question.ID), 10)
		if answer, ok := answers[key]; ok {
			if strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(question.AnswerKey)) {
				correct++
			}
		}
	}
	if total == 0 {
		return nil
	}
	grade := float64(correct) / float64(total) * 100
	return &grade
}

// flattenAnswers joins the text and link fields of the answer payload into a
// single gradable string. Unknown payload shapes fall back to the raw JSON.
func flattenAnswers(raw datatypes.JSON) string {
	if len(raw) == 0 {
		return ""
	}

	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "{") {
		var structured struct {
			Text string `json:"text"`
			Link string `json:"link"`
		}
		if err := json.Unmarshal(raw, &structured); err == nil {
			parts := make([]string, 0, 2)
			if text := strings.TrimSpace(structured.Text); text != "" {
				parts = append(parts, text)
			}
			if link := strings.TrimSpace(structured.Link); link != "" {
				parts = append(parts, link)
			}
			return strings.Join(parts, "\n\n")
		}
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return strings.TrimSpace(plain)
	}

	return trimmed
}
