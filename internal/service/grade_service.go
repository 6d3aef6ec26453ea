package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/lumio-edu/lumio-api/internal/dto"
	"github.com/lumio-edu/lumio-api/internal/models"
	"github.com/lumio-edu/lumio-api/internal/repository"
)

// GradeService exposes grade reporting and projection use cases.
type GradeService interface {
	Overview(ctx context.Context, userID uint, role string) (dto.GradeOverviewResponse, error)
	ClassGrades(ctx context.Context, userID uint, role string, classID uint) (dto.ClassGradesResponse, error)
	AssignmentGrades(ctx context.Context, teacherID, assignmentID uint) (dto.AssignmentGradesResponse, error)
	WhatIf(ctx context.Context, studentID uint, payload dto.WhatIfRequest) (dto.WhatIfResponse, error)
	InvalidateOverview(ctx context.Context, classID uint) error
}

type gradeService struct {
	classes     repository.ClassRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewGradeService builds a new grade service. cache may be nil in which case
// every overview is computed from the database.
func NewGradeService(
	classes repository.ClassRepository,
	assignments repository.AssignmentRepository,
	submissions repository.SubmissionRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
	validate *validator.Validate,
	logger zerolog.Logger,
) GradeService {
	return &gradeService{
		classes:     classes,
		assignments: assignments,
		submissions: submissions,
		cache:       cache,
		cacheTTL:    cacheTTL,
		validator:   validate,
		logger:      logger.With().Str("component", "grade_service").Logger(),
	}
}

func overviewCacheKey(userID uint) string {
	return fmt.Sprintf("grades:overview:user:%d", userID)
}

// Overview aggregates one summary row per class for the caller. Results are
// cached briefly since dashboards poll this endpoint.
func (s *gradeService) Overview(ctx context.Context, userID uint, role string) (dto.GradeOverviewResponse, error) {
	cacheKey := overviewCacheKey(userID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.GradeOverviewResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("user_id", userID).Msg("grade overview cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read grade overview cache")
		}
	}

	var response dto.GradeOverviewResponse
	var err error
	switch role {
	case models.RoleTeacher:
		response, err = s.teacherOverview(ctx, userID)
	default:
		response, err = s.studentOverview(ctx, userID)
	}
	if err != nil {
		return dto.GradeOverviewResponse{}, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store grade overview cache")
			}
		}
	}

	return response, nil
}

func (s *gradeService) studentOverview(ctx context.Context, studentID uint) (dto.GradeOverviewResponse, error) {
	classes, err := s.classes.ListByStudent(ctx, studentID)
	if err != nil {
		return dto.GradeOverviewResponse{}, err
	}

	summaries := make([]dto.ClassGradeSummary, 0, len(classes))
	for _, class := range classes {
		assignments, err := s.assignments.ListByClass(ctx, class.ID)
		if err != nil {
			return dto.GradeOverviewResponse{}, err
		}

		ids := assignmentIDs(assignments)
		submissions, err := s.submissions.ListForAssignments(ctx, ids, studentID)
		if err != nil {
			return dto.GradeOverviewResponse{}, err
		}

		var sum float64
		var count int
		for _, submission := range submissions {
			if submission.Grade != nil {
				sum += *submission.Grade
				count++
			}
		}

		summary := dto.ClassGradeSummary{
			ClassID:           class.ID,
			ClassName:         class.Name,
			TotalAssignments:  len(assignments),
			GradedAssignments: count,
		}
		if count > 0 {
			average := roundToTenth(sum / float64(count))
			summary.Average = &average
		}
		summaries = append(summaries, summary)
	}

	return dto.GradeOverviewResponse{Type: models.RoleStudent, Classes: summaries}, nil
}

func (s *gradeService) teacherOverview(ctx context.Context, teacherID uint) (dto.GradeOverviewResponse, error) {
	classes, err := s.classes.ListByTeacher(ctx, teacherID)
	if err != nil {
		return dto.GradeOverviewResponse{}, err
	}

	summaries := make([]dto.ClassGradeSummary, 0, len(classes))
	for _, class := range classes {
		assignments, err := s.assignments.ListByClass(ctx, class.ID)
		if err != nil {
			return dto.GradeOverviewResponse{}, err
		}

		roster, err := s.classes.Roster(ctx, class.ID)
		if err != nil {
			return dto.GradeOverviewResponse{}, err
		}

		graded, err := s.submissions.ListGradedByClass(ctx, class.ID)
		if err != nil {
			return dto.GradeOverviewResponse{}, err
		}

		var sum float64
		for _, submission := range graded {
			sum += *submission.Grade
		}

		summary := dto.ClassGradeSummary{
			ClassID:          class.ID,
			ClassName:        class.Name,
			TotalAssignments: len(assignments),
			TotalStudents:    len(roster),
			TotalGrades:      len(graded),
		}
		if len(graded) > 0 {
			average := roundToTenth(sum / float64(len(graded)))
			summary.Average = &average
		}
		summaries = append(summaries, summary)
	}

	return dto.GradeOverviewResponse{Type: models.RoleTeacher, Classes: summaries}, nil
}

// ClassGrades returns the per-assignment grade detail for one class. Students
// see their own submissions, teachers see pooled averages.
func (s *gradeService) ClassGrades(ctx context.Context, userID uint, role string, classID uint) (dto.ClassGradesResponse, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassGradesResponse{}, ErrClassNotFound
		}
		return dto.ClassGradesResponse{}, err
	}

	assignments, err := s.assignments.ListByClass(ctx, classID)
	if err != nil {
		return dto.ClassGradesResponse{}, err
	}

	if role == models.RoleTeacher || role == models.RoleAdmin {
		if role == models.RoleTeacher && class.TeacherID != userID {
			return dto.ClassGradesResponse{}, ErrNotClassOwner
		}
		return s.teacherClassGrades(ctx, class, assignments)
	}

	enrolled, err := s.classes.IsEnrolled(ctx, userID, classID)
	if err != nil {
		return dto.ClassGradesResponse{}, err
	}
	if !enrolled {
		return dto.ClassGradesResponse{}, ErrNotEnrolled
	}

	submissions, err := s.submissions.ListForAssignments(ctx, assignmentIDs(assignments), userID)
	if err != nil {
		return dto.ClassGradesResponse{}, err
	}

	byAssignment := make(map[uint]models.Submission, len(submissions))
	for _, submission := range submissions {
		if submission.AssignmentID != nil {
			byAssignment[*submission.AssignmentID] = submission
		}
	}

	entries := make([]dto.AssignmentGradeEntry, 0, len(assignments))
	for _, assignment := range assignments {
		entry := dto.AssignmentGradeEntry{
			AssignmentID: assignment.ID,
			Title:        assignment.Title,
			Description:  assignment.Description,
			DueDate:      assignment.DueDate,
		}
		if submission, ok := byAssignment[assignment.ID]; ok {
			entry.Grade = submission.Grade
			if submission.Feedback != "" {
				feedback := submission.Feedback
				entry.Feedback = &feedback
			}
			submittedAt := submission.CreatedAt
			entry.SubmittedAt = &submittedAt
		}
		entries = append(entries, entry)
	}

	return dto.ClassGradesResponse{
		Type:        models.RoleStudent,
		ClassName:   class.Name,
		Assignments: entries,
	}, nil
}

func (s *gradeService) teacherClassGrades(ctx context.Context, class models.Class, assignments []models.Assignment) (dto.ClassGradesResponse, error) {
	entries := make([]dto.AssignmentGradeEntry, 0, len(assignments))
	for _, assignment := range assignments {
		submissions, err := s.submissions.ListByAssignment(ctx, assignment.ID)
		if err != nil {
			return dto.ClassGradesResponse{}, err
		}

		var sum float64
		var count int
		for _, submission := range submissions {
			if submission.Grade != nil {
				sum += *submission.Grade
				count++
			}
		}

		entry := dto.AssignmentGradeEntry{
			AssignmentID:     assignment.ID,
			Title:            assignment.Title,
			Description:      assignment.Description,
			DueDate:          assignment.DueDate,
			TotalSubmissions: len(submissions),
		}
		if count > 0 {
			average := roundToTenth(sum / float64(count))
			entry.Average = &average
		}
		entries = append(entries, entry)
	}

	return dto.ClassGradesResponse{
		Type:        models.RoleTeacher,
		ClassName:   class.Name,
		Assignments: entries,
	}, nil
}

// AssignmentGrades lists every enrolled student with their grade standing for
// one assignment.
func (s *gradeService) AssignmentGrades(ctx context.Context, teacherID, assignmentID uint) (dto.AssignmentGradesResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentGradesResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentGradesResponse{}, err
	}
	if assignment.Class.TeacherID != teacherID {
		return dto.AssignmentGradesResponse{}, ErrNotClassOwner
	}

	roster, err := s.classes.Roster(ctx, assignment.ClassID)
	if err != nil {
		return dto.AssignmentGradesResponse{}, err
	}

	submissions, err := s.submissions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return dto.AssignmentGradesResponse{}, err
	}

	byStudent := make(map[uint]models.Submission, len(submissions))
	for _, submission := range submissions {
		byStudent[submission.StudentID] = submission
	}

	rows := make([]dto.StudentGradeRow, 0, len(roster))
	for _, student := range roster {
		row := dto.StudentGradeRow{
			Student: dto.UserPublic{ID: student.ID, Name: student.Name, Email: student.Email},
		}
		if submission, ok := byStudent[student.ID]; ok {
			row.Submitted = true
			row.Grade = submission.Grade
			if submission.Feedback != "" {
				feedback := submission.Feedback
				row.Feedback = &feedback
			}
			submittedAt := submission.CreatedAt
			row.SubmittedAt = &submittedAt
		}
		rows = append(rows, row)
	}

	return dto.AssignmentGradesResponse{
		Assignment: dto.NewAssignmentResponse(assignment),
		ClassName:  assignment.Class.Name,
		Students:   rows,
	}, nil
}

// WhatIf projects the student's class average under hypothetical grades. Real
// graded work contributes to both the current and projected averages and
// always wins over an override. Overrides apply only to ungraded assignments,
// where presence in the map counts even for a zero value; together with
// synthetic assignments they extend the projection only. Every hypothetical
// input is clamped to [0,100] before it enters the projected average.
func (s *gradeService) WhatIf(ctx context.Context, studentID uint, payload dto.WhatIfRequest) (dto.WhatIfResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.WhatIfResponse{}, err
	}

	class, err := s.classes.GetByID(ctx, payload.ClassID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.WhatIfResponse{}, ErrClassNotFound
		}
		return dto.WhatIfResponse{}, err
	}

	enrolled, err := s.classes.IsEnrolled(ctx, studentID, class.ID)
	if err != nil {
		return dto.WhatIfResponse{}, err
	}
	if !enrolled {
		return dto.WhatIfResponse{}, ErrNotEnrolled
	}

	assignments, err := s.assignments.ListByClass(ctx, class.ID)
	if err != nil {
		return dto.WhatIfResponse{}, err
	}

	submissions, err := s.submissions.ListForAssignments(ctx, assignmentIDs(assignments), studentID)
	if err != nil {
		return dto.WhatIfResponse{}, err
	}

	gradeByAssignment := make(map[uint]float64, len(submissions))
	for _, submission := range submissions {
		if submission.AssignmentID != nil && submission.Grade != nil {
			gradeByAssignment[*submission.AssignmentID] = *submission.Grade
		}
	}

	var currentSum, projectedSum float64
	var currentCount, projectedCount int
	entries := make([]dto.WhatIfEntry, 0, len(assignments)+len(payload.HypotheticalAssignments))

	for _, assignment := range assignments {
		assignmentID := assignment.ID
		entry := dto.WhatIfEntry{
			Kind:         dto.WhatIfEntryReal,
			AssignmentID: &assignmentID,
			Title:        assignment.Title,
		}

		if grade, graded := gradeByAssignment[assignment.ID]; graded {
			gradeValue := grade
			entry.Grade = &gradeValue
			currentSum += grade
			currentCount++
			projectedSum += grade
			projectedCount++
		} else if override, ok := payload.HypotheticalGrades[assignment.ID]; ok {
			overrideValue := clampPercent(override)
			entry.Hypothetical = &overrideValue
			projectedSum += overrideValue
			projectedCount++
		}

		entries = append(entries, entry)
	}

	for _, hypothetical := range payload.HypotheticalAssignments {
		gradeValue := clampPercent(hypothetical.Grade)
		entries = append(entries, dto.WhatIfEntry{
			Kind:         dto.WhatIfEntryHypothetical,
			SyntheticID:  hypothetical.ID,
			Title:        hypothetical.Name,
			Hypothetical: &gradeValue,
		})
		projectedSum += gradeValue
		projectedCount++
	}

	var current, projected float64
	if currentCount > 0 {
		current = currentSum / float64(currentCount)
	}
	if projectedCount > 0 {
		projected = projectedSum / float64(projectedCount)
	}

	return dto.WhatIfResponse{
		ClassName:         class.Name,
		CurrentGrade:      clampPercent(roundToTenth(current)),
		ProjectedGrade:    clampPercent(roundToTenth(projected)),
		TotalAssignments:  len(assignments),
		GradedAssignments: currentCount,
		Entries:           entries,
	}, nil
}

// InvalidateOverview drops the cached overviews of everyone affected by a
// grading write in the class.
func (s *gradeService) InvalidateOverview(ctx context.Context, classID uint) error {
	if s.cache == nil {
		return nil
	}

	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		return err
	}

	keys := []string{overviewCacheKey(class.TeacherID)}
	roster, err := s.classes.Roster(ctx, classID)
	if err != nil {
		return err
	}
	for _, student := range roster {
		keys = append(keys, overviewCacheKey(student.ID))
	}

	return s.cache.Del(ctx, keys...).Err()
}

func assignmentIDs(assignments []models.Assignment) []uint {
	ids := make([]uint, 0, len(assignments))
	for _, assignment := range assignments {
		ids = append(ids, assignment.ID)
	}
	return ids
}

// roundToTenth rounds half up to one decimal place.
func roundToTenth(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
