package service

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/lumio-edu/lumio-api/internal/models"
)

type enrollmentKey struct {
	studentID uint
	classID   uint
}

// memoryStore backs the in-memory repository fakes shared by the service tests.
type memoryStore struct {
	users         map[uint]models.User
	classes       map[uint]models.Class
	enrollments   map[enrollmentKey]bool
	assignments   map[uint]models.Assignment
	submissions   map[uint]models.Submission
	quizzes       map[uint]models.Quiz
	notifications map[uint]models.Notification
	nextID        uint
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:         make(map[uint]models.User),
		classes:       make(map[uint]models.Class),
		enrollments:   make(map[enrollmentKey]bool),
		assignments:   make(map[uint]models.Assignment),
		submissions:   make(map[uint]models.Submission),
		quizzes:       make(map[uint]models.Quiz),
		notifications: make(map[uint]models.Notification),
		nextID:        1,
	}
}

func (m *memoryStore) id() uint {
	id := m.nextID
	m.nextID++
	return id
}

func (m *memoryStore) addUser(name, email, role string) models.User {
	user := models.User{ID: m.id(), Name: name, Email: email, Role: role}
	m.users[user.ID] = user
	return user
}

func (m *memoryStore) addClass(name string, teacherID uint) models.Class {
	class := models.Class{ID: m.id(), Name: name, JoinCode: "abc123", TeacherID: teacherID}
	m.classes[class.ID] = class
	return class
}

func (m *memoryStore) addAssignment(classID uint, title string, points float64) models.Assignment {
	assignment := models.Assignment{
		ID:             m.id(),
		ClassID:        classID,
		Title:          title,
		Points:         points,
		SubmissionType: models.SubmissionTypeText,
	}
	m.assignments[assignment.ID] = assignment
	return assignment
}

func (m *memoryStore) enroll(studentID, classID uint) {
	m.enrollments[enrollmentKey{studentID, classID}] = true
}

func (m *memoryStore) addGradedSubmission(assignmentID, studentID uint, grade float64) models.Submission {
	submission := models.Submission{
		ID:           m.id(),
		AssignmentID: &assignmentID,
		StudentID:    studentID,
		Grade:        &grade,
		CreatedAt:    time.Now(),
	}
	m.submissions[submission.ID] = submission
	return submission
}

// --- user repository fake ---

type fakeUserRepo struct{ store *memoryStore }

func (f *fakeUserRepo) List(context.Context) ([]models.User, error) {
	users := make([]models.User, 0, len(f.store.users))
	for _, user := range f.store.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (f *fakeUserRepo) ListByRole(_ context.Context, role string) ([]models.User, error) {
	users := make([]models.User, 0)
	for _, user := range f.store.users {
		if user.Role == role {
			users = append(users, user)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uint) (models.User, error) {
	user, ok := f.store.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (models.User, error) {
	for _, user := range f.store.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	user.ID = f.store.id()
	f.store.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) UpsertByEmail(ctx context.Context, user *models.User) (bool, error) {
	if existing, err := f.GetByEmail(ctx, user.Email); err == nil {
		user.ID = existing.ID
		return false, nil
	}
	return true, f.Create(ctx, user)
}

func (f *fakeUserRepo) Delete(_ context.Context, id uint) error {
	if _, ok := f.store.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.store.users, id)
	return nil
}

// --- class repository fake ---

type fakeClassRepo struct{ store *memoryStore }

func (f *fakeClassRepo) GetByID(_ context.Context, id uint) (models.Class, error) {
	class, ok := f.store.classes[id]
	if !ok {
		return models.Class{}, gorm.ErrRecordNotFound
	}
	if teacher, ok := f.store.users[class.TeacherID]; ok {
		class.Teacher = teacher
	}
	return class, nil
}

func (f *fakeClassRepo) GetByJoinCode(_ context.Context, code string) (models.Class, error) {
	for _, class := range f.store.classes {
		if class.JoinCode == code {
			return class, nil
		}
	}
	return models.Class{}, gorm.ErrRecordNotFound
}

func (f *fakeClassRepo) ListByTeacher(_ context.Context, teacherID uint) ([]models.Class, error) {
	classes := make([]models.Class, 0)
	for _, class := range f.store.classes {
		if class.TeacherID == teacherID {
			classes = append(classes, class)
		}
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	return classes, nil
}

func (f *fakeClassRepo) ListByStudent(_ context.Context, studentID uint) ([]models.Class, error) {
	classes := make([]models.Class, 0)
	for key, active := range f.store.enrollments {
		if active && key.studentID == studentID {
			if class, ok := f.store.classes[key.classID]; ok {
				classes = append(classes, class)
			}
		}
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	return classes, nil
}

func (f *fakeClassRepo) Create(_ context.Context, class *models.Class) error {
	class.ID = f.store.id()
	f.store.classes[class.ID] = *class
	return nil
}

func (f *fakeClassRepo) Delete(_ context.Context, id uint) error {
	if _, ok := f.store.classes[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.store.classes, id)
	return nil
}

func (f *fakeClassRepo) IsEnrolled(_ context.Context, studentID, classID uint) (bool, error) {
	return f.store.enrollments[enrollmentKey{studentID, classID}], nil
}

func (f *fakeClassRepo) Enroll(_ context.Context, studentID, classID uint) error {
	f.store.enrollments[enrollmentKey{studentID, classID}] = true
	return nil
}

func (f *fakeClassRepo) Unenroll(_ context.Context, studentID, classID uint) error {
	delete(f.store.enrollments, enrollmentKey{studentID, classID})
	return nil
}

func (f *fakeClassRepo) Roster(_ context.Context, classID uint) ([]models.User, error) {
	students := make([]models.User, 0)
	for key, active := range f.store.enrollments {
		if active && key.classID == classID {
			if user, ok := f.store.users[key.studentID]; ok {
				students = append(students, user)
			}
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	return students, nil
}

// --- assignment repository fake ---

type fakeAssignmentRepo struct{ store *memoryStore }

func (f *fakeAssignmentRepo) GetByID(_ context.Context, id uint) (models.Assignment, error) {
	assignment, ok := f.store.assignments[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	if class, ok := f.store.classes[assignment.ClassID]; ok {
		assignment.Class = class
	}
	return assignment, nil
}

func (f *fakeAssignmentRepo) ListByClass(_ context.Context, classID uint) ([]models.Assignment, error) {
	assignments := make([]models.Assignment, 0)
	for _, assignment := range f.store.assignments {
		if assignment.ClassID == classID {
			assignments = append(assignments, assignment)
		}
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].ID < assignments[j].ID })
	return assignments, nil
}

func (f *fakeAssignmentRepo) ListByTeacher(_ context.Context, teacherID uint) ([]models.Assignment, error) {
	assignments := make([]models.Assignment, 0)
	for _, assignment := range f.store.assignments {
		if class, ok := f.store.classes[assignment.ClassID]; ok && class.TeacherID == teacherID {
			assignment.Class = class
			assignments = append(assignments, assignment)
		}
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].ID < assignments[j].ID })
	return assignments, nil
}

func (f *fakeAssignmentRepo) Create(_ context.Context, assignment *models.Assignment) error {
	assignment.ID = f.store.id()
	assignment.CreatedAt = time.Now()
	f.store.assignments[assignment.ID] = *assignment
	return nil
}

func (f *fakeAssignmentRepo) Delete(_ context.Context, id uint) error {
	if _, ok := f.store.assignments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.store.assignments, id)
	return nil
}

// --- submission repository fake ---

type fakeSubmissionRepo struct{ store *memoryStore }

func (f *fakeSubmissionRepo) withRelations(submission models.Submission) models.Submission {
	if submission.AssignmentID != nil {
		if assignment, ok := f.store.assignments[*submission.AssignmentID]; ok {
			if class, ok := f.store.classes[assignment.ClassID]; ok {
				assignment.Class = class
			}
			submission.Assignment = &assignment
		}
	}
	if student, ok := f.store.users[submission.StudentID]; ok {
		submission.Student = student
	}
	return submission
}

func (f *fakeSubmissionRepo) GetByID(_ context.Context, id uint) (models.Submission, error) {
	submission, ok := f.store.submissions[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return f.withRelations(submission), nil
}

func (f *fakeSubmissionRepo) GetByAssignmentAndStudent(_ context.Context, assignmentID, studentID uint) (models.Submission, error) {
	for _, submission := range f.store.submissions {
		if submission.AssignmentID != nil && *submission.AssignmentID == assignmentID && submission.StudentID == studentID {
			return submission, nil
		}
	}
	return models.Submission{}, gorm.ErrRecordNotFound
}

func (f *fakeSubmissionRepo) GetByQuizAndStudent(_ context.Context, quizID, studentID uint) (models.Submission, error) {
	for _, submission := range f.store.submissions {
		if submission.QuizID != nil && *submission.QuizID == quizID && submission.StudentID == studentID {
			return submission, nil
		}
	}
	return models.Submission{}, gorm.ErrRecordNotFound
}

func (f *fakeSubmissionRepo) ListByAssignment(_ context.Context, assignmentID uint) ([]models.Submission, error) {
	submissions := make([]models.Submission, 0)
	for _, submission := range f.store.submissions {
		if submission.AssignmentID != nil && *submission.AssignmentID == assignmentID {
			submissions = append(submissions, f.withRelations(submission))
		}
	}
	sort.Slice(submissions, func(i, j int) bool { return submissions[i].ID < submissions[j].ID })
	return submissions, nil
}

func (f *fakeSubmissionRepo) ListForAssignments(_ context.Context, assignmentIDs []uint, studentID uint) ([]models.Submission, error) {
	wanted := make(map[uint]bool, len(assignmentIDs))
	for _, id := range assignmentIDs {
		wanted[id] = true
	}
	submissions := make([]models.Submission, 0)
	for _, submission := range f.store.submissions {
		if submission.AssignmentID != nil && wanted[*submission.AssignmentID] && submission.StudentID == studentID {
			submissions = append(submissions, submission)
		}
	}
	sort.Slice(submissions, func(i, j int) bool { return submissions[i].ID < submissions[j].ID })
	return submissions, nil
}

func (f *fakeSubmissionRepo) ListGradedByClass(_ context.Context, classID uint) ([]models.Submission, error) {
	submissions := make([]models.Submission, 0)
	for _, submission := range f.store.submissions {
		if submission.Grade == nil || submission.AssignmentID == nil {
			continue
		}
		if assignment, ok := f.store.assignments[*submission.AssignmentID]; ok && assignment.ClassID == classID {
			submissions = append(submissions, submission)
		}
	}
	return submissions, nil
}

func (f *fakeSubmissionRepo) ListByClass(_ context.Context, classID uint) ([]models.Submission, error) {
	submissions := make([]models.Submission, 0)
	for _, submission := range f.store.submissions {
		if submission.AssignmentID == nil {
			continue
		}
		if assignment, ok := f.store.assignments[*submission.AssignmentID]; ok && assignment.ClassID == classID {
			submissions = append(submissions, f.withRelations(submission))
		}
	}
	sort.Slice(submissions, func(i, j int) bool { return submissions[i].ID < submissions[j].ID })
	return submissions, nil
}

func (f *fakeSubmissionRepo) Create(_ context.Context, submission *models.Submission) error {
	submission.ID = f.store.id()
	submission.CreatedAt = time.Now()
	f.store.submissions[submission.ID] = *submission
	return nil
}

func (f *fakeSubmissionRepo) Update(_ context.Context, submission *models.Submission) error {
	if _, ok := f.store.submissions[submission.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *submission
	stored.Assignment = nil
	f.store.submissions[submission.ID] = stored
	return nil
}

// --- quiz repository fake ---

type fakeQuizRepo struct{ store *memoryStore }

func (f *fakeQuizRepo) GetByID(_ context.Context, id uint) (models.Quiz, error) {
	quiz, ok := f.store.quizzes[id]
	if !ok {
		return models.Quiz{}, gorm.ErrRecordNotFound
	}
	return quiz, nil
}

func (f *fakeQuizRepo) ListByClass(_ context.Context, classID uint) ([]models.Quiz, error) {
	quizzes := make([]models.Quiz, 0)
	for _, quiz := range f.store.quizzes {
		if quiz.ClassID == classID {
			quizzes = append(quizzes, quiz)
		}
	}
	sort.Slice(quizzes, func(i, j int) bool { return quizzes[i].ID < quizzes[j].ID })
	return quizzes, nil
}

func (f *fakeQuizRepo) Create(_ context.Context, quiz *models.Quiz) error {
	quiz.ID = f.store.id()
	quiz.CreatedAt = time.Now()
	f.store.quizzes[quiz.ID] = *quiz
	return nil
}

func (f *fakeQuizRepo) AddQuestion(_ context.Context, question *models.Question) error {
	quiz, ok := f.store.quizzes[question.QuizID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	question.ID = f.store.id()
	quiz.Questions = append(quiz.Questions, *question)
	f.store.quizzes[quiz.ID] = quiz
	return nil
}

// --- notification repository fake ---

type fakeNotificationRepo struct{ store *memoryStore }

func (f *fakeNotificationRepo) ListByUser(_ context.Context, userID uint) ([]models.Notification, error) {
	notifications := make([]models.Notification, 0)
	for _, notification := range f.store.notifications {
		if notification.UserID == userID {
			notifications = append(notifications, notification)
		}
	}
	sort.Slice(notifications, func(i, j int) bool { return notifications[i].ID > notifications[j].ID })
	return notifications, nil
}

func (f *fakeNotificationRepo) Create(_ context.Context, notification *models.Notification) error {
	notification.ID = f.store.id()
	notification.CreatedAt = time.Now()
	f.store.notifications[notification.ID] = *notification
	return nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, id, userID uint) error {
	notification, ok := f.store.notifications[id]
	if !ok || notification.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	notification.Read = true
	f.store.notifications[id] = notification
	return nil
}
