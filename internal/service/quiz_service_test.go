package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/lumio-edu/lumio-api/internal/dto"
	"github.com/lumio-edu/lumio-api/internal/models"
)

func newQuizFixture(t *testing.T) (*memoryStore, QuizService) {
	t.Helper()
	store := newMemoryStore()
	svc := NewQuizService(&fakeQuizRepo{store}, &fakeClassRepo{store}, validator.New(validator.WithRequiredStructEnabled()), testLogger())
	return store, svc
}

func TestQuizCreateRequiresOwnership(t *testing.T) {
	store, svc := newQuizFixture(t)
	class, _ := seedClassWithStudent(store)
	other := store.addUser("Other", "x@lumio.edu", models.RoleTeacher)

	_, err := svc.Create(context.Background(), other.ID, dto.QuizCreateRequest{ClassID: class.ID, Title: "Quiz"})
	require.ErrorIs(t, err, ErrNotClassOwner)

	result, err := svc.Create(context.Background(), class.TeacherID, dto.QuizCreateRequest{ClassID: class.ID, Title: "Quiz"})
	require.NoError(t, err)
	require.Equal(t, "Quiz", result.Title)
}

func TestQuizAddQuestionValidatesMCQ(t *testing.T) {
	store, svc := newQuizFixture(t)
	class, _ := seedClassWithStudent(store)

	quiz, err := svc.Create(context.Background(), class.TeacherID, dto.QuizCreateRequest{ClassID: class.ID, Title: "Quiz"})
	require.NoError(t, err)

	_, err = svc.AddQuestion(context.Background(), class.TeacherID, dto.QuestionCreateRequest{
		QuizID: quiz.ID,
		Prompt: "2+2?",
		Type:   models.QuestionTypeMCQ,
	})
	require.Error(t, err)

	question, err := svc.AddQuestion(context.Background(), class.TeacherID, dto.QuestionCreateRequest{
		QuizID:    quiz.ID,
		Prompt:    "2+2?",
		Type:      models.QuestionTypeMCQ,
		Options:   []string{"3", "4"},
		AnswerKey: "4",
	})
	require.NoError(t, err)
	require.Equal(t, "4", question.AnswerKey)
}

func TestQuizStudentViewHidesAnswerKeys(t *testing.T) {
	store, svc := newQuizFixture(t)
	class, student := seedClassWithStudent(store)

	quiz, err := svc.Create(context.Background(), class.TeacherID, dto.QuizCreateRequest{ClassID: class.ID, Title: "Quiz"})
	require.NoError(t, err)
	_, err = svc.AddQuestion(context.Background(), class.TeacherID, dto.QuestionCreateRequest{
		QuizID:    quiz.ID,
		Prompt:    "2+2?",
		Type:      models.QuestionTypeMCQ,
		Options:   []string{"3", "4"},
		AnswerKey: "4",
	})
	require.NoError(t, err)

	asStudent, err := svc.Get(context.Background(), student.ID, models.RoleStudent, quiz.ID)
	require.NoError(t, err)
	require.Len(t, asStudent.Questions, 1)
	require.Empty(t, asStudent.Questions[0].AnswerKey)

	asTeacher, err := svc.Get(context.Background(), class.TeacherID, models.RoleTeacher, quiz.ID)
	require.NoError(t, err)
	require.Equal(t, "4", asTeacher.Questions[0].AnswerKey)
}

func TestQuizListDeniesOutsiders(t *testing.T) {
	store, svc := newQuizFixture(t)
	class, _ := seedClassWithStudent(store)
	outsider := store.addUser("Outsider", "o@lumio.edu", models.RoleStudent)

	_, err := svc.ListByClass(context.Background(), outsider.ID, models.RoleStudent, class.ID)
	require.ErrorIs(t, err, ErrNotEnrolled)
}
