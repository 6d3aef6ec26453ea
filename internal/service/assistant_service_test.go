package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/lumio-edu/lumio-api/internal/dto"
	"github.com/lumio-edu/lumio-api/internal/models"
)

type stubAssistant struct {
	response string
	err      error
	prompts  []string
}

func (s *stubAssistant) Complete(_ context.Context, _ string, userPrompt string) (string, error) {
	s.prompts = append(s.prompts, userPrompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func newAssistantFixture(t *testing.T, assistant *stubAssistant) (*memoryStore, AssistantService) {
	t.Helper()
	store := newMemoryStore()
	svc, err := NewAssistantService(
		assistant,
		&fakeClassRepo{store},
		&fakeAssignmentRepo{store},
		&fakeSubmissionRepo{store},
		validator.New(validator.WithRequiredStructEnabled()),
		testLogger(),
	)
	require.NoError(t, err)
	return store, svc
}

func TestAssistantQueryIncludesStudentContext(t *testing.T) {
	assistant := &stubAssistant{response: "Focus on Essay 2."}
	store, svc := newAssistantFixture(t, assistant)
	class, student := seedClassWithStudent(store)
	a1 := store.addAssignment(class.ID, "Essay 1", 100)
	store.addGradedSubmission(a1.ID, student.ID, 90)

	result, err := svc.Query(context.Background(), student.ID, models.RoleStudent, dto.AssistantQueryRequest{
		Question: "How am I doing?",
	})
	require.NoError(t, err)
	require.Equal(t, "Focus on Essay 2.", result.Response)
	require.Len(t, assistant.prompts, 1)
	require.Contains(t, assistant.prompts[0], "Math")
	require.Contains(t, assistant.prompts[0], "90.0")
	require.Contains(t, assistant.prompts[0], "How am I doing?")
}

func TestAssistantQueryWeightsByPoints(t *testing.T) {
	assistant := &stubAssistant{response: "ok"}
	store, svc := newAssistantFixture(t, assistant)
	class, student := seedClassWithStudent(store)
	small := store.addAssignment(class.ID, "Quiz", 10)
	big := store.addAssignment(class.ID, "Final", 90)
	store.addGradedSubmission(small.ID, student.ID, 100)
	store.addGradedSubmission(big.ID, student.ID, 50)

	_, err := svc.Query(context.Background(), student.ID, models.RoleStudent, dto.AssistantQueryRequest{Question: "avg?"})
	require.NoError(t, err)
	// (100*10 + 50*90) / 100 = 55.0
	require.Contains(t, assistant.prompts[0], "55.0")
}

func TestAssistantQueryWithoutBackend(t *testing.T) {
	store := newMemoryStore()
	svc, err := NewAssistantService(nil, &fakeClassRepo{store}, &fakeAssignmentRepo{store}, &fakeSubmissionRepo{store}, validator.New(validator.WithRequiredStructEnabled()), testLogger())
	require.NoError(t, err)

	_, err = svc.Query(context.Background(), 1, models.RoleStudent, dto.AssistantQueryRequest{Question: "hi"})
	require.ErrorIs(t, err, ErrAssistantNotConfigured)
}

func TestGenerateAssignmentValidatesMCQContent(t *testing.T) {
	assistant := &stubAssistant{response: `{"questions": [{"prompt": "2+2?", "options": ["3", "4"], "answer": "4"}]}`}
	_, svc := newAssistantFixture(t, assistant)

	result, err := svc.GenerateAssignment(context.Background(), 1, dto.GenerateAssignmentRequest{
		Topic: "arithmetic",
		Type:  "mcq",
	})
	require.NoError(t, err)
	require.JSONEq(t, assistant.response, string(result.Content))
}

func TestGenerateAssignmentRejectsMalformedContent(t *testing.T) {
	assistant := &stubAssistant{response: `{"questions": []}`}
	_, svc := newAssistantFixture(t, assistant)

	_, err := svc.GenerateAssignment(context.Background(), 1, dto.GenerateAssignmentRequest{
		Topic: "arithmetic",
		Type:  "mcq",
	})
	require.ErrorIs(t, err, ErrGeneratedContentInvalid)
}

func TestGenerateAssignmentRejectsNonJSON(t *testing.T) {
	assistant := &stubAssistant{response: "Sure! Here are some questions..."}
	_, svc := newAssistantFixture(t, assistant)

	_, err := svc.GenerateAssignment(context.Background(), 1, dto.GenerateAssignmentRequest{
		Topic: "arithmetic",
		Type:  "mcq",
	})
	require.ErrorIs(t, err, ErrGeneratedContentInvalid)
}

func TestGenerateAssignmentEssay(t *testing.T) {
	assistant := &stubAssistant{response: `{"title": "Rivers", "description": "Write about rivers."}`}
	_, svc := newAssistantFixture(t, assistant)

	result, err := svc.GenerateAssignment(context.Background(), 1, dto.GenerateAssignmentRequest{
		Topic: "rivers",
		Type:  "essay",
	})
	require.NoError(t, err)
	require.JSONEq(t, assistant.response, string(result.Content))
}
