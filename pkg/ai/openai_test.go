package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newStubServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func newTestClient(t *testing.T, baseURL string) *OpenAIClient {
	t.Helper()
	client, err := NewOpenAIClient(OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)
	return client
}

func TestNewOpenAIClientRequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIClient(OpenAIConfig{})
	require.Error(t, err)
}

func TestGradeParsesModelResponse(t *testing.T) {
	server := newStubServer(t, http.StatusOK, `{"grade": 88, "feedback": "Well reasoned."}`)
	defer server.Close()

	client := newTestClient(t, server.URL+"/v1")
	result, err := client.Grade(context.Background(), GradingInput{
		AssignmentTitle: "Essay",
		StudentAnswer:   "My answer",
		MaxPoints:       100,
	})
	require.NoError(t, err)
	require.Equal(t, 88.0, result.Grade)
	require.Equal(t, "Well reasoned.", result.Feedback)
}

func TestGradeSurfacesTransportFailure(t *testing.T) {
	server := newStubServer(t, http.StatusInternalServerError, "")
	defer server.Close()

	client := newTestClient(t, server.URL+"/v1")
	_, err := client.Grade(context.Background(), GradingInput{MaxPoints: 100})
	require.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestGradeRecoversFromMalformedOutput(t *testing.T) {
	server := newStubServer(t, http.StatusOK, "The grade: 45 seems fair for this work.")
	defer server.Close()

	client := newTestClient(t, server.URL+"/v1")
	result, err := client.Grade(context.Background(), GradingInput{MaxPoints: 100})
	require.NoError(t, err)
	require.Equal(t, 45.0, result.Grade)
	require.NotEmpty(t, result.Feedback)
}

func TestCompleteReturnsRawText(t *testing.T) {
	server := newStubServer(t, http.StatusOK, "Here is your study plan.")
	defer server.Close()

	client := newTestClient(t, server.URL+"/v1")
	text, err := client.Complete(context.Background(), "You are helpful.", "Make a plan.")
	require.NoError(t, err)
	require.Equal(t, "Here is your study plan.", text)
}

func TestGradeHonoursContextCancellation(t *testing.T) {
	server := newStubServer(t, http.StatusOK, `{"grade": 50, "feedback": "ok"}`)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newTestClient(t, server.URL+"/v1")
	_, err := client.Grade(ctx, GradingInput{MaxPoints: 100})
	require.Error(t, err)
}
