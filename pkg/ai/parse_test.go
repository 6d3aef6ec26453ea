package ai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseGradingResponseStrictJSON(t *testing.T) {
	result := parseGradingResponse(`{"grade": 85, "feedback": "Solid work overall."}`, 100)
	require.Equal(t, 85.0, result.Grade)
	require.Equal(t, "Solid work overall.", result.Feedback)
}

func TestParseGradingResponseClampsAboveMax(t *testing.T) {
	result := parseGradingResponse(`{"grade": 150, "feedback": "Great."}`, 100)
	require.Equal(t, 100.0, result.Grade)
}

func TestParseGradingResponseClampsNegative(t *testing.T) {
	result := parseGradingResponse(`{"grade": -5, "feedback": "Missing parts."}`, 100)
	require.Equal(t, 0.0, result.Grade)
}

func TestParseGradingResponsePrefersStrictJSONOverScraping(t *testing.T) {
	raw := `{"feedback": "Up from grade: 40 last time.", "grade": 55}`
	result := parseGradingResponse(raw, 100)
	require.Equal(t, 55.0, result.Grade)
}

func TestParseGradingResponseScrapesGradeFromText(t *testing.T) {
	raw := `Sure! Here is the result: "grade": 72, "feedback": "Good effort but incomplete."`
	result := parseGradingResponse(raw, 100)
	require.Equal(t, 72.0, result.Grade)
	require.Contains(t, result.Feedback, "Good effort but incomplete.")
}

func TestParseGradingResponseDefaultsWhenUnparseable(t *testing.T) {
	result := parseGradingResponse("I cannot grade this submission.", 100)
	require.Equal(t, 70.0, result.Grade)
	require.Equal(t, "I cannot grade this submission.", result.Feedback)
}

func TestParseGradingResponseDefaultScalesWithMaxPoints(t *testing.T) {
	result := parseGradingResponse("nonsense", 50)
	require.Equal(t, 35.0, result.Grade)
}

func TestParseGradingResponseMissingFeedbackField(t *testing.T) {
	result := parseGradingResponse(`{"grade": 60}`, 100)
	require.Equal(t, 60.0, result.Grade)
	require.NotEmpty(t, result.Feedback)
}

func TestParseGradingResponseFeedbackNeverEmpty(t *testing.T) {
	result := parseGradingResponse(`{"grade": 90, "feedback": "   "}`, 100)
	require.Equal(t, "Graded automatically.", result.Feedback)
}
