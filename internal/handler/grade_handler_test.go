package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/lumio-edu/lumio-api/internal/dto"
	"github.com/lumio-edu/lumio-api/internal/handler"
	"github.com/lumio-edu/lumio-api/internal/service"
)

type mockGradeService struct {
	overview    dto.GradeOverviewResponse
	whatIf      dto.WhatIfResponse
	lastRequest dto.WhatIfRequest
	err         error
}

func (m *mockGradeService) Overview(context.Context, uint, string) (dto.GradeOverviewResponse, error) {
	if m.err != nil {
		return dto.GradeOverviewResponse{}, m.err
	}
	return m.overview, nil
}

func (m *mockGradeService) ClassGrades(context.Context, uint, string, uint) (dto.ClassGradesResponse, error) {
	return dto.ClassGradesResponse{}, m.err
}

func (m *mockGradeService) AssignmentGrades(context.Context, uint, uint) (dto.AssignmentGradesResponse, error) {
	return dto.AssignmentGradesResponse{}, m.err
}

func (m *mockGradeService) WhatIf(_ context.Context, _ uint, payload dto.WhatIfRequest) (dto.WhatIfResponse, error) {
	m.lastRequest = payload
	if m.err != nil {
		return dto.WhatIfResponse{}, m.err
	}
	return m.whatIf, nil
}

func (m *mockGradeService) InvalidateOverview(context.Context, uint) error { return m.err }

func newGradeApp(svc service.GradeService, role string) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/grades", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(7))
		c.Locals("user_role", role)
		return c.Next()
	})
	handler.NewGradeHandler(svc, zerolog.New(io.Discard)).Register(group)
	return app
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func TestGradeHandler_Overview(t *testing.T) {
	average := 88.5
	svc := &mockGradeService{overview: dto.GradeOverviewResponse{
		Type: "student",
		Classes: []dto.ClassGradeSummary{
			{ClassID: 3, ClassName: "Algebra", Average: &average, TotalAssignments: 4},
		},
	}}
	app := newGradeApp(svc, "student")

	req := httptest.NewRequest(http.MethodGet, "/api/grades/overview", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool                     `json:"success"`
		Data    dto.GradeOverviewResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, "student", response.Data.Type)
	require.Len(t, response.Data.Classes, 1)
	require.NotNil(t, response.Data.Classes[0].Average)
	require.Equal(t, 88.5, *response.Data.Classes[0].Average)
}

func TestGradeHandler_WhatIf(t *testing.T) {
	svc := &mockGradeService{whatIf: dto.WhatIfResponse{
		ClassName:      "Algebra",
		CurrentGrade:   85,
		ProjectedGrade: 90,
	}}
	app := newGradeApp(svc, "student")

	payload := dto.WhatIfRequest{
		ClassID:            3,
		HypotheticalGrades: map[uint]float64{12: 95},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/grades/what-if", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data dto.WhatIfResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Equal(t, 90.0, response.Data.ProjectedGrade)
	require.Equal(t, uint(3), svc.lastRequest.ClassID)
	require.Equal(t, 95.0, svc.lastRequest.HypotheticalGrades[12])
}

func TestGradeHandler_WhatIfRequiresStudentRole(t *testing.T) {
	svc := &mockGradeService{}
	app := newGradeApp(svc, "teacher")

	req := httptest.NewRequest(http.MethodPost, "/api/grades/what-if", bytes.NewReader([]byte(`{"class_id":1}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestGradeHandler_WhatIfNotEnrolled(t *testing.T) {
	svc := &mockGradeService{err: service.ErrNotEnrolled}
	app := newGradeApp(svc, "student")

	req := httptest.NewRequest(http.MethodPost, "/api/grades/what-if", bytes.NewReader([]byte(`{"class_id":1}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
