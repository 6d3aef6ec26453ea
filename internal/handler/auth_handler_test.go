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

type mockAuthService struct {
	login       dto.LoginResponse
	user        dto.UserResponse
	created     dto.UserCreateResponse
	lastLogin   dto.LoginRequest
	lastCreated dto.UserCreateRequest
	deletedID   uint
	err         error
}

func (m *mockAuthService) Login(_ context.Context, payload dto.LoginRequest) (dto.LoginResponse, error) {
	m.lastLogin = payload
	if m.err != nil {
		return dto.LoginResponse{}, m.err
	}
	return m.login, nil
}

func (m *mockAuthService) GetUser(context.Context, uint) (dto.UserResponse, error) {
	if m.err != nil {
		return dto.UserResponse{}, m.err
	}
	return m.user, nil
}

func (m *mockAuthService) ListUsers(context.Context) ([]dto.UserResponse, error) {
	return []dto.UserResponse{m.user}, m.err
}

func (m *mockAuthService) CreateUser(_ context.Context, payload dto.UserCreateRequest) (dto.UserCreateResponse, error) {
	m.lastCreated = payload
	if m.err != nil {
		return dto.UserCreateResponse{}, m.err
	}
	return m.created, nil
}

func (m *mockAuthService) DeleteUser(_ context.Context, id uint) error {
	m.deletedID = id
	return m.err
}

func newAuthApp(svc service.AuthService) *fiber.App {
	app := fiber.New()
	public := app.Group("/api/auth")
	protected := app.Group("/api/auth", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(1))
		c.Locals("user_role", "admin")
		return c.Next()
	})
	h := handler.NewAuthHandler(svc, zerolog.New(io.Discard))
	h.Register(public, protected)
	h.RegisterAdmin(app.Group("/api/admin"))
	return app
}

func TestAuthHandler_LoginSuccess(t *testing.T) {
	svc := &mockAuthService{login: dto.LoginResponse{
		Token: "token-123",
		User:  dto.UserResponse{ID: 1, Name: "Ada", Email: "ada@lumio.edu", Role: "teacher"},
	}}
	app := newAuthApp(svc)

	body, err := json.Marshal(dto.LoginRequest{Email: "ada@lumio.edu", Password: "secret"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool              `json:"success"`
		Data    dto.LoginResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, "token-123", response.Data.Token)
	require.Equal(t, "ada@lumio.edu", svc.lastLogin.Email)
}

func TestAuthHandler_LoginInvalidCredentials(t *testing.T) {
	svc := &mockAuthService{err: service.ErrInvalidCredentials}
	app := newAuthApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader([]byte(`{"email":"x@lumio.edu","password":"bad"}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthHandler_CreateUser(t *testing.T) {
	svc := &mockAuthService{created: dto.UserCreateResponse{
		User:     dto.UserResponse{ID: 9, Name: "Ben", Email: "12345678@lumio.edu", Role: "student"},
		Password: "p4ssw0rd",
	}}
	app := newAuthApp(svc)

	body, err := json.Marshal(dto.UserCreateRequest{Name: "Ben", Role: "student"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/users", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var response struct {
		Data dto.UserCreateResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Equal(t, "p4ssw0rd", response.Data.Password)
	require.Equal(t, "student", svc.lastCreated.Role)
}

func TestAuthHandler_DeleteProtectedUser(t *testing.T) {
	svc := &mockAuthService{err: service.ErrProtectedUser}
	app := newAuthApp(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/users/1", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
