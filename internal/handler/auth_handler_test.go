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

	"github.com/proagent/activity-api/internal/dto"
	"github.com/proagent/activity-api/internal/handler"
	"github.com/proagent/activity-api/internal/service"
	"github.com/proagent/activity-api/internal/utils"
)

type mockAuthService struct {
	loginResponse dto.LoginResponse
	loginErr      error
	lastLogin     dto.LoginRequest
	lastReqCtx    *utils.RequestContext
	loggedOut     []string
}

func (m *mockAuthService) Login(ctx context.Context, req dto.LoginRequest, reqCtx *utils.RequestContext) (dto.LoginResponse, error) {
	m.lastLogin = req
	m.lastReqCtx = reqCtx
	if m.loginErr != nil {
		return dto.LoginResponse{}, m.loginErr
	}
	return m.loginResponse, nil
}

func (m *mockAuthService) Logout(ctx context.Context, agentID uint, sessionKey string, reqCtx *utils.RequestContext) error {
	m.loggedOut = append(m.loggedOut, sessionKey)
	return nil
}

func newAuthApp(svc *mockAuthService, authenticated bool) *fiber.App {
	app := fiber.New()
	h := handler.NewAuthHandler(svc, zerolog.New(io.Discard))
	app.Post("/api/v1/auth/login", h.Login)
	if authenticated {
		app.Post("/api/v1/auth/logout", func(c *fiber.Ctx) error {
			c.Locals("agent_id", uint(7))
			c.Locals("session_key", "sess-1")
			return c.Next()
		}, h.Logout)
	} else {
		app.Post("/api/v1/auth/logout", h.Logout)
	}
	return app
}

func TestAuthHandlerLoginSuccess(t *testing.T) {
	svc := &mockAuthService{loginResponse: dto.LoginResponse{Token: "jwt-token", SessionKey: "sess-1", AgentID: 7}}
	app := newAuthApp(svc, false)

	body, err := json.Marshal(dto.LoginRequest{Phone: "+77010000001", Password: "s3cret!"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", "203.0.113.9")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool              `json:"success"`
		Data    dto.LoginResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, "jwt-token", response.Data.Token)

	require.NotNil(t, svc.lastReqCtx, "request context reaches the service")
	require.Equal(t, "203.0.113.9", svc.lastReqCtx.ClientIP)
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	svc := &mockAuthService{loginErr: service.ErrInvalidCredentials}
	app := newAuthApp(svc, false)

	body, err := json.Marshal(dto.LoginRequest{Phone: "+77010000001", Password: "wrong"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthHandlerLogout(t *testing.T) {
	svc := &mockAuthService{}
	app := newAuthApp(svc, true)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, []string{"sess-1"}, svc.loggedOut)
}

func TestAuthHandlerLogoutRequiresAuth(t *testing.T) {
	svc := &mockAuthService{}
	app := newAuthApp(svc, false)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.Empty(t, svc.loggedOut)
}
