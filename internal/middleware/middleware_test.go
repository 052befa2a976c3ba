package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/portfolio-api/internal/config"
	"github.com/deppfellow/portfolio-api/internal/errs"
	"github.com/deppfellow/portfolio-api/internal/lib/token"
	"github.com/deppfellow/portfolio-api/internal/middleware"
	"github.com/deppfellow/portfolio-api/internal/server"
	"github.com/deppfellow/portfolio-api/internal/store"
)

func newServer(t *testing.T, env string) *server.Server {
	t.Helper()
	cfg := config.Default()
	cfg.Primary.Env = env
	logger := zerolog.Nop()
	return server.NewWithDeps(cfg, &logger, nil, nil, nil)
}

type stubVerifier map[string]*token.Claims

func (s stubVerifier) VerifyToken(raw string) (*token.Claims, error) {
	if c, ok := s[raw]; ok {
		return c, nil
	}
	return nil, token.ErrInvalid
}

func TestRequireAuth(t *testing.T) {
	s := newServer(t, "test")
	auth := middleware.NewAuthMiddleware(s, stubVerifier{
		"good": {ID: "abc123", Username: "admin", Email: "admin@example.com"},
	})

	var seenUser string
	next := auth.RequireAuth(func(c echo.Context) error {
		seenUser = middleware.GetUserID(c)
		assert.Equal(t, "admin", middleware.GetClaims(c).Username)
		return c.NoContent(http.StatusNoContent)
	})

	tests := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"missing header", "", http.StatusUnauthorized, middleware.MsgTokenRequired},
		{"not a bearer", "Basic Zm9vOmJhcg==", http.StatusUnauthorized, middleware.MsgTokenRequired},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, middleware.MsgTokenRequired},
		{"unknown token", "Bearer bad", http.StatusForbidden, middleware.MsgInvalidToken},
	}

	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/skills", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			err := next(e.NewContext(req, httptest.NewRecorder()))

			var httpErr *errs.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.status, httpErr.Status)
			assert.Equal(t, tt.message, httpErr.Message)
		})
	}

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/skills", nil)
		req.Header.Set(echo.HeaderAuthorization, "bearer good")
		rec := httptest.NewRecorder()

		require.NoError(t, next(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "abc123", seenUser)
	})
}

func renderError(t *testing.T, env string, err error) (int, map[string]any) {
	t.Helper()

	global := middleware.NewGlobalMiddlewares(newServer(t, env))
	e := echo.New()
	rec := httptest.NewRecorder()
	global.GlobalErrorHandler(err, e.NewContext(httptest.NewRequest(http.MethodGet, "/api/x", nil), rec))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestGlobalErrorHandler(t *testing.T) {
	t.Run("not found entity", func(t *testing.T) {
		status, body := renderError(t, "development", &store.NotFoundError{Entity: "Project"})
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "Project not found", body["error"])
		assert.Equal(t, "NOT_FOUND", body["code"])
	})

	t.Run("unknown error shows detail outside production", func(t *testing.T) {
		status, body := renderError(t, "development", errors.New("socket closed"))
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "socket closed", body["detail"])
		assert.NotEmpty(t, body["name"])
	})

	t.Run("unknown error hides detail in production", func(t *testing.T) {
		status, body := renderError(t, "production", errors.New("socket closed"))
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "Internal Server Error", body["error"])
		assert.NotContains(t, body, "detail")
		assert.NotContains(t, body, "name")
		assert.NotContains(t, body, "stack")
	})

	t.Run("server error carries its stack outside production", func(t *testing.T) {
		_, body := renderError(t, "development", pkgerrors.New("pool exhausted"))
		stack, _ := body["stack"].(string)
		assert.Contains(t, stack, "TestGlobalErrorHandler")
	})

	t.Run("plain server error gets the handler stack", func(t *testing.T) {
		_, body := renderError(t, "development", errors.New("socket closed"))
		assert.NotEmpty(t, body["stack"])
	})

	t.Run("client errors carry no stack", func(t *testing.T) {
		_, body := renderError(t, "development", &store.NotFoundError{Entity: "Skill"})
		assert.NotContains(t, body, "stack")
	})

	t.Run("echo route miss", func(t *testing.T) {
		status, body := renderError(t, "production", echo.ErrNotFound)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "Route not found", body["error"])
	})

	t.Run("committed response is left alone", func(t *testing.T) {
		global := middleware.NewGlobalMiddlewares(newServer(t, "test"))
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		require.NoError(t, c.String(http.StatusOK, "done"))

		global.GlobalErrorHandler(errors.New("late"), c)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "done", rec.Body.String())
	})
}
