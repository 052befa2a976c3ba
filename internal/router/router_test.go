package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/portfolio-api/internal/config"
	"github.com/deppfellow/portfolio-api/internal/database"
	"github.com/deppfellow/portfolio-api/internal/handler"
	"github.com/deppfellow/portfolio-api/internal/middleware"
	"github.com/deppfellow/portfolio-api/internal/repository"
	"github.com/deppfellow/portfolio-api/internal/router"
	"github.com/deppfellow/portfolio-api/internal/server"
	"github.com/deppfellow/portfolio-api/internal/service"
	"github.com/deppfellow/portfolio-api/internal/storage"
)

type testAPI struct {
	e       *echo.Echo
	token   string
	uploads string
}

func newTestAPI(t *testing.T, mutate ...func(*config.Config)) *testAPI {
	t.Helper()

	cfg := config.Default()
	cfg.Primary.Env = "test"
	cfg.Database.Driver = "memory"
	cfg.Auth.JWTSecret = "router-secret"
	cfg.Upload.Dir = t.TempDir()
	cfg.Translations.SourceDir = t.TempDir()
	for _, m := range mutate {
		m(cfg)
	}
	require.NoError(t, cfg.Validate())

	logger := zerolog.Nop()
	blobs, err := storage.NewLocal(cfg.Upload.Dir)
	require.NoError(t, err)

	s := server.NewWithDeps(cfg, &logger, nil, database.NewMemory(&logger), blobs)
	repos := repository.NewRepositories(s)
	services, err := service.NewServices(s, repos)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = services.Auth.ProvisionAdmin(ctx, "admin", "admin@example.com", "hunter22")
	require.NoError(t, err)
	login, err := services.Auth.Login(ctx, "admin", "hunter22")
	require.NoError(t, err)

	e := router.NewRouter(s, handler.NewHandlers(s, repos, services), middleware.NewMiddlewares(s, services.Auth))
	return &testAPI{e: e, token: login.Token, uploads: cfg.Upload.Dir}
}

func (a *testAPI) send(t *testing.T, req *http.Request, authed bool) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	if authed {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+a.token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	var body map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	}
	return rec, body
}

func (a *testAPI) do(t *testing.T, method, path string, payload any, authed bool) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return a.send(t, req, authed)
}

func TestHealthAndIndex(t *testing.T) {
	api := newTestAPI(t)

	rec, body := api.do(t, http.MethodGet, "/api/health", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "Server is running", body["message"])

	rec, body = api.do(t, http.MethodGet, "/", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Portfolio API Server", body["message"])
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestUnknownRoute(t *testing.T) {
	api := newTestAPI(t)

	for _, path := range []string{"/nope", "/api/nope"} {
		rec, body := api.do(t, http.MethodGet, path, nil, false)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, "Route not found", body["error"])
		assert.Equal(t, path, body["path"])
		assert.Equal(t, http.MethodGet, body["method"])
		assert.Contains(t, body["availableEndpoints"], "projects")
	}
}

func TestAuthGuard(t *testing.T) {
	api := newTestAPI(t)
	skill := map[string]any{"category": "backend", "title": "Backend", "items": []string{"Go"}}

	rec, body := api.do(t, http.MethodPost, "/api/skills", skill, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Access token required", body["error"])

	req := httptest.NewRequest(http.MethodPost, "/api/skills", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-token")
	rec, body = api.send(t, req, false)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Invalid token", body["error"])

	rec, body = api.do(t, http.MethodPost, "/api/skills", skill, true)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "backend", body["category"])
	assert.NotEmpty(t, body["_id"])
}

func TestLogin(t *testing.T) {
	api := newTestAPI(t)

	rec, body := api.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "admin"}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Username/email and password are required", body["error"])

	rec, body = api.do(t, http.MethodPost, "/api/auth/login",
		map[string]string{"username": "admin", "password": "wrong"}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", body["error"])

	rec, body = api.do(t, http.MethodPost, "/api/auth/login",
		map[string]string{"username": "admin@example.com", "password": "hunter22"}, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, body["token"])
	assert.Equal(t, "admin", body["username"])

	rec, body = api.do(t, http.MethodPost, "/api/auth/register",
		map[string]string{"username": "x", "password": "y"}, false)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotEmpty(t, body["error"])
}

func TestLoginRateLimit(t *testing.T) {
	api := newTestAPI(t, func(c *config.Config) { c.Auth.LoginRateLimit = 2 })
	creds := map[string]string{"username": "admin", "password": "wrong"}

	for range 2 {
		rec, _ := api.do(t, http.MethodPost, "/api/auth/login", creds, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec, body := api.do(t, http.MethodPost, "/api/auth/login", creds, false)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many login attempts", body["error"])
}

func TestProjectLifecycle(t *testing.T) {
	api := newTestAPI(t)

	rec, body := api.do(t, http.MethodGet, "/api/projects", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, body["projects"])

	rec, body = api.do(t, http.MethodPost, "/api/projects",
		map[string]any{"title": "Site", "description": "  "}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, handler.MsgProjectRequired, body["error"])

	rec, body = api.do(t, http.MethodPost, "/api/projects", map[string]any{
		"title":        "Site",
		"description":  "Personal site",
		"image":        "/uploads/site.png",
		"technologies": []string{"Go", " Echo ", ""},
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []any{"Go", "Echo"}, body["technologies"])
	id, _ := body["_id"].(string)
	require.NotEmpty(t, id)

	rec, body = api.do(t, http.MethodGet, "/api/projects/"+id, nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Site", body["title"])

	rec, body = api.do(t, http.MethodPut, "/api/projects/"+id, map[string]any{
		"title":       "Site v2",
		"description": "Personal site",
		"image":       "/uploads/site.png",
	}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Site v2", body["title"])

	rec, body = api.do(t, http.MethodGet, "/api/projects/000000000000000000000000", nil, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Project not found", body["error"])

	rec, body = api.do(t, http.MethodGet, "/api/projects/not-an-id", nil, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Project not found", body["error"])

	rec, body = api.do(t, http.MethodDelete, "/api/projects/"+id, nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Project deleted successfully", body["message"])

	rec, _ = api.do(t, http.MethodDelete, "/api/projects/"+id, nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProfileAndResume(t *testing.T) {
	api := newTestAPI(t)

	rec, first := api.do(t, http.MethodGet, "/api/profile", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Profile photo", first["profilePhotoAlt"])

	rec, second := api.do(t, http.MethodGet, "/api/profile", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, first["_id"], second["_id"])

	rec, body := api.do(t, http.MethodPut, "/api/profile", map[string]string{"profilePhoto": "/uploads/me.png"}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/uploads/me.png", body["profilePhoto"])
	assert.Equal(t, "Profile photo", body["profilePhotoAlt"])

	rec, body = api.do(t, http.MethodGet, "/api/resume", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", body["externalLink"])

	rec, body = api.do(t, http.MethodPut, "/api/resume", map[string]string{"externalLink": "https://cv.example.com"}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://cv.example.com", body["externalLink"])
}

func TestTranslations(t *testing.T) {
	api := newTestAPI(t)

	rec, body := api.do(t, http.MethodGet, "/api/translations/en", nil, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Translation not found", body["error"])

	rec, body = api.do(t, http.MethodPut, "/api/translations/de", map[string]any{"data": map[string]any{"a": 1}}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `Language must be "en" or "ru"`, body["error"])

	rec, _ = api.do(t, http.MethodPut, "/api/translations/en",
		map[string]any{"data": map[string]any{"nav": map[string]any{"home": "Home"}}}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = api.do(t, http.MethodGet, "/api/translations/en", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"nav": map[string]any{"home": "Home"}}, body["data"])

	rec, body = api.do(t, http.MethodGet, "/api/translations?language=ru", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, body["translations"])

	rec, body = api.do(t, http.MethodDelete, "/api/translations/en", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Translation deleted successfully", body["message"])
}

func TestUploadRoundTrip(t *testing.T) {
	api := newTestAPI(t)

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="file"; filename="avatar.png"`},
		"Content-Type":        {"image/png"},
	})
	require.NoError(t, err)
	_, err = part.Write(png)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec, body := api.send(t, req, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	filename, _ := body["filename"].(string)
	require.NotEmpty(t, filename)
	assert.Equal(t, "avatar.png", body["originalName"])
	assert.Equal(t, "/uploads/"+filename, body["url"])
	assert.FileExists(t, filepath.Join(api.uploads, filename))

	static := httptest.NewRecorder()
	api.e.ServeHTTP(static, httptest.NewRequest(http.MethodGet, "/uploads/"+filename, nil))
	assert.Equal(t, http.StatusOK, static.Code)
	assert.Equal(t, png, static.Body.Bytes())

	rec, body = api.do(t, http.MethodPost, "/api/upload", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No file uploaded", body["error"])

	rec, _ = api.do(t, http.MethodDelete, "/api/upload/"+filename, nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	_, err = os.Stat(filepath.Join(api.uploads, filename))
	assert.True(t, os.IsNotExist(err))

	rec, _ = api.do(t, http.MethodDelete, "/api/upload/"+filename, nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateRejectsMissingRequiredFields(t *testing.T) {
	resources := []struct {
		path     string
		listKey  string
		valid    map[string]any
		required []string
		message  string
	}{
		{
			path:    "/api/projects",
			listKey: "projects",
			valid: map[string]any{
				"title": "Site", "description": "Personal site", "image": "/uploads/site.png",
			},
			required: []string{"title", "description", "image"},
			message:  handler.MsgProjectRequired,
		},
		{
			path:     "/api/skills",
			listKey:  "skills",
			valid:    map[string]any{"category": "backend", "title": "Backend"},
			required: []string{"category", "title"},
		},
		{
			path:     "/api/contacts",
			listKey:  "contacts",
			valid:    map[string]any{"platform": "GitHub", "url": "https://github.com/x", "icon": "github"},
			required: []string{"platform", "url", "icon"},
		},
	}

	api := newTestAPI(t)
	for _, res := range resources {
		for _, field := range res.required {
			for _, variant := range []string{"blank", "missing"} {
				t.Run(res.listKey+"/"+field+"/"+variant, func(t *testing.T) {
					payload := make(map[string]any, len(res.valid))
					for k, v := range res.valid {
						payload[k] = v
					}
					if variant == "blank" {
						payload[field] = "   "
					} else {
						delete(payload, field)
					}

					rec, body := api.do(t, http.MethodPost, res.path, payload, true)
					assert.Equal(t, http.StatusBadRequest, rec.Code)
					if res.message != "" {
						assert.Equal(t, res.message, body["error"])
					}
				})
			}
		}

		rec, body := api.do(t, http.MethodGet, res.path, nil, false)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []any{}, body[res.listKey], res.path)
	}
}

func TestOrderAcceptsNumericString(t *testing.T) {
	api := newTestAPI(t)

	rec, body := api.do(t, http.MethodPost, "/api/skills",
		map[string]any{"category": "backend", "title": "Backend", "order": "2"}, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, float64(2), body["order"])

	rec, body = api.do(t, http.MethodPost, "/api/contacts",
		map[string]any{"platform": "GitHub", "url": "https://github.com/x", "icon": "github", "order": "x"}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, body["error"])
}
