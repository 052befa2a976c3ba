package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/portfolio-api/internal/errs"
	"github.com/deppfellow/portfolio-api/internal/server"
	"github.com/deppfellow/portfolio-api/internal/service"
)

type AuthHandler struct {
	Handler
	service *service.AuthService
}

func NewAuthHandler(s *server.Server, svc *service.AuthService) *AuthHandler {
	return &AuthHandler{Handler: NewHandler(s), service: svc}
}

func (h *AuthHandler) Login(c echo.Context, req *LoginRequest) (*service.LoginResult, error) {
	return h.service.Login(c.Request().Context(), req.Username, req.Password)
}

// Register is always refused; the single admin is provisioned out of band.
// It does not bind the body, so any payload gets the same answer.
func (h *AuthHandler) Register(c echo.Context) error {
	return errs.NewForbiddenError(service.MsgRegistrationDisabled, true)
}

// InitAdmin accepts the secret from the body or, for GET, the query string.
func (h *AuthHandler) InitAdmin(c echo.Context, req *InitAdminRequest) (*service.ProvisionResult, error) {
	secret := req.Secret
	if secret == "" {
		secret = c.QueryParam("secret")
	}
	return h.service.InitAdmin(c.Request().Context(), secret)
}
