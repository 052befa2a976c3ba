package service

import (
	"context"
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/deppfellow/portfolio-api/internal/errs"
	"github.com/deppfellow/portfolio-api/internal/lib/token"
	"github.com/deppfellow/portfolio-api/internal/model"
	"github.com/deppfellow/portfolio-api/internal/repository"
	"github.com/deppfellow/portfolio-api/internal/server"
	"github.com/deppfellow/portfolio-api/internal/store"
)

// Client-facing auth messages. Login failures share one message so a
// caller cannot tell a wrong username from a wrong password.
const (
	MsgInvalidCredentials   = "Invalid credentials"
	MsgRegistrationDisabled = "Registration is disabled. Only one admin account is allowed."
	MsgInitDisabled         = "Admin initialization is disabled"
	MsgInvalidInitSecret    = "Invalid secret"
)

// AuthService handles admin login, token verification and provisioning.
type AuthService struct {
	server    *server.Server
	admins    *repository.AdminRepository
	tokens    *token.Manager
	dummyHash []byte
}

// NewAuthService builds the service. It fails when no signing secret is configured.
func NewAuthService(s *server.Server, repos *repository.Repositories) (*AuthService, error) {
	tokens, err := token.NewManager(s.Config.Auth.JWTSecret, s.Config.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}

	// Compared against when the login names no admin, so both failure
	// paths spend the same bcrypt time.
	dummy, err := bcrypt.GenerateFromPassword([]byte("portfolio-dummy-password"), model.PasswordCost)
	if err != nil {
		return nil, err
	}

	return &AuthService{
		server:    s,
		admins:    repos.Admins,
		tokens:    tokens,
		dummyHash: dummy,
	}, nil
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Login checks a username-or-email and password pair and issues a token.
func (a *AuthService) Login(ctx context.Context, login, password string) (*LoginResult, error) {
	logger := a.server.Logger

	admin, err := a.admins.FindByLogin(ctx, login)
	if errors.Is(err, store.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(a.dummyHash, []byte(password))
		logger.Info().Str("login", login).Msg("login failed: unknown admin")
		return nil, errs.NewUnauthorizedError(MsgInvalidCredentials, true)
	}
	if err != nil {
		return nil, err
	}

	if !admin.ComparePassword(password) {
		logger.Info().Str("login", login).Msg("login failed: wrong password")
		return nil, errs.NewUnauthorizedError(MsgInvalidCredentials, true)
	}

	signed, err := a.tokens.Issue(admin.ID.Hex(), admin.Username, admin.Email)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("username", admin.Username).Msg("admin logged in")

	return &LoginResult{Token: signed, Username: admin.Username, Email: admin.Email}, nil
}

// VerifyToken returns the principal carried by a bearer token.
func (a *AuthService) VerifyToken(raw string) (*token.Claims, error) {
	return a.tokens.Parse(raw)
}

// ProvisionResult describes the admin left after provisioning.
type ProvisionResult struct {
	Message  string `json:"message"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Created  bool   `json:"created"`
}

// ProvisionAdmin makes the given identity the only admin: an admin matching
// the username or email is updated, a new one is created otherwise, and
// every other admin is removed.
func (a *AuthService) ProvisionAdmin(ctx context.Context, username, email, password string) (*ProvisionResult, error) {
	admin, err := a.admins.FindByLogin(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		admin, err = a.admins.FindByLogin(ctx, email)
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	created := admin == nil

	all, err := a.admins.List(ctx)
	if err != nil {
		return nil, err
	}
	removed := 0
	for _, other := range all {
		if admin != nil && other.ID == admin.ID {
			continue
		}
		if err := a.admins.Delete(ctx, other.ID.Hex()); err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		removed++
	}

	if created {
		admin = &model.Admin{}
	}
	admin.Username = username
	admin.Email = email
	if err := admin.SetPassword(password); err != nil {
		return nil, err
	}

	if created {
		err = a.admins.Create(ctx, admin)
	} else {
		err = a.admins.Save(ctx, admin)
	}
	if err != nil {
		return nil, err
	}

	a.server.Logger.Info().
		Str("username", username).
		Bool("created", created).
		Int("removed", removed).
		Msg("admin account provisioned")

	message := "Admin account updated"
	if created {
		message = "Admin account created"
	}

	return &ProvisionResult{Message: message, Username: username, Email: email, Created: created}, nil
}

// InitAdmin provisions the configured admin when secret matches the
// configured init secret.
func (a *AuthService) InitAdmin(ctx context.Context, secret string) (*ProvisionResult, error) {
	cfg := a.server.Config.Auth

	if cfg.InitSecret == "" {
		return nil, errs.NewForbiddenError(MsgInitDisabled, true)
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(cfg.InitSecret)) != 1 {
		return nil, errs.NewUnauthorizedError(MsgInvalidInitSecret, true)
	}
	if !cfg.HasAdminIdentity() {
		return nil, errs.NewInternalServerError().WithMessage("Admin credentials are not configured")
	}

	return a.ProvisionAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
}

// EnsureDefaultAdmin creates the configured admin when no admin exists.
// An existing admin is never touched.
func (a *AuthService) EnsureDefaultAdmin(ctx context.Context) (bool, error) {
	cfg := a.server.Config.Auth
	if !cfg.HasAdminIdentity() {
		return false, nil
	}

	n, err := a.admins.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	if _, err := a.ProvisionAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return false, err
	}
	return true, nil
}
