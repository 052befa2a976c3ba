package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/portfolio-api/internal/model"
	"github.com/deppfellow/portfolio-api/internal/repository"
	"github.com/deppfellow/portfolio-api/internal/server"
)

type ProfileHandler struct {
	Handler
	repo *repository.ProfileRepository
}

func NewProfileHandler(s *server.Server, repo *repository.ProfileRepository) *ProfileHandler {
	return &ProfileHandler{Handler: NewHandler(s), repo: repo}
}

// Get returns the profile, creating it with defaults on first read.
func (h *ProfileHandler) Get(c echo.Context, _ *EmptyRequest) (*model.Profile, error) {
	return h.repo.Get(c.Request().Context())
}

func (h *ProfileHandler) Update(c echo.Context, req *ProfileRequest) (*model.Profile, error) {
	ctx := c.Request().Context()

	profile, err := h.repo.Get(ctx)
	if err != nil {
		return nil, err
	}

	profile.ProfilePhoto = fallback(req.ProfilePhoto, profile.ProfilePhoto)
	profile.ProfilePhotoAlt = fallback(req.ProfilePhotoAlt, profile.ProfilePhotoAlt)

	if err := h.repo.Save(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

type ResumeHandler struct {
	Handler
	repo *repository.ResumeRepository
}

func NewResumeHandler(s *server.Server, repo *repository.ResumeRepository) *ResumeHandler {
	return &ResumeHandler{Handler: NewHandler(s), repo: repo}
}

func (h *ResumeHandler) Get(c echo.Context, _ *EmptyRequest) (*model.Resume, error) {
	return h.repo.Get(c.Request().Context())
}

func (h *ResumeHandler) Update(c echo.Context, req *ResumeRequest) (*model.Resume, error) {
	ctx := c.Request().Context()

	resume, err := h.repo.Get(ctx)
	if err != nil {
		return nil, err
	}

	resume.File = fallback(req.File, resume.File)
	resume.FileURL = fallback(req.FileURL, resume.FileURL)
	resume.ExternalLink = fallback(req.ExternalLink, resume.ExternalLink)

	if err := h.repo.Save(ctx, resume); err != nil {
		return nil, err
	}

	h.server.Logger.Info().Msg("resume updated")
	return resume, nil
}

func fallback(value, previous string) string {
	if value == "" {
		return previous
	}
	return value
}
