package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/portfolio-api/internal/model"
	"github.com/deppfellow/portfolio-api/internal/repository"
	"github.com/deppfellow/portfolio-api/internal/server"
	"github.com/deppfellow/portfolio-api/internal/validation"
)

// Payload is a create or update body that builds a document of type T.
type Payload[T any] interface {
	validation.Validatable
	ResourceID() string
	Document() *T
}

// ResourceHandler serves list, get, create, update and delete for one
// identifier-keyed entity.
type ResourceHandler[T any, PT repository.Entity[T], Req Payload[T]] struct {
	Handler
	repo *repository.Repository[T, PT]
}

func NewResourceHandler[T any, PT repository.Entity[T], Req Payload[T]](s *server.Server, repo *repository.Repository[T, PT]) *ResourceHandler[T, PT, Req] {
	return &ResourceHandler[T, PT, Req]{
		Handler: NewHandler(s),
		repo:    repo,
	}
}

type (
	ProjectHandler = ResourceHandler[model.Project, *model.Project, *ProjectRequest]
	SkillHandler   = ResourceHandler[model.Skill, *model.Skill, *SkillRequest]
	ContactHandler = ResourceHandler[model.Contact, *model.Contact, *ContactRequest]
)

func (h *ResourceHandler[T, PT, Req]) List(c echo.Context, _ *EmptyRequest) ([]T, error) {
	return h.repo.List(c.Request().Context())
}

func (h *ResourceHandler[T, PT, Req]) Get(c echo.Context, req *IDRequest) (PT, error) {
	return h.repo.Get(c.Request().Context(), req.ID)
}

func (h *ResourceHandler[T, PT, Req]) Create(c echo.Context, req Req) (PT, error) {
	doc := PT(req.Document())
	if err := h.repo.Create(c.Request().Context(), doc); err != nil {
		return nil, err
	}

	h.server.Logger.Info().
		Str("entity", h.repo.Entity()).
		Str("id", doc.Meta().ID.Hex()).
		Msg("document created")
	return doc, nil
}

func (h *ResourceHandler[T, PT, Req]) Update(c echo.Context, req Req) (PT, error) {
	doc := PT(req.Document())
	if err := h.repo.Update(c.Request().Context(), req.ResourceID(), doc); err != nil {
		return nil, err
	}

	h.server.Logger.Info().
		Str("entity", h.repo.Entity()).
		Str("id", doc.Meta().ID.Hex()).
		Msg("document updated")
	return doc, nil
}

func (h *ResourceHandler[T, PT, Req]) Delete(c echo.Context, req *IDRequest) (*MessageResponse, error) {
	if err := h.repo.Delete(c.Request().Context(), req.ID); err != nil {
		return nil, err
	}
	return &MessageResponse{Message: h.repo.Entity() + " deleted successfully"}, nil
}
