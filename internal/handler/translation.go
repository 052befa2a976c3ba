package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/portfolio-api/internal/model"
	"github.com/deppfellow/portfolio-api/internal/server"
	"github.com/deppfellow/portfolio-api/internal/service"
)

type TranslationHandler struct {
	Handler
	service *service.TranslationService
}

func NewTranslationHandler(s *server.Server, svc *service.TranslationService) *TranslationHandler {
	return &TranslationHandler{Handler: NewHandler(s), service: svc}
}

func (h *TranslationHandler) List(c echo.Context, req *ListTranslationsRequest) ([]model.Translation, error) {
	return h.service.List(c.Request().Context(), req.Language)
}

func (h *TranslationHandler) Get(c echo.Context, req *LanguageRequest) (*model.Translation, error) {
	return h.service.Get(c.Request().Context(), req.Language)
}

func (h *TranslationHandler) Save(c echo.Context, req *SaveTranslationRequest) (*model.Translation, error) {
	return h.service.Save(c.Request().Context(), req.TargetLanguage(), req.Data)
}

type ImportTranslationResponse struct {
	Message     string             `json:"message"`
	Translation *model.Translation `json:"translation"`
}

func (h *TranslationHandler) Import(c echo.Context, req *ImportTranslationRequest) (*ImportTranslationResponse, error) {
	translation, err := h.service.Import(c.Request().Context(), req.Language)
	if err != nil {
		return nil, err
	}
	return &ImportTranslationResponse{Message: service.MsgTranslationImported, Translation: translation}, nil
}

func (h *TranslationHandler) Delete(c echo.Context, req *LanguageRequest) (*MessageResponse, error) {
	if err := h.service.Delete(c.Request().Context(), req.Language); err != nil {
		return nil, err
	}
	return &MessageResponse{Message: "Translation deleted successfully"}, nil
}
