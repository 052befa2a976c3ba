package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/portfolio-api/internal/errs"
	"github.com/deppfellow/portfolio-api/internal/server"
	"github.com/deppfellow/portfolio-api/internal/service"
)

const uploadField = "file"

type UploadHandler struct {
	Handler
	service *service.UploadService
}

func NewUploadHandler(s *server.Server, svc *service.UploadService) *UploadHandler {
	return &UploadHandler{Handler: NewHandler(s), service: svc}
}

func (h *UploadHandler) UploadImage(c echo.Context, _ *EmptyRequest) (*service.UploadResult, error) {
	return h.store(c, service.UploadImage)
}

func (h *UploadHandler) UploadDocument(c echo.Context, _ *EmptyRequest) (*service.UploadResult, error) {
	return h.store(c, service.UploadDocument)
}

func (h *UploadHandler) store(c echo.Context, kind service.UploadKind) (*service.UploadResult, error) {
	header, err := c.FormFile(uploadField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, errs.NewBadRequestError(service.MsgNoFileUploaded, true, nil, nil)
		}
		return nil, errs.NewBadRequestError(service.MsgNoFileUploaded, true, nil, nil).
			WithDetail("MultipartError", err.Error())
	}

	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return h.service.Store(c.Request().Context(), kind, service.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get(echo.HeaderContentType),
		Size:        header.Size,
		Body:        file,
	}, h.baseURL(c))
}

// baseURL is the configured public URL, or the one the request came in on.
func (h *UploadHandler) baseURL(c echo.Context) string {
	if public := h.server.Config.Server.PublicURL; public != "" {
		return strings.TrimRight(public, "/")
	}
	return c.Scheme() + "://" + c.Request().Host
}

func (h *UploadHandler) Delete(c echo.Context, req *FilenameRequest) (*MessageResponse, error) {
	if err := h.service.Delete(c.Request().Context(), req.Filename); err != nil {
		return nil, err
	}
	return &MessageResponse{Message: service.MsgFileDeleted}, nil
}
