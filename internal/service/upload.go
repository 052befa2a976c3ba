package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/deppfellow/portfolio-api/internal/errs"
	"github.com/deppfellow/portfolio-api/internal/server"
	"github.com/deppfellow/portfolio-api/internal/storage"
)

const (
	MsgNoFileUploaded = "No file uploaded"
	MsgFileNotFound   = "File not found"
	MsgFileDeleted    = "File deleted successfully"
	MsgInvalidName    = "Invalid filename"
)

// UploadKind selects the allow-list and naming of an upload.
type UploadKind int

const (
	UploadImage UploadKind = iota
	UploadDocument
)

type fileRule struct {
	// declared MIME types accepted from the client for this extension
	declared []string
	// sniffed types (or any of their parents) the content must match
	sniffed []string
}

var imageRules = map[string]fileRule{
	".jpg":  {declared: []string{"image/jpeg", "image/jpg"}, sniffed: []string{"image/jpeg"}},
	".jpeg": {declared: []string{"image/jpeg", "image/jpg"}, sniffed: []string{"image/jpeg"}},
	".png":  {declared: []string{"image/png"}, sniffed: []string{"image/png"}},
	".gif":  {declared: []string{"image/gif"}, sniffed: []string{"image/gif"}},
	".webp": {declared: []string{"image/webp"}, sniffed: []string{"image/webp"}},
}

var documentRules = map[string]fileRule{
	".pdf": {declared: []string{"application/pdf"}, sniffed: []string{"application/pdf"}},
	".doc": {declared: []string{"application/msword"}, sniffed: []string{"application/msword", "application/x-ole-storage"}},
	".docx": {
		declared: []string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		sniffed:  []string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
	},
}

func (k UploadKind) rule(ext string) (fileRule, bool) {
	if r, ok := imageRules[ext]; ok {
		return r, true
	}
	if k == UploadDocument {
		r, ok := documentRules[ext]
		return r, ok
	}
	return fileRule{}, false
}

func (k UploadKind) prefix() string {
	if k == UploadDocument {
		return "resume-"
	}
	return "image-"
}

func (k UploadKind) rejection(received string) string {
	if k == UploadDocument {
		return "Only PDF, DOC, DOCX and image files are allowed. Received: " + received
	}
	return "Only image files are allowed (jpg, jpeg, png, gif, webp). Received: " + received
}

// Upload is a single file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}

// UploadResult is rendered as the upload response.
type UploadResult struct {
	URL          string `json:"url"`
	FullURL      string `json:"fullUrl"`
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
}

// UploadService validates uploads and hands them to blob storage.
type UploadService struct {
	server  *server.Server
	storage storage.Storage
	newID   func() string
}

func NewUploadService(s *server.Server) *UploadService {
	return &UploadService{server: s, storage: s.Storage, newID: uuid.NewString}
}

func (u *UploadService) maxSize(kind UploadKind) int64 {
	if kind == UploadDocument {
		return u.server.Config.Upload.MaxDocumentSize
	}
	return u.server.Config.Upload.MaxImageSize
}

// Store checks f against the allow-list of kind and saves it under a
// generated name. baseURL makes relative storage links absolute.
func (u *UploadService) Store(ctx context.Context, kind UploadKind, f Upload, baseURL string) (*UploadResult, error) {
	if limit := u.maxSize(kind); f.Size > limit {
		return nil, errs.NewPayloadTooLargeError(fmt.Sprintf("File too large. Maximum size is %d MB", limit>>20))
	}

	ext := strings.ToLower(filepath.Ext(f.Filename))
	declared := strings.ToLower(strings.TrimSpace(strings.Split(f.ContentType, ";")[0]))

	rule, ok := kind.rule(ext)
	if !ok || !slices.Contains(rule.declared, declared) {
		received := declared
		if received == "" {
			received = ext
		}
		return nil, errs.NewBadRequestError(kind.rejection(received), true, nil, nil)
	}

	sniffed, err := mimetype.DetectReader(f.Body)
	if err != nil {
		return nil, err
	}
	if !matchesAny(sniffed, rule.sniffed) {
		u.server.Logger.Warn().
			Str("filename", f.Filename).
			Str("declared", declared).
			Str("sniffed", sniffed.String()).
			Msg("upload content does not match its type")
		return nil, errs.NewBadRequestError(kind.rejection(sniffed.String()), true, nil, nil)
	}
	if _, err := f.Body.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	name := kind.prefix() + u.newID() + ext
	if err := u.storage.Save(ctx, name, declared, f.Body); err != nil {
		return nil, err
	}

	u.server.Logger.Info().
		Str("filename", name).
		Str("original_name", f.Filename).
		Int64("size", f.Size).
		Str("storage", u.storage.Name()).
		Msg("file uploaded")

	link := u.storage.URL(name)
	full := link
	if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
		full = strings.TrimRight(baseURL, "/") + link
	}

	return &UploadResult{URL: link, FullURL: full, Filename: name, OriginalName: f.Filename}, nil
}

// Delete removes a previously uploaded file by name.
func (u *UploadService) Delete(ctx context.Context, filename string) error {
	if filename == "" || filename == "." || strings.ContainsAny(filename, `/\`) || strings.Contains(filename, "..") {
		return errs.NewBadRequestError(MsgInvalidName, true, nil, nil)
	}

	err := u.storage.Delete(ctx, filename)
	if errors.Is(err, storage.ErrNotExist) {
		return errs.NewNotFoundError(MsgFileNotFound, true, nil)
	}
	if err != nil {
		return err
	}

	u.server.Logger.Info().Str("filename", filename).Msg("file deleted")
	return nil
}

func matchesAny(m *mimetype.MIME, accepted []string) bool {
	for ; m != nil; m = m.Parent() {
		for _, a := range accepted {
			if m.Is(a) {
				return true
			}
		}
	}
	return false
}
