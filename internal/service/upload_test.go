package service_test

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/portfolio-api/internal/config"
	"github.com/deppfellow/portfolio-api/internal/service"
)

var (
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR"), bytes.Repeat([]byte{0}, 64)...)
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF\n")
)

func upload(name, contentType string, body []byte) service.Upload {
	return service.Upload{
		Filename:    name,
		ContentType: contentType,
		Size:        int64(len(body)),
		Body:        bytes.NewReader(body),
	}
}

func TestUploadImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.services.Uploads.Store(ctx, service.UploadImage, upload("Photo.PNG", "image/png", pngBytes), "http://localhost:8081/")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.Filename, "image-"))
	assert.True(t, strings.HasSuffix(res.Filename, ".png"))
	assert.Equal(t, "/uploads/"+res.Filename, res.URL)
	assert.Equal(t, "http://localhost:8081/uploads/"+res.Filename, res.FullURL)
	assert.Equal(t, "Photo.PNG", res.OriginalName)

	stored, err := os.ReadFile(filepath.Join(f.uploads, res.Filename))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)
}

func TestUploadDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.services.Uploads.Store(ctx, service.UploadDocument, upload("cv.pdf", "application/pdf", pdfBytes), "https://api.example.com")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Filename, "resume-"))
	assert.True(t, strings.HasSuffix(res.Filename, ".pdf"))

	res, err = f.services.Uploads.Store(ctx, service.UploadDocument, upload("me.png", "image/png", pngBytes), "https://api.example.com")
	require.NoError(t, err, "documents also accept images")
	assert.True(t, strings.HasPrefix(res.Filename, "resume-"))
}

func TestUploadRejections(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.Upload.MaxImageSize = 1 << 20 })
	ctx := context.Background()

	tests := []struct {
		name   string
		kind   service.UploadKind
		file   service.Upload
		status int
	}{
		{"pdf on the image path", service.UploadImage, upload("cv.pdf", "application/pdf", pdfBytes), http.StatusBadRequest},
		{"extension outside the allow-list", service.UploadImage, upload("photo.bmp", "image/png", pngBytes), http.StatusBadRequest},
		{"declared type outside the allow-list", service.UploadImage, upload("photo.png", "text/plain", pngBytes), http.StatusBadRequest},
		{"content does not match", service.UploadImage, upload("photo.png", "image/png", []byte("just some text")), http.StatusBadRequest},
		{"pdf named docx", service.UploadDocument, upload("cv.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", pdfBytes), http.StatusBadRequest},
		{"too large", service.UploadImage, service.Upload{Filename: "big.png", ContentType: "image/png", Size: 2 << 20, Body: bytes.NewReader(pngBytes)}, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.services.Uploads.Store(ctx, tt.kind, tt.file, "http://localhost")
			requireHTTPError(t, err, tt.status, "")
		})
	}

	entries, err := os.ReadDir(f.uploads)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected uploads are not stored")
}

func TestUploadDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.services.Uploads.Store(ctx, service.UploadImage, upload("a.png", "image/png", pngBytes), "http://localhost")
	require.NoError(t, err)

	require.NoError(t, f.services.Uploads.Delete(ctx, res.Filename))
	_, err = os.Stat(filepath.Join(f.uploads, res.Filename))
	assert.True(t, os.IsNotExist(err))

	err = f.services.Uploads.Delete(ctx, res.Filename)
	requireHTTPError(t, err, http.StatusNotFound, service.MsgFileNotFound)

	for _, name := range []string{"../secret", "a/b.png", `a\b.png`, "..", ""} {
		err := f.services.Uploads.Delete(ctx, name)
		requireHTTPError(t, err, http.StatusBadRequest, service.MsgInvalidName)
	}
}
