package storage_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/portfolio-api/internal/config"
	"github.com/deppfellow/portfolio-api/internal/storage"
)

// fakeBucket is a path-style S3 endpoint keeping object keys in memory.
type fakeBucket struct {
	mu      sync.Mutex
	objects map[string]bool
	methods []string
}

func (b *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, _ = io.Copy(io.Discard, r.Body)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.methods = append(b.methods, r.Method+" "+r.URL.Path)
	switch r.Method {
	case http.MethodPut:
		b.objects[r.URL.Path] = true
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodHead:
		if !b.objects[r.URL.Path] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(b.objects, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (b *fakeBucket) has(path string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.objects[path]
}

func (b *fakeBucket) calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.methods...)
}

func newS3(t *testing.T, cfg config.S3Config) *storage.S3 {
	t.Helper()

	cfg.Bucket = "portfolio"
	cfg.AccessKey = "key"
	cfg.SecretKey = "secret"
	log := zerolog.Nop()

	s, err := storage.NewS3(context.Background(), cfg, &log)
	require.NoError(t, err)
	return s
}

func TestS3URL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.S3Config
		file string
		want string
	}{
		{"bare key", config.S3Config{}, "image-1.png", "/uploads/image-1.png"},
		{"prefixed key", config.S3Config{KeyPrefix: "site"}, "image-1.png", "/uploads/site/image-1.png"},
		{"public base", config.S3Config{PublicBaseURL: "https://cdn.example.com/"}, "image-1.png", "https://cdn.example.com/image-1.png"},
		{"path is flattened", config.S3Config{KeyPrefix: "site", PublicBaseURL: "https://cdn.example.com"}, "../../etc/passwd", "https://cdn.example.com/site/passwd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, newS3(t, tt.cfg).URL(tt.file))
		})
	}
}

func TestS3SaveDelete(t *testing.T) {
	bucket := &fakeBucket{objects: map[string]bool{}}
	srv := httptest.NewServer(bucket)
	defer srv.Close()

	s := newS3(t, config.S3Config{Endpoint: srv.URL, Region: "auto", KeyPrefix: "uploads"})
	assert.Equal(t, "s3", s.Name())
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "resume-1.pdf", "application/pdf", strings.NewReader("%PDF-1.4")))
	assert.True(t, bucket.has("/portfolio/uploads/resume-1.pdf"))

	require.NoError(t, s.Delete(ctx, "resume-1.pdf"))
	assert.False(t, bucket.has("/portfolio/uploads/resume-1.pdf"))

	assert.ErrorIs(t, s.Delete(ctx, "resume-1.pdf"), storage.ErrNotExist)
	assert.Contains(t, bucket.calls(), "DELETE /portfolio/uploads/resume-1.pdf")
}
