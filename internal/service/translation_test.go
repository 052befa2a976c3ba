package service_test

import (
	"context"
	"net/http"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/portfolio-api/internal/service"
)

func TestTranslationSaveValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		language string
		data     map[string]any
		message  string
	}{
		{"missing language", "", map[string]any{"a": "b"}, service.MsgLanguageAndDataRequired},
		{"missing data", "en", nil, service.MsgLanguageAndDataRequired},
		{"empty data", "en", map[string]any{}, service.MsgLanguageAndDataRequired},
		{"unsupported language", "de", map[string]any{"a": "b"}, service.MsgInvalidLanguage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.services.Translations.Save(ctx, tt.language, tt.data)
			requireHTTPError(t, err, http.StatusBadRequest, tt.message)
		})
	}

	list, err := f.services.Translations.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTranslationImport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	loader := &service.DirLoader{FS: fstest.MapFS{
		"en/translation.json": {Data: []byte(`{"nav": {"home": "Home"}, "title": "Portfolio"}`)},
		"ru/translation.json": {Data: []byte(`{not json`)},
	}}
	svc := service.NewTranslationService(f.server, f.repos.Translations, loader)

	t.Run("imports a bundle", func(t *testing.T) {
		tr, err := svc.Import(ctx, "en")
		require.NoError(t, err)
		assert.Equal(t, "en", tr.Language)

		stored, err := svc.Get(ctx, "en")
		require.NoError(t, err)
		assert.Equal(t, "Portfolio", stored.Data["title"])
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := svc.Import(ctx, "ru")
		requireHTTPError(t, err, http.StatusBadRequest, "")
	})

	t.Run("unsupported language", func(t *testing.T) {
		_, err := svc.Import(ctx, "fr")
		requireHTTPError(t, err, http.StatusBadRequest, service.MsgInvalidLanguage)
	})

	t.Run("missing file", func(t *testing.T) {
		empty := service.NewTranslationService(f.server, f.repos.Translations, &service.DirLoader{FS: fstest.MapFS{}})
		_, err := empty.Import(ctx, "en")
		requireHTTPError(t, err, http.StatusNotFound, "")
	})
}
