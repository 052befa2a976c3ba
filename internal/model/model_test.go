package model_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/portfolio-api/internal/model"
)

func TestStringListUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  model.StringList
	}{
		{"null", `null`, model.StringList{}},
		{"single string", `"Go"`, model.StringList{"Go"}},
		{"blank string", `"  "`, model.StringList{}},
		{"array trimmed", `[" Go ", "", "Echo"]`, model.StringList{"Go", "Echo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got model.StringList
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.want, got)
		})
	}

	var bad model.StringList
	assert.Error(t, json.Unmarshal([]byte(`[1, 2]`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`{"a": "b"}`), &bad))
}

func TestStringListMarshalsNilAsEmpty(t *testing.T) {
	out, err := json.Marshal(model.Project{Title: "Site"})
	require.NoError(t, err)

	var rendered map[string]any
	require.NoError(t, json.Unmarshal(out, &rendered))
	assert.Equal(t, []any{}, rendered["technologies"])
	assert.Equal(t, []any{}, rendered["features"])
}

func TestAdminPassword(t *testing.T) {
	var admin model.Admin
	require.NoError(t, admin.SetPassword("hunter22"))

	assert.True(t, admin.ComparePassword("hunter22"))
	assert.False(t, admin.ComparePassword("hunter23"))

	out, err := json.Marshal(admin)
	require.NoError(t, err)
	assert.NotContains(t, string(out), admin.PasswordHash)
}

func TestIsLanguage(t *testing.T) {
	assert.True(t, model.IsLanguage("en"))
	assert.True(t, model.IsLanguage("ru"))
	assert.False(t, model.IsLanguage("de"))
	assert.False(t, model.IsLanguage(""))
}

func TestOrdinalUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  model.Ordinal
	}{
		{"number", `2`, 2},
		{"integral float", `3.0`, 3},
		{"numeric string", `"2"`, 2},
		{"padded string", `" 7 "`, 7},
		{"negative string", `"-1"`, -1},
		{"blank string", `""`, 0},
		{"null", `null`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := model.Ordinal(99)
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{`"two"`, `2.5`, `true`, `[1]`} {
		var o model.Ordinal
		assert.Error(t, json.Unmarshal([]byte(bad), &o), bad)
	}
}
