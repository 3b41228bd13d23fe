package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadParserConfigDefaults(t *testing.T) {
	path := writeTemp(t, "parser.yaml", "raise_parse_errors: true\n")
	cfg, err := LoadParserConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.SelectorLists)
	assert.True(t, cfg.RaiseParseErrors)
}

func TestLoadParserConfigRejectsUnknownFields(t *testing.T) {
	path := writeTemp(t, "parser.yaml", "bogus_field: true\n")
	_, err := LoadParserConfig(path)
	assert.Error(t, err)
}

func TestLoadParserConfigValidatesBaseURI(t *testing.T) {
	path := writeTemp(t, "parser.yaml", "base_uri: \"::not a url::\"\n")
	_, err := LoadParserConfig(path)
	assert.Error(t, err)
}

func TestLoadImportConfigDefaults(t *testing.T) {
	path := writeTemp(t, "import.yaml", "max_depth: 3\n")
	cfg, err := LoadImportConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxDepth)
	assert.Equal(t, []string{"https"}, cfg.AllowedSchemes)
	assert.Equal(t, 10, cfg.TimeoutSeconds)
	assert.Equal(t, 10, cfg.MaxRedirects)
}

func TestLoadImportConfigRejectsBadScheme(t *testing.T) {
	path := writeTemp(t, "import.yaml", "allowed_schemes: [\"gopher\"]\n")
	_, err := LoadImportConfig(path)
	assert.Error(t, err)
}

func TestLoadImportConfigRejectsZeroMaxDepth(t *testing.T) {
	path := writeTemp(t, "import.yaml", "max_depth: 0\n")
	_, err := LoadImportConfig(path)
	assert.Error(t, err)
}

func TestParserConfigToOptions(t *testing.T) {
	cfg := ParserConfig{SelectorLists: false, RaiseParseErrors: true}
	opts := cfg.ParserOptions()
	assert.Len(t, opts, 2)
}

func TestImportConfigToOptions(t *testing.T) {
	cfg := defaultImportConfig()
	opts := cfg.ImportOptions()
	assert.Len(t, opts, 8)
}
