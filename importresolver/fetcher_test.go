package importresolver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFetcherReadsRelativeFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reset.css"), []byte("body { margin: 0; }"), 0o644))

	f := &DefaultFetcher{}
	opts := NewOptions(WithBasePath(dir))
	text, err := f.Fetch(context.Background(), "reset.css", opts)
	require.NoError(t, err)
	assert.Equal(t, "body { margin: 0; }", text)
}

func TestDefaultFetcherReadsFileSchemeAbsolute(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "base.css")
	require.NoError(t, os.WriteFile(full, []byte(".a { color: red; }"), 0o644))

	f := &DefaultFetcher{}
	opts := NewOptions()
	text, err := f.Fetch(context.Background(), "file://"+full, opts)
	require.NoError(t, err)
	assert.Equal(t, ".a { color: red; }", text)
}

func TestDefaultFetcherMissingFileReturnsNotFound(t *testing.T) {
	f := &DefaultFetcher{}
	opts := NewOptions(WithBasePath(t.TempDir()))
	_, err := f.Fetch(context.Background(), "missing.css", opts)
	require.Error(t, err)
	var ierr *ImportError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, ErrNotFound, ierr.Tag)
}

func TestDefaultFetcherRefusesSensitivePath(t *testing.T) {
	f := &DefaultFetcher{}
	opts := NewOptions()
	_, err := f.Fetch(context.Background(), "/etc/passwd", opts)
	require.Error(t, err)
	var ierr *ImportError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, ErrSensitivePath, ierr.Tag)
}

func TestDefaultFetcherRefusesUnsupportedScheme(t *testing.T) {
	f := &DefaultFetcher{}
	opts := NewOptions()
	_, err := f.Fetch(context.Background(), "ftp://example.com/a.css", opts)
	require.Error(t, err)
	var ierr *ImportError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, ErrDisallowedScheme, ierr.Tag)
}

func TestClassifyURL(t *testing.T) {
	cases := []struct {
		in       string
		scheme   string
		wantRest string
	}{
		{"file:///tmp/a.css", "file", "/tmp/a.css"},
		{"reset.css", "", "reset.css"},
		{"https://example.com/a.css", "https", "https://example.com/a.css"},
	}
	for _, c := range cases {
		scheme, rest := classifyURL(c.in)
		assert.Equal(t, c.scheme, scheme, c.in)
		assert.Equal(t, c.wantRest, rest, c.in)
	}
}
