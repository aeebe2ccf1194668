package jobprofile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
[job]
query = "specialty coffee"
max_posts = 120
networks = ["Reddit", "Twitter"]

[analysis]
networks = ["Twitter"]
`)

	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "specialty coffee", p.Job.Query)
	assert.Equal(t, 120, p.Job.MaxPosts)
	assert.Equal(t, []string{"Reddit", "Twitter"}, p.Job.Networks)
	assert.Equal(t, []string{"Twitter"}, p.Analysis.Networks)

	req := p.StartRequest()
	assert.Equal(t, "specialty coffee", req.Query)
	assert.Equal(t, 120, req.MaxPosts)
}

func TestLoad_Defaults(t *testing.T) {
	p, err := Load(writeFile(t, "[job]\nquery = \"tea\"\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultMaxPosts, p.Job.MaxPosts)
	assert.Equal(t, DefaultNetworks, p.Job.Networks)
	assert.Empty(t, p.Analysis.Networks)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Load(writeFile(t, "[other]\nx = 1\n"))
	assert.ErrorContains(t, err, "[job] section not found")

	_, err = Load(writeFile(t, "[job\n"))
	assert.ErrorContains(t, err, "failed to read")
}

func TestLoadOptional(t *testing.T) {
	p, err := LoadOptional(filepath.Join(t.TempDir(), "missing.toml"))
	assert.NoError(t, err)
	assert.Nil(t, p)
}

func TestWrite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	profile := New("cold brew")
	profile.Analysis.Networks = []string{"LinkedIn"}

	require.NoError(t, Write(path, profile, false))
	assert.ErrorContains(t, Write(path, profile, false), "already exists")
	require.NoError(t, Write(path, profile, true))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, profile, loaded)
}
