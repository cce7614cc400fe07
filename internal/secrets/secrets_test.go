// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string, perm os.FileMode) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	require.NoError(t, os.Chmod(path, perm))
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  Secrets
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, APIKey, "  tok_abc123  \n", 0o600)
				return dir
			},
			want: Secrets{APIKey: "tok_abc123"},
		},
		{
			name: "returns empty for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: Secrets{},
		},
		{
			name: "skips empty files, dotfiles and directories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, APIKey, "valid", 0o600)
				writeFile(t, dir, "empty-key", "   \n\t", 0o600)
				writeFile(t, dir, ".gitkeep", "", 0o600)
				require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o700))
				return dir
			},
			want: Secrets{APIKey: "valid"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t), zerolog.Nop())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadWarnsOnOpenPermissions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, APIKey, "tok", 0o644)

	var buf bytes.Buffer
	s, err := Load(dir, zerolog.New(&buf))
	require.NoError(t, err)
	assert.Equal(t, "tok", s.Get(APIKey))
	assert.Contains(t, buf.String(), "readable by other users")
	assert.NotContains(t, buf.String(), "tok\"")
}

func TestLoadNotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	writeFile(t, filepath.Dir(file), "file", "x", 0o600)

	_, err := Load(file, zerolog.Nop())
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	s := Secrets{"b": "2", "a": "1"}
	assert.Equal(t, []string{"a", "b"}, s.Keys())
	assert.Equal(t, "", s.Get("missing"))
}
