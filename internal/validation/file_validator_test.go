package validation

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator() *FileValidator {
	return NewFileValidator(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestValidateDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(file, []byte("<html></html>"), 0644))

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "directory", path: dir},
		{name: "missing", path: filepath.Join(dir, "absent"), wantErr: true},
		{name: "file", path: file, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newValidator().ValidateDirectory(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(file, []byte("<html></html>"), 0644))

	v := newValidator()
	assert.NoError(t, v.ValidateFile(file))
	assert.ErrorIs(t, v.ValidateFile(filepath.Join(dir, "absent.html")), os.ErrNotExist)
	assert.Error(t, v.ValidateFile(dir))
}
