package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "nabii/internal/errors"
	"nabii/pkg/contracts/domain"
)

func writeDoc(t *testing.T, dir string, doc domain.Document, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, doc.FileName()), []byte(body), 0644))
}

func TestDocumentServiceList(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, domain.DocumentSDG, "[]\n")

	svc := NewDocumentService(dir, nil)
	infos, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, len(domain.Documents()))

	for i, doc := range domain.Documents() {
		assert.Equal(t, doc, infos[i].Name)
		assert.Equal(t, doc.FileName(), infos[i].File)
		if doc == domain.DocumentSDG {
			assert.True(t, infos[i].Available)
			assert.EqualValues(t, 3, infos[i].Size)
			assert.NotNil(t, infos[i].Modified)
		} else {
			assert.False(t, infos[i].Available, doc)
			assert.Nil(t, infos[i].Modified)
		}
	}

	n, err := svc.Available(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDocumentServiceGet(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, domain.DocumentCountry, `[{"country":"Zambia"}]`)
	svc := NewDocumentService(dir, nil)

	tests := []struct {
		name     string
		document string
		wantBody string
		wantType apperrors.ErrorType
	}{
		{name: "present", document: "country", wantBody: `[{"country":"Zambia"}]`},
		{name: "not generated", document: "sankey", wantType: apperrors.ErrTypeNotFound},
		{name: "unknown", document: "pie", wantType: apperrors.ErrTypeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, info, err := svc.Get(context.Background(), tt.document)
			if tt.wantType != "" {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, tt.wantType))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBody, string(data))
			assert.True(t, info.Available)
		})
	}

	_, _, err := svc.Get(context.Background(), "pie")
	assert.ErrorIs(t, err, apperrors.ErrUnknownDocument)
}

func TestHealthServiceDataStatus(t *testing.T) {
	dir := t.TempDir()
	svc := NewHealthService("1.0.0", NewDocumentService(dir, nil), nil)

	status := svc.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.0.0", status.Version)
	assert.Equal(t, "empty", status.Services["data"].(ServiceHealth).Status)

	writeDoc(t, dir, domain.DocumentSankey, "{}")
	assert.Equal(t, "partial", svc.HealthCheck(context.Background()).Services["data"].(ServiceHealth).Status)

	for _, doc := range domain.Documents() {
		writeDoc(t, dir, doc, "{}")
	}
	assert.Equal(t, "ready", svc.HealthCheck(context.Background()).Services["data"].(ServiceHealth).Status)

	noDocs := NewHealthService("1.0.0", nil, nil)
	assert.Equal(t, "unknown", noDocs.HealthCheck(context.Background()).Services["data"].(ServiceHealth).Status)
}
