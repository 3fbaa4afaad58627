package exporter

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"nabii/internal/errors"
)

// DocumentWriter writes dashboard documents into one directory
type DocumentWriter struct {
	dir    string
	logger *slog.Logger
}

// NewDocumentWriter creates a writer for dir
func NewDocumentWriter(dir string, logger *slog.Logger) *DocumentWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentWriter{
		dir:    dir,
		logger: logger.With(slog.String("component", "document_writer")),
	}
}

// Dir returns the output directory
func (w *DocumentWriter) Dir() string {
	return w.dir
}

// Write serialises doc as indented JSON into name and returns the number of
// bytes written. The output carries no timestamps, so identical documents
// produce identical files.
func (w *DocumentWriter) Write(ctx context.Context, name string, doc interface{}) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return 0, errors.NewAggregationError("failed to encode document", err).WithContext("file", name)
	}
	data = append(data, '\n')

	path := filepath.Join(w.dir, name)
	err = replaceFile(path, func(f *os.File) error {
		_, err := f.Write(data)
		return err
	})
	if err != nil {
		return 0, errors.NewStorageError("failed to write document", err).WithContext("file", path)
	}

	w.logger.DebugContext(ctx, "Document written",
		slog.String("file", path),
		slog.Int("bytes", len(data)))
	return len(data), nil
}
