package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	apperrors "nabii/internal/errors"
	"nabii/pkg/contracts/domain"
)

// DocumentInfo describes one dashboard document in the output directory
type DocumentInfo struct {
	Name      domain.Document `json:"name"`
	File      string          `json:"file"`
	Available bool            `json:"available"`
	Size      int64           `json:"size,omitempty"`
	Modified  *time.Time      `json:"modified,omitempty"`
}

// DocumentService reads the documents written by the processor
type DocumentService struct {
	dir    string
	logger *slog.Logger
}

// NewDocumentService creates a service over the output directory dir
func NewDocumentService(dir string, logger *slog.Logger) *DocumentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentService{
		dir:    dir,
		logger: logger.With(slog.String("service", "documents")),
	}
}

// Dir returns the output directory
func (s *DocumentService) Dir() string {
	return s.dir
}

// List reports every known document, present or not, in emission order
func (s *DocumentService) List(ctx context.Context) ([]DocumentInfo, error) {
	docs := domain.Documents()
	infos := make([]DocumentInfo, 0, len(docs))
	for _, doc := range docs {
		info, err := s.stat(doc)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}

	s.logger.DebugContext(ctx, "Documents listed", slog.Int("count", len(infos)))
	return infos, nil
}

// Get returns the raw JSON of the document called name
func (s *DocumentService) Get(ctx context.Context, name string) ([]byte, DocumentInfo, error) {
	doc := domain.Document(name)
	if !doc.IsValid() {
		return nil, DocumentInfo{}, apperrors.NewAppError(apperrors.ErrTypeNotFound,
			fmt.Sprintf("unknown document %q", name), apperrors.ErrUnknownDocument)
	}

	info, err := s.stat(doc)
	if err != nil {
		return nil, info, err
	}
	if !info.Available {
		return nil, info, apperrors.NewNotFoundError(fmt.Sprintf("document %q", name)).
			WithContext("file", info.File)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, info.File))
	if err != nil {
		return nil, info, apperrors.NewStorageError("failed to read document", err).WithContext("file", info.File)
	}

	s.logger.DebugContext(ctx, "Document served",
		slog.String("document", name),
		slog.Int("bytes", len(data)))
	return data, info, nil
}

// Available counts the documents present on disk
func (s *DocumentService) Available(ctx context.Context) (int, error) {
	infos, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, info := range infos {
		if info.Available {
			n++
		}
	}
	return n, nil
}

func (s *DocumentService) stat(doc domain.Document) (DocumentInfo, error) {
	info := DocumentInfo{Name: doc, File: doc.FileName()}

	fi, err := os.Stat(filepath.Join(s.dir, info.File))
	switch {
	case os.IsNotExist(err):
		return info, nil
	case err != nil:
		return info, apperrors.NewStorageError("failed to stat document", err).WithContext("file", info.File)
	case fi.IsDir():
		return info, nil
	}

	modified := fi.ModTime().UTC()
	info.Available = true
	info.Size = fi.Size()
	info.Modified = &modified
	return info, nil
}
