// Package drive lists files on the file-hosting service and reconciles the
// permissions of its items.
package drive

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"iolib/internal/domain"
)

// FormatSearchQuery renders q as a files.list search expression. Filters are
// joined with " and "; an empty query matches everything.
func FormatSearchQuery(q domain.FileQuery) string {
	var parts []string
	if q.Name != "" {
		parts = append(parts, fmt.Sprintf("name = %q", q.Name))
	}
	if q.FolderID != "" {
		parts = append(parts, fmt.Sprintf("%q in parents", q.FolderID))
	}
	if q.MIMEType != "" {
		parts = append(parts, fmt.Sprintf("mimeType = %q", q.MIMEType))
	}
	return strings.Join(parts, " and ")
}

// Service lists and manages files.
type Service struct {
	files  domain.DriveFiles
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(files domain.DriveFiles, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{files: files, logger: logger}
}

// Find returns the files matching q.
func (s *Service) Find(ctx context.Context, q domain.FileQuery) ([]domain.DriveFile, error) {
	files, err := s.files.ListFiles(ctx, FormatSearchQuery(q), q.DriveID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

// List returns the files matching q as a frame with the columns kind, id,
// name and mime_type.
func (s *Service) List(ctx context.Context, q domain.FileQuery) (*domain.Frame, error) {
	files, err := s.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	return domain.DriveFilesFrame(files), nil
}

// Create creates an empty file and returns its id.
func (s *Service) Create(ctx context.Context, f domain.DriveFile) (string, error) {
	id, err := s.files.CreateFile(ctx, f)
	if err != nil {
		return "", fmt.Errorf("create file %q: %w", f.Name, err)
	}
	s.logger.Debug("file created", "name", f.Name, "id", id, "mime_type", f.MIMEType)
	return id, nil
}

// Delete removes a file.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.files.DeleteFile(ctx, id); err != nil {
		return fmt.Errorf("delete file %s: %w", id, err)
	}
	s.logger.Debug("file deleted", "id", id)
	return nil
}
