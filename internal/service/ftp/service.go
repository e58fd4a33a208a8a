// Package ftp lists, reads and writes CSV files on FTP servers.
package ftp

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"iolib/internal/domain"
	"iolib/internal/tabular"
)

// ConnectOptions describe one FTP session.
type ConnectOptions struct {
	Host     string
	User     string
	Password string
	Timeout  time.Duration
	// TLS switches to explicit FTPS. TLSConfig is used when set.
	TLS       bool
	TLSConfig *tls.Config
}

// Dialer opens an authenticated session.
type Dialer func(ctx context.Context, opts ConnectOptions) (domain.FileTransfer, error)

// Service runs one session per call.
type Service struct {
	dial   Dialer
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(dial Dialer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{dial: dial, logger: logger}
}

// List returns the entries of dir as a frame with a single name column.
// Names are relative to dir.
func (s *Service) List(ctx context.Context, opts ConnectOptions, dir string) (_ *domain.Frame, err error) {
	if dir == "" {
		dir = "/"
	}
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}

	conn, err := s.connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer s.quit(conn, &err)

	names, err := conn.NameList(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	f := domain.NewFrame("name")
	for _, n := range names {
		f.Append(strings.Replace(n, dir, "", 1))
	}
	return f, nil
}

// Read retrieves a CSV file into a frame.
func (s *Service) Read(ctx context.Context, opts ConnectOptions, path string, csv tabular.CSVOptions) (_ *domain.Frame, err error) {
	if err := checkFormat(path); err != nil {
		return nil, err
	}

	conn, err := s.connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer s.quit(conn, &err)

	var buf bytes.Buffer
	if err := conn.Retrieve(path, &buf); err != nil {
		return nil, fmt.Errorf("retrieve %s: %w", path, err)
	}
	f, err := tabular.ReadCSV(&buf, csv)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return f, nil
}

// Write stores f as a CSV file at path, header first and without an index.
func (s *Service) Write(ctx context.Context, opts ConnectOptions, f *domain.Frame, path string, csv tabular.CSVOptions) (err error) {
	if err := checkFormat(path); err != nil {
		return err
	}
	if f == nil {
		f = &domain.Frame{}
	}
	data, err := tabular.EncodeCSV(f, csv)
	if err != nil {
		return err
	}

	conn, err := s.connect(ctx, opts)
	if err != nil {
		return err
	}
	defer s.quit(conn, &err)

	if err := conn.Store(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("store %s: %w", path, err)
	}
	s.logger.Debug("file stored", "host", opts.Host, "path", path, "bytes", len(data))
	return nil
}

func (s *Service) connect(ctx context.Context, opts ConnectOptions) (domain.FileTransfer, error) {
	if opts.Host == "" {
		return nil, domain.ErrValidation(domain.ErrInvalidInput, "host is required")
	}
	conn, err := s.dial(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", opts.Host, err)
	}
	return conn, nil
}

// quit ends the session, reporting its error only when the call itself
// succeeded.
func (s *Service) quit(conn domain.FileTransfer, err *error) {
	if qerr := conn.Quit(); qerr != nil {
		if *err == nil {
			*err = fmt.Errorf("quit: %w", qerr)
			return
		}
		s.logger.Debug("quit failed", "error", qerr)
	}
}

func checkFormat(path string) error {
	if !tabular.IsCSV(path) {
		return domain.ErrValidation(domain.ErrUnsupportedFormat, "Unsupported file format")
	}
	return nil
}
