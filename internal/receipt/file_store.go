package receipt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"better-being/internal/model"

	"github.com/rs/zerolog"
)

// fileStore implements Store on the local file system.
type fileStore struct {
	dir    string
	logger zerolog.Logger
}

// NewFileStore creates a receipt store rooted at dir.
func NewFileStore(dir string, logger zerolog.Logger) Store {
	return &fileStore{
		dir:    dir,
		logger: logger.With().Str("component", "receipt-file-store").Logger(),
	}
}

// Save writes the receipt to a temporary file and renames it into place so a
// reader never observes a partial receipt.
func (s *fileStore) Save(ctx context.Context, order *model.Order) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := Encode(New(order))
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.logger.Error().Err(err).Str("dir", s.dir).Msg("failed to create receipt directory")
		return "", fmt.Errorf("failed to create receipt directory %s: %w", s.dir, err)
	}

	path := filepath.Join(s.dir, Key(order.OrderNumber))

	tmp, err := os.CreateTemp(s.dir, ".receipt-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary receipt file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write receipt %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write receipt %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		s.logger.Error().Err(err).Str("file", path).Msg("failed to store receipt")
		return "", fmt.Errorf("failed to store receipt %s: %w", path, err)
	}

	s.logger.Debug().
		Str("file", path).
		Int("bytes", len(data)).
		Msg("receipt stored")

	return path, nil
}
