package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/chordcraft/core/internal/domain/entities"
	"github.com/chordcraft/core/internal/infrastructure/logger"
	"github.com/chordcraft/core/internal/ports"
)

// JSONGateway persists the document as a single JSON file
type JSONGateway struct {
	path   string
	logger *logger.Logger
}

var _ ports.DocumentGateway = (*JSONGateway)(nil)

const dataFileMode os.FileMode = 0o644

// NewJSONGateway creates a gateway for the file at path
func NewJSONGateway(path string, logger *logger.Logger) *JSONGateway {
	return &JSONGateway{
		path:   path,
		logger: logger.WithComponent("json_gateway"),
	}
}

// Path returns the file backing the gateway
func (g *JSONGateway) Path() string {
	return g.path
}

// Load reads the document. A missing file yields an empty document, and an
// unparseable one yields an empty document marked recovered.
func (g *JSONGateway) Load(ctx context.Context) (entities.LoadResult, error) {
	if err := ctx.Err(); err != nil {
		return entities.LoadResult{}, err
	}

	raw, err := os.ReadFile(g.path)
	if errors.Is(err, fs.ErrNotExist) {
		return entities.LoadResult{Document: entities.NewDocument(), Outcome: entities.LoadMissing}, nil
	}
	if err != nil {
		return entities.LoadResult{}, fmt.Errorf("failed to read %s: %w", g.path, err)
	}

	doc, err := entities.DecodeDocument(raw)
	if err != nil {
		g.logger.Warnw("Discarding unreadable document", "path", g.path, "error", err)
		return entities.LoadResult{Document: entities.NewDocument(), Outcome: entities.LoadRecovered}, nil
	}

	return entities.LoadResult{Document: doc, Outcome: entities.LoadOK}, nil
}

// Save replaces the file atomically. The document is written to a temporary
// file in the same directory, synced, then renamed over the target.
func (g *JSONGateway) Save(ctx context.Context, doc entities.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := entities.EncodeDocument(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	dir := filepath.Dir(g.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(g.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	if err := tmp.Chmod(dataFileMode); err != nil {
		cleanup()
		return fmt.Errorf("failed to set temp file mode: %w", err)
	}
	if _, err := tmp.Write(payload); err != nil {
		cleanup()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, g.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", g.path, err)
	}

	g.logger.Debugw("Document saved", "path", g.path, "bytes", len(payload))
	return nil
}

// Close is a no-op; the file is not held open between calls.
func (g *JSONGateway) Close() error {
	return nil
}
