package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"

	"go.uber.org/zap"
)

type fileCatalogStorage struct {
	logger *zap.Logger
	path   string
}

// NewFileCatalogStorage provides the default catalog backend: a single
// JSON document mapping each author to its book sequence.
func NewFileCatalogStorage(logger *zap.Logger, path string) CatalogStorage {
	return &fileCatalogStorage{
		logger: logger,
		path:   path,
	}
}

// Load reads the whole catalog document. A missing or malformed document
// is treated as an empty catalog so the listing endpoints never fail, but
// the anomaly is logged instead of being silently swallowed.
func (fs *fileCatalogStorage) Load(_ context.Context) (Catalog, error) {
	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return Catalog{}, nil
	}
	if err != nil {
		return nil, err
	}
	catalog := Catalog{}
	if err = json.Unmarshal(data, &catalog); err != nil {
		fs.logger.Warn("storage: malformed catalog document. starting from empty catalog",
			zap.String("storage.path", fs.path),
			zap.Error(err),
		)
		return Catalog{}, nil
	}
	return catalog, nil
}

// Save serializes the full catalog back to the document, replacing the
// previous contents. Non-ASCII author and title values are preserved.
func (fs *fileCatalogStorage) Save(_ context.Context, catalog Catalog) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(catalog); err != nil {
		return err
	}
	return os.WriteFile(fs.path, buf.Bytes(), 0o644)
}
