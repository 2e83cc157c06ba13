package main

import (
	"context"
	"encoding/json"
	"os"

	"go.uber.org/zap"
)

type fileUserStore struct {
	logger *zap.Logger
	path   string
}

// NewFileUserStore provides the read-only credentials store. The service
// never writes this document.
func NewFileUserStore(logger *zap.Logger, path string) UserStore {
	return &fileUserStore{
		logger: logger,
		path:   path,
	}
}

// Load reads the credentials document with the same fail-open semantics
// as the catalog store: missing or malformed content yields no users.
func (us *fileUserStore) Load(_ context.Context) (map[string]Credential, error) {
	data, err := os.ReadFile(us.path)
	if os.IsNotExist(err) {
		return map[string]Credential{}, nil
	}
	if err != nil {
		return nil, err
	}
	users := map[string]Credential{}
	if err = json.Unmarshal(data, &users); err != nil {
		us.logger.Warn("storage: malformed users document. no user will authenticate",
			zap.String("storage.path", us.path),
			zap.Error(err),
		)
		return map[string]Credential{}, nil
	}
	return users, nil
}
