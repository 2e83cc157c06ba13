package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestFileCatalogStorage ensures the default backend round-trips the
// whole catalog document and stays fail-open on missing or corrupt files.
func TestFileCatalogStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.json")
	fs := NewFileCatalogStorage(zap.NewNop(), path)

	t.Run("missing document yields empty catalog", func(t *testing.T) {
		catalog, err := fs.Load(context.TODO())
		require.NoError(t, err)
		assert.Equal(t, Catalog{}, catalog)
	})

	t.Run("save then load returns the same catalog", func(t *testing.T) {
		catalog := Catalog{
			"Gabriel García Márquez": {
				{Title: "Cien años de soledad", Author: "Gabriel García Márquez", Pages: 417, Image: "static/img/book.jpg"},
			},
			"Ernest Hemingway": {
				{Title: "The Old Man & the Sea", Author: "Ernest Hemingway", Pages: 127, Image: "static/img/book.jpg"},
			},
		}
		err := fs.Save(context.TODO(), catalog)
		require.NoError(t, err)
		loaded, err := fs.Load(context.TODO())
		require.NoError(t, err)
		assert.Equal(t, catalog, loaded)
	})

	t.Run("corrupt document yields empty catalog", func(t *testing.T) {
		err := os.WriteFile(path, []byte("{not json"), 0o644)
		require.NoError(t, err)
		catalog, err := fs.Load(context.TODO())
		require.NoError(t, err)
		assert.Equal(t, Catalog{}, catalog)
	})
}

// TestFileUserStore ensures the credentials document loads and that a
// missing or corrupt one yields no users instead of an error.
func TestFileUserStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	us := NewFileUserStore(zap.NewNop(), path)

	t.Run("missing document yields no users", func(t *testing.T) {
		users, err := us.Load(context.TODO())
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("valid document loads users", func(t *testing.T) {
		doc := `{"jerome":{"username":"jerome","hashed_password":"fakehashedsecret"}}`
		err := os.WriteFile(path, []byte(doc), 0o644)
		require.NoError(t, err)
		users, err := us.Load(context.TODO())
		require.NoError(t, err)
		require.Contains(t, users, "jerome")
		assert.Equal(t, "fakehashedsecret", users["jerome"].HashedPassword)
	})

	t.Run("corrupt document yields no users", func(t *testing.T) {
		err := os.WriteFile(path, []byte("{not json"), 0o644)
		require.NoError(t, err)
		users, err := us.Load(context.TODO())
		require.NoError(t, err)
		assert.Empty(t, users)
	})
}
