package main

import (
	"context"
	"net"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startRedisDockerContainer(t *testing.T) (string, func()) {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("Failed to start Dockertest: %+v", err)
	}

	err = pool.Client.Ping()
	if err != nil {
		t.Fatalf("Could not connect to Docker: %+v", err)
	}

	resource, err := pool.Run("redis", "7.0.10-alpine", nil)
	if err != nil {
		t.Fatalf("Failed to start redis: %+v", err)
	}

	// build address the container is listening on
	addr := net.JoinHostPort("localhost", resource.GetPort("6379/tcp"))

	// ensure to wait for the container to be ready
	err = pool.Retry(func() error {
		var e error
		client := redis.NewClient(&redis.Options{Addr: addr})
		defer client.Close()

		e = client.Ping(context.Background()).Err()
		return e
	})

	if err != nil {
		t.Fatalf("Failed to ping Redis: %+v", err)
	}

	destroyFunc := func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Failed to purge resource: %+v", err)
		}
	}

	return addr, destroyFunc
}

// TestRedisStore ensures the redis backend round-trips the whole catalog
// through the hash and that a save fully replaces the previous content.
func TestRedisStore(t *testing.T) {
	addr, destroyFunc := startRedisDockerContainer(t)
	defer destroyFunc()
	rs := NewRedisCatalogStorage(zap.NewNop(), redis.NewClient(&redis.Options{Addr: addr}))

	catalog := Catalog{
		"Chinua Achebe": {
			{Title: "Things Fall Apart", Author: "Chinua Achebe", Pages: 209, Image: "static/img/book.jpg"},
			{Title: "No Longer at Ease", Author: "Chinua Achebe", Pages: 194, Image: "static/img/book.jpg"},
		},
		"Frank Herbert": {
			{Title: "Dune", Author: "Frank Herbert", Pages: 412, Image: "static/img/book.jpg"},
		},
	}

	t.Run("Load Empty Catalog", func(t *testing.T) {
		// ensures an empty hash yields an empty catalog.
		loaded, err := rs.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, Catalog{}, loaded)
	})

	t.Run("Save Catalog", func(t *testing.T) {
		// ensures we can persist a whole catalog.
		err := rs.Save(context.Background(), catalog)
		assert.NoError(t, err)
	})

	t.Run("Load Catalog", func(t *testing.T) {
		// ensures we read back exactly what was saved.
		loaded, err := rs.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, catalog, loaded)
	})

	t.Run("Save Replaces Previous Content", func(t *testing.T) {
		// ensures stale authors disappear after a smaller save.
		kept := Catalog{"Frank Herbert": catalog["Frank Herbert"]}
		err := rs.Save(context.Background(), kept)
		require.NoError(t, err)
		loaded, err := rs.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, kept, loaded)
	})

	t.Run("Skips Malformed Author Entry", func(t *testing.T) {
		// ensures an undecodable hash field is dropped from the result.
		client := redis.NewClient(&redis.Options{Addr: addr})
		defer client.Close()
		err := client.HSet(context.Background(), HCatalog, "Broken Author", "{not json").Err()
		require.NoError(t, err)
		loaded, err := rs.Load(context.Background())
		require.NoError(t, err)
		_, ok := loaded["Broken Author"]
		assert.False(t, ok)
		assert.Contains(t, loaded, "Frank Herbert")
	})
}
