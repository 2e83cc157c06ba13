package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// HCatalog is the redis hash holding the catalog. Each field is an
// author name and its value the JSON-encoded book sequence.
const HCatalog string = "catalog"

type redisCatalogStorage struct {
	logger *zap.Logger
	client *redis.Client
}

// NewRedisCatalogStorage provides a redis-backed catalog storage.
func NewRedisCatalogStorage(logger *zap.Logger, client *redis.Client) CatalogStorage {
	return &redisCatalogStorage{
		logger: logger,
		client: client,
	}
}

// GetRedisClient provides a ready to use redis client.
func GetRedisClient(config *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", config.Redis.Host, config.Redis.Port),
		DialTimeout:  config.Redis.DialTimeout,
		ReadTimeout:  config.Redis.ReadTimeout,
		WriteTimeout: config.Redis.WriteTimeout,
		PoolSize:     config.Redis.PoolSize,
		PoolTimeout:  config.Redis.PoolTimeout,
		Password:     config.Redis.Password,
		Username:     config.Redis.Username,
		DB:           config.Redis.DatabaseIndex,
	})

	// test connection.
	if pong, err := client.Ping(context.Background()).Result(); pong != "PONG" || err != nil {
		return client, fmt.Errorf("test connection failed: %v", err)
	}
	return client, nil
}

// Load rebuilds the full catalog from the hash. A field which cannot be
// decoded is dropped and logged rather than failing the whole load.
func (rs *redisCatalogStorage) Load(ctx context.Context) (Catalog, error) {
	fields, err := rs.client.HGetAll(ctx, HCatalog).Result()
	if err != nil {
		return nil, err
	}
	catalog := Catalog{}
	for author, booksJSONString := range fields {
		var books []Book
		if err = json.Unmarshal([]byte(booksJSONString), &books); err != nil {
			rs.logger.Warn("storage: malformed author entry in redis hash",
				zap.String("catalog.author", author),
				zap.Error(err),
			)
			continue
		}
		catalog[author] = books
	}
	return catalog, nil
}

// Save replaces the whole hash content with the provided catalog. Both
// steps ride the same pipeline to keep the replacement close to atomic.
func (rs *redisCatalogStorage) Save(ctx context.Context, catalog Catalog) error {
	pipe := rs.client.TxPipeline()
	pipe.Del(ctx, HCatalog)
	for author, books := range catalog {
		booksBytes, err := json.Marshal(books)
		if err != nil {
			return err
		}
		pipe.HSet(ctx, HCatalog, author, booksBytes)
	}
	_, err := pipe.Exec(ctx)
	return err
}
