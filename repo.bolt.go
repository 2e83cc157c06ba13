package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

type boltCatalogStorage struct {
	logger *zap.Logger
	client *bolt.DB
	config *BoltDBConfig
}

// GetBoltDBClient setup the database and the bucket then provides a ready to use client.
func GetBoltDBClient(config *Config) (*bolt.DB, error) {
	db, err := bolt.Open(config.BoltDB.FilePath, 0o600, &bolt.Options{Timeout: config.BoltDB.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open the database, %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, errB := tx.CreateBucketIfNotExists([]byte(config.BoltDB.BucketName)); errB != nil {
			return fmt.Errorf("failed to create %s bucket: %v", config.BoltDB.BucketName, errB)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up bucket: %v", err)
	}
	return db, nil
}

// NewBoltCatalogStorage provides a bolt-backed catalog storage. Each
// author is a key of the bucket and its value is the JSON-encoded book
// sequence, so Load and Save still operate on the whole catalog.
func NewBoltCatalogStorage(logger *zap.Logger, boltConfig *BoltDBConfig, client *bolt.DB) CatalogStorage {
	return &boltCatalogStorage{
		logger: logger,
		client: client,
		config: boltConfig,
	}
}

// Close shuts down the bolt-backed catalog storage.
func (bs *boltCatalogStorage) Close() error {
	return bs.client.Close()
}

// Load rebuilds the full catalog from the bucket. An author entry which
// cannot be decoded is dropped from the result and logged, keeping the
// fail-open contract of the file backend.
func (bs *boltCatalogStorage) Load(_ context.Context) (Catalog, error) {
	catalog := Catalog{}
	tx, err := bs.client.Begin(false)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	c := tx.Bucket([]byte(bs.config.BucketName)).Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var books []Book
		if err = json.Unmarshal(v, &books); err != nil {
			bs.logger.Warn("storage: malformed author entry in bolt bucket",
				zap.String("catalog.author", string(k)),
				zap.Error(err),
			)
			continue
		}
		catalog[string(k)] = books
	}
	return catalog, nil
}

// Save replaces the whole bucket content with the provided catalog.
func (bs *boltCatalogStorage) Save(_ context.Context, catalog Catalog) error {
	return bs.client.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bs.config.BucketName)); err != nil {
			return err
		}
		bucket, err := tx.CreateBucket([]byte(bs.config.BucketName))
		if err != nil {
			return err
		}
		for author, books := range catalog {
			booksBytes, err := json.Marshal(books)
			if err != nil {
				return err
			}
			if err = bucket.Put([]byte(author), booksBytes); err != nil {
				return err
			}
		}
		return nil
	})
}
