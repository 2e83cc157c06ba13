package main

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// CatalogServiceProvider defines possible operations on the catalog.
type CatalogServiceProvider interface {
	GetAll(ctx context.Context) (Catalog, error)
	GetByAuthor(ctx context.Context, author string) ([]Book, error)
	Add(ctx context.Context, book Book) (Catalog, error)
	Update(ctx context.Context, book Book) error
	Delete(ctx context.Context, author, title string) error
}

// CatalogService implements the catalog operations on top of a storage
// backend. A single-writer mutex serializes every read-modify-write
// cycle so two concurrent mutations cannot silently overwrite each
// other's changes.
type CatalogService struct {
	logger  *zap.Logger
	config  *Config
	clock   Clocker
	storage CatalogStorage
	mu      sync.Mutex
}

func NewCatalogService(logger *zap.Logger, config *Config, clock Clocker, storage CatalogStorage) CatalogServiceProvider {
	return &CatalogService{
		logger:  logger,
		config:  config,
		clock:   clock,
		storage: storage,
	}
}

// GetAll returns the entire catalog grouped by author.
func (cs *CatalogService) GetAll(ctx context.Context) (Catalog, error) {
	return cs.storage.Load(ctx)
}

// GetByAuthor returns the author's book sequence or ErrAuthorNotFound.
func (cs *CatalogService) GetByAuthor(ctx context.Context, author string) ([]Book, error) {
	catalog, err := cs.storage.Load(ctx)
	if err != nil {
		return nil, err
	}
	books, ok := catalog[author]
	if !ok {
		return nil, ErrAuthorNotFound
	}
	return books, nil
}

// Add appends the book to its author's sequence, creating the author key
// when absent, and persists the updated catalog which is returned in full.
func (cs *CatalogService) Add(ctx context.Context, book Book) (Catalog, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	catalog, err := cs.storage.Load(ctx)
	if err != nil {
		return nil, err
	}
	catalog[book.Author] = append(catalog[book.Author], book)
	if err = cs.storage.Save(ctx, catalog); err != nil {
		return nil, err
	}
	cs.logger.Info("service: book added to catalog",
		zap.String("catalog.author", book.Author),
		zap.String("catalog.title", book.Title),
	)
	return catalog, nil
}

// Update replaces the first book matching the submitted author and title
// within that author's sequence. It reports ErrBookNotFound when no book
// matches.
func (cs *CatalogService) Update(ctx context.Context, book Book) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	catalog, err := cs.storage.Load(ctx)
	if err != nil {
		return err
	}
	books, ok := catalog[book.Author]
	if !ok {
		return ErrBookNotFound
	}
	for i := range books {
		if books[i].Title == book.Title {
			books[i] = book
			catalog[book.Author] = books
			if err = cs.storage.Save(ctx, catalog); err != nil {
				return err
			}
			cs.logger.Info("service: book updated in catalog",
				zap.String("catalog.author", book.Author),
				zap.String("catalog.title", book.Title),
			)
			return nil
		}
	}
	return ErrBookNotFound
}

// Delete removes the first book of the author whose title matches and
// persists the result. Unknown author and unknown title both report
// ErrBookNotFound without being distinguished.
func (cs *CatalogService) Delete(ctx context.Context, author, title string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	catalog, err := cs.storage.Load(ctx)
	if err != nil {
		return err
	}
	books, ok := catalog[author]
	if !ok {
		return ErrBookNotFound
	}
	for i := range books {
		if books[i].Title == title {
			catalog[author] = append(books[:i:i], books[i+1:]...)
			if err = cs.storage.Save(ctx, catalog); err != nil {
				return err
			}
			cs.logger.Info("service: book deleted from catalog",
				zap.String("catalog.author", author),
				zap.String("catalog.title", title),
			)
			return nil
		}
	}
	return ErrBookNotFound
}
