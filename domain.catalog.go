package main

import "context"

// Book represents a single catalog entry. Two books sharing the same
// author and title are indistinguishable.
type Book struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Pages  int    `json:"pages"`
	Image  string `json:"image"`
}

// Catalog maps an author name to the ordered sequence of its books.
// Order within a sequence reflects insertion order.
type Catalog map[string][]Book

// Credential represents a stored user record. The hashed_password field
// name is kept for document compatibility even though the value is
// compared as-is.
type Credential struct {
	Username       string `json:"username"`
	HashedPassword string `json:"hashed_password"`
}

// CatalogStorage defines the load/save contract every catalog backend
// must honor. Load never fails on a missing or corrupt document: it
// reports an empty catalog and leaves a trace in the logs.
type CatalogStorage interface {
	Load(ctx context.Context) (Catalog, error)
	Save(ctx context.Context, catalog Catalog) error
}

// UserStore defines the read-only access to the credentials document.
type UserStore interface {
	Load(ctx context.Context) (map[string]Credential, error)
}
