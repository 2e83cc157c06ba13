package main

import (
	"context"
	"time"
)

// This file contains mocks definitions needed to perform unit tests.

type MockCatalogStorage struct {
	LoadFunc func(ctx context.Context) (Catalog, error)
	SaveFunc func(ctx context.Context, catalog Catalog) error
}

// Load mocks the behavior of loading the whole catalog by the storage.
func (m *MockCatalogStorage) Load(ctx context.Context) (Catalog, error) {
	return m.LoadFunc(ctx)
}

// Save mocks the behavior of persisting the whole catalog by the storage.
func (m *MockCatalogStorage) Save(ctx context.Context, catalog Catalog) error {
	return m.SaveFunc(ctx, catalog)
}

// NewMemoryCatalogStorage provides a catalog storage backed by an
// in-memory map. It keeps whatever was last saved so service level
// tests can chain mutations without touching the filesystem.
func NewMemoryCatalogStorage(initial Catalog) *MockCatalogStorage {
	stored := initial
	if stored == nil {
		stored = Catalog{}
	}
	return &MockCatalogStorage{
		LoadFunc: func(ctx context.Context) (Catalog, error) {
			return stored, nil
		},
		SaveFunc: func(ctx context.Context, catalog Catalog) error {
			stored = catalog
			return nil
		},
	}
}

type MockUserStore struct {
	LoadFunc func(ctx context.Context) (map[string]Credential, error)
}

// Load mocks the behavior of loading the credentials document.
func (m *MockUserStore) Load(ctx context.Context) (map[string]Credential, error) {
	return m.LoadFunc(ctx)
}

type MockAuthService struct {
	AuthenticateFunc func(ctx context.Context, username, password string) (Credential, error)
	IssueTokenFunc   func(username string) (string, error)
	VerifyTokenFunc  func(tokenString string) (*Claims, error)
}

// Authenticate mocks the credentials check of the auth service.
func (m *MockAuthService) Authenticate(ctx context.Context, username, password string) (Credential, error) {
	return m.AuthenticateFunc(ctx, username, password)
}

// IssueToken mocks the token issuance of the auth service.
func (m *MockAuthService) IssueToken(username string) (string, error) {
	return m.IssueTokenFunc(username)
}

// VerifyToken mocks the token verification of the auth service.
func (m *MockAuthService) VerifyToken(tokenString string) (*Claims, error) {
	return m.VerifyTokenFunc(tokenString)
}

// MockClocker implements a fake Clocker.
type MockClocker struct {
	MockNow time.Time
}

// NewMockClocker returns a mocked instance with fixed time.
func NewMockClocker() *MockClocker {
	return &MockClocker{time.Date(2023, 0o7, 0o2, 0o0, 0o0, 0o0, 0o00000000, time.UTC)}
}

// Now returns an already defined time to be used as mock. This
// equals to `Sun, 02 Jul 2023 00:00:00 UTC` in time.RFC1123 format.
// equals to `2023-07-02 00:00:00 +0000 UTC` in String format.
func (mck *MockClocker) Now() time.Time {
	return mck.MockNow
}

// MockUIDHandler implements a fake UIDHandler.
type MockUIDHandler struct {
	MockedUID string
	Valid     bool
}

// NewMockUIDHandler returns a mocked instance with predictable id.
func NewMockUIDHandler(id string, valid bool) *MockUIDHandler {
	return &MockUIDHandler{MockedUID: id, Valid: valid}
}

// Generate constructs a predictable id to be used as mock.
func (muid *MockUIDHandler) Generate(prefix string) string {
	return prefix + ":" + muid.MockedUID
}

// IsValid mocks IsValid behavior by providing configured status.
func (muid *MockUIDHandler) IsValid(_, _ string) bool {
	return muid.Valid
}
