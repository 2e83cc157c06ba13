package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAPIHandler(as AuthServiceProvider, cs CatalogServiceProvider) *APIHandler {
	index := template.Must(template.New("index.html").Parse(`{{range $author, $books := .Library}}{{$author}};{{end}}`))
	return NewAPIHandler(
		zap.NewNop(),
		&Config{},
		&Statistics{started: NewMockClocker().Now()},
		NewMockClocker(),
		NewMockUIDHandler("abc", true),
		as,
		cs,
		index,
	)
}

// TestStatusHandler ensures api handler can provides its status.
func TestStatusHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	api := newTestAPIHandler(nil, nil)
	api.Status(w, req, httprouter.Params{})
	res := w.Result()
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/json; charset=UTF-8", res.Header.Get("Content-Type"))
	expected := `{"requestid":"", "status":"up & running since 0 mins", "message":"Hello. Library catalog api is available. Enjoy :)"}`
	assert.JSONEq(t, expected, string(data))
}

// TestIndexHandler ensures the home page renders the catalog grouped by
// author and stays up even when the storage is failing.
func TestIndexHandler(t *testing.T) {
	t.Run("should pass: renders authors", func(t *testing.T) {
		storage := NewMemoryCatalogStorage(Catalog{
			"Chinua Achebe": {{Title: "Things Fall Apart", Author: "Chinua Achebe", Pages: 209}},
		})
		cs := NewCatalogService(zap.NewNop(), nil, NewMockClocker(), storage)
		api := newTestAPIHandler(nil, cs)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		api.Index(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "text/html; charset=UTF-8", res.Header.Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "Chinua Achebe")
	})

	t.Run("should pass: storage failure falls back to empty catalog", func(t *testing.T) {
		broken := &MockCatalogStorage{
			LoadFunc: func(ctx context.Context) (Catalog, error) {
				return nil, errors.New("storage failure")
			},
		}
		cs := NewCatalogService(zap.NewNop(), nil, NewMockClocker(), broken)
		api := newTestAPIHandler(nil, cs)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		api.Index(w, req, httprouter.Params{})
		assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	})
}

// TestLoginHandler ensures the token endpoint keeps the OAuth2 password
// flow shapes on both success and failure.
func TestLoginHandler(t *testing.T) {
	users := map[string]Credential{
		"jerome": {Username: "jerome", HashedPassword: "fakehashedsecret"},
	}
	as := newTestAuthService("test.secret", NewClock(true), users)
	api := newTestAPIHandler(as, nil)

	login := func(username, password string) *httptest.ResponseRecorder {
		form := url.Values{"username": {username}, "password": {password}}
		req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		api.Login(w, req, httprouter.Params{})
		return w
	}

	t.Run("should pass: valid credentials", func(t *testing.T) {
		w := login("jerome", "fakehashedsecret")
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "application/json; charset=UTF-8", res.Header.Get("Content-Type"))

		var tr TokenResponse
		err := json.Unmarshal(w.Body.Bytes(), &tr)
		require.NoError(t, err)
		assert.Equal(t, "bearer", tr.TokenType)
		assert.NotEmpty(t, tr.AccessToken)

		// the issued token must verify against the same service.
		claims, err := as.VerifyToken(tr.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "jerome", claims.Subject)
	})

	t.Run("should fail: wrong password", func(t *testing.T) {
		w := login("jerome", "wrong")
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
		assert.JSONEq(t, `{"error":"incorrect username or password"}`, w.Body.String())
	})

	t.Run("should fail: unknown username", func(t *testing.T) {
		w := login("unknown", "fakehashedsecret")
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
		assert.JSONEq(t, `{"error":"incorrect username or password"}`, w.Body.String())
	})
}

// TestCreateBookHandler ensures api handler can add a book to the catalog.
//
//nolint:funlen
func TestCreateBookHandler(t *testing.T) {
	t.Run("should pass: valid payload", func(t *testing.T) {
		cs := NewCatalogService(zap.NewNop(), nil, NewMockClocker(), NewMemoryCatalogStorage(nil))
		api := newTestAPIHandler(nil, cs)
		payload := `{"title":"The Old Man and the Sea", "author":"Ernest Hemingway", "pages":127}`
		req := httptest.NewRequest(http.MethodPost, "/books/new", bytes.NewBufferString(payload))
		w := httptest.NewRecorder()
		api.CreateBook(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		data, err := io.ReadAll(res.Body)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, res.StatusCode)
		assert.Equal(t, "application/json; charset=UTF-8", res.Header.Get("Content-Type"))
		expected := `{"requestid":"", "status":201, "message":"Book created successfully.",
		"data":{"Ernest Hemingway":[{"title":"The Old Man and the Sea", "author":"Ernest Hemingway", "pages":127, "image":"static/img/book.jpg"}]}}`
		assert.JSONEq(t, expected, string(data))
	})

	t.Run("should fail: storage insertion failure", func(t *testing.T) {
		broken := &MockCatalogStorage{
			LoadFunc: func(ctx context.Context) (Catalog, error) {
				return nil, errors.New("storage failure")
			},
		}
		cs := NewCatalogService(zap.NewNop(), nil, NewMockClocker(), broken)
		api := newTestAPIHandler(nil, cs)
		payload := `{"title":"The Old Man and the Sea", "author":"Ernest Hemingway", "pages":127}`
		req := httptest.NewRequest(http.MethodPost, "/books/new", bytes.NewBufferString(payload))
		w := httptest.NewRecorder()
		api.CreateBook(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		data, err := io.ReadAll(res.Body)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
		expected := `{"requestid":"", "status":500, "message":"failed to create the book",
		"data":{"title":"The Old Man and the Sea", "author":"Ernest Hemingway", "pages":127, "image":"static/img/book.jpg"}}`
		assert.JSONEq(t, expected, string(data))
	})

	t.Run("should fail: invalid payload", func(t *testing.T) {
		cs := NewCatalogService(zap.NewNop(), nil, NewMockClocker(), NewMemoryCatalogStorage(nil))
		api := newTestAPIHandler(nil, cs)
		payload := `{"title":1, "author":"Ernest Hemingway", "pages":127}`
		req := httptest.NewRequest(http.MethodPost, "/books/new", bytes.NewBufferString(payload))
		w := httptest.NewRecorder()
		api.CreateBook(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		data, err := io.ReadAll(res.Body)
		assert.NoError(t, err)
		expected := `{"requestid":"", "status":400, "message":"failed to create the book",
		"data":{"title":"", "author":"", "pages":0, "image":""}}`
		assert.JSONEq(t, expected, string(data))
	})

	t.Run("should fail: rejected field in payload", func(t *testing.T) {
		testCases := []struct {
			name     string
			payload  string
			expected string
		}{
			{
				name:     "missing title",
				payload:  `{"author":"Ernest Hemingway", "pages":127}`,
				expected: `{"requestid":"", "status":400, "message":"failed to create the book", "data":"title is required"}`,
			},
			{
				name:     "missing author",
				payload:  `{"title":"The Old Man and the Sea", "pages":127}`,
				expected: `{"requestid":"", "status":400, "message":"failed to create the book", "data":"author is required"}`,
			},
			{
				name:     "single character title",
				payload:  `{"title":"a", "author":"Ernest Hemingway", "pages":127}`,
				expected: `{"requestid":"", "status":400, "message":"failed to create the book", "data":"title must be between 2 and 100 characters"}`,
			},
			{
				name:     "too few pages",
				payload:  `{"title":"The Old Man and the Sea", "author":"Ernest Hemingway", "pages":5}`,
				expected: `{"requestid":"", "status":400, "message":"failed to create the book", "data":"pages must be greater than 10"}`,
			},
		}

		cs := NewCatalogService(zap.NewNop(), nil, NewMockClocker(), NewMemoryCatalogStorage(nil))
		api := newTestAPIHandler(nil, cs)
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				req := httptest.NewRequest(http.MethodPost, "/books/new", bytes.NewBufferString(tc.payload))
				w := httptest.NewRecorder()
				api.CreateBook(w, req, httprouter.Params{})
				res := w.Result()
				defer res.Body.Close()
				assert.Equal(t, http.StatusBadRequest, res.StatusCode)
				data, err := io.ReadAll(res.Body)
				assert.NoError(t, err)
				assert.JSONEq(t, tc.expected, string(data))
			})
		}
	})
}

// TestUpdateBookHandler ensures the update endpoint replaces the matching
// record and reports a miss with 404.
func TestUpdateBookHandler(t *testing.T) {
	existing := Book{Title: "Dune", Author: "Frank Herbert", Pages: 412, Image: "static/img/book.jpg"}

	t.Run("should pass: existing book", func(t *testing.T) {
		storage := NewMemoryCatalogStorage(Catalog{"Frank Herbert": {existing}})
		cs := NewCatalogService(zap.NewNop(), nil, NewMockClocker(), storage)
		api := newTestAPIHandler(nil, cs)
		payload := `{"title":"Dune", "author":"Frank Herbert", "pages":600}`
		req := httptest.NewRequest(http.MethodPut, "/books/update", bytes.NewBufferString(payload))
		w := httptest.NewRecorder()
		api.UpdateBook(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)
		data, err := io.ReadAll(res.Body)
		assert.NoError(t, err)
		expected := `{"requestid":"", "status":200, "message":"book successfully updated!",
		"data":{"title":"Dune", "author":"Frank Herbert", "pages":600, "image":"static/img/book.jpg"}}`
		assert.JSONEq(t, expected, string(data))

		books, err := cs.GetByAuthor(context.TODO(), "Frank Herbert")
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, 600, books[0].Pages)
	})

	t.Run("should fail: missing book", func(t *testing.T) {
		cs := NewCatalogService(zap.NewNop(), nil, NewMockClocker(), NewMemoryCatalogStorage(nil))
		api := newTestAPIHandler(nil, cs)
		payload := `{"title":"Dune", "author":"Frank Herbert", "pages":600}`
		req := httptest.NewRequest(http.MethodPut, "/books/update", bytes.NewBufferString(payload))
		w := httptest.NewRecorder()
		api.UpdateBook(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
		data, err := io.ReadAll(res.Body)
		assert.NoError(t, err)
		expected := `{"requestid":"", "status":404, "message":"book not updated",
		"data":{"title":"Dune", "author":"Frank Herbert", "pages":600, "image":"static/img/book.jpg"}}`
		assert.JSONEq(t, expected, string(data))
	})
}

// TestDeleteBookHandler ensures the delete endpoint removes the matching
// record and keeps its query parameters mandatory.
func TestDeleteBookHandler(t *testing.T) {
	existing := Book{Title: "Kindred", Author: "Octavia Butler", Pages: 264, Image: "static/img/book.jpg"}

	t.Run("should pass: existing book", func(t *testing.T) {
		storage := NewMemoryCatalogStorage(Catalog{"Octavia Butler": {existing}})
		cs := NewCatalogService(zap.NewNop(), nil, NewMockClocker(), storage)
		api := newTestAPIHandler(nil, cs)
		req := httptest.NewRequest(http.MethodDelete, "/books/delete?author=Octavia+Butler&title=Kindred", nil)
		w := httptest.NewRecorder()
		api.DeleteBook(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)
		data, err := io.ReadAll(res.Body)
		assert.NoError(t, err)
		expected := `{"requestid":"", "status":200, "message":"book successfully deleted!", "data":{}}`
		assert.JSONEq(t, expected, string(data))
	})

	t.Run("should fail: missing query parameters", func(t *testing.T) {
		cs := NewCatalogService(zap.NewNop(), nil, NewMockClocker(), NewMemoryCatalogStorage(nil))
		api := newTestAPIHandler(nil, cs)
		req := httptest.NewRequest(http.MethodDelete, "/books/delete?author=Octavia+Butler", nil)
		w := httptest.NewRecorder()
		api.DeleteBook(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		data, err := io.ReadAll(res.Body)
		assert.NoError(t, err)
		expected := `{"requestid":"", "status":400, "message":"author and title query parameters are required", "data":{}}`
		assert.JSONEq(t, expected, string(data))
	})

	t.Run("should fail: missing book", func(t *testing.T) {
		cs := NewCatalogService(zap.NewNop(), nil, NewMockClocker(), NewMemoryCatalogStorage(nil))
		api := newTestAPIHandler(nil, cs)
		req := httptest.NewRequest(http.MethodDelete, "/books/delete?author=Octavia+Butler&title=Kindred", nil)
		w := httptest.NewRecorder()
		api.DeleteBook(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
		data, err := io.ReadAll(res.Body)
		assert.NoError(t, err)
		expected := `{"requestid":"", "status":404, "message":"book not deleted", "data":{}}`
		assert.JSONEq(t, expected, string(data))
	})
}

// TestGetAuthorBooksHandler ensures the author listing endpoint serves
// the sequence with its total and answers 404 on unknown authors.
func TestGetAuthorBooksHandler(t *testing.T) {
	existing := Book{Title: "Things Fall Apart", Author: "Chinua Achebe", Pages: 209, Image: "static/img/book.jpg"}
	storage := NewMemoryCatalogStorage(Catalog{"Chinua Achebe": {existing}})
	cs := NewCatalogService(zap.NewNop(), nil, NewMockClocker(), storage)
	api := newTestAPIHandler(nil, cs)

	t.Run("should pass: known author", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/books/Chinua%20Achebe", nil)
		w := httptest.NewRecorder()
		api.GetAuthorBooks(w, req, httprouter.Params{{Key: "author", Value: "Chinua Achebe"}})
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)
		data, err := io.ReadAll(res.Body)
		assert.NoError(t, err)
		expected := `{"requestid":"", "status":200, "message":"Author books fetched successfully.", "total":1,
		"data":[{"title":"Things Fall Apart", "author":"Chinua Achebe", "pages":209, "image":"static/img/book.jpg"}]}`
		assert.JSONEq(t, expected, string(data))
	})

	t.Run("should fail: unknown author", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/books/Unknown", nil)
		w := httptest.NewRecorder()
		api.GetAuthorBooks(w, req, httprouter.Params{{Key: "author", Value: "Unknown"}})
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
		data, err := io.ReadAll(res.Body)
		assert.NoError(t, err)
		expected := `{"requestid":"", "status":404, "message":"books of this author not found!", "data":{}}`
		assert.JSONEq(t, expected, string(data))
	})
}
