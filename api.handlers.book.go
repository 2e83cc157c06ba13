package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// Status provides basics details about the application to the public users.
func (api *APIHandler) Status(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	if err := json.NewEncoder(w).Encode(
		map[string]interface{}{
			"requestid": requestID,
			"status":    fmt.Sprintf("up & running since %.0f mins", api.clock.Now().Sub(api.stats.started).Minutes()),
			"message":   "Hello. Library catalog api is available. Enjoy :)",
		},
	); err != nil {
		api.logger.Error("failed to send status response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// Index renders the full catalog listing grouped by author. The catalog
// load is fail-open so the home page never errors on a missing document.
func (api *APIHandler) Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	catalog, err := api.catalogService.GetAll(r.Context())
	if err != nil {
		api.logger.Error("failed to load catalog for listing", zap.String("request.id", requestID), zap.Error(err))
		catalog = Catalog{}
	}
	w.Header().Set("Content-Type", "text/html; charset=UTF-8")
	if err := api.index.Execute(w, map[string]interface{}{"Library": catalog}); err != nil {
		api.logger.Error("failed to render catalog listing", zap.String("request.id", requestID), zap.Error(err))
	}
}

// Login implements the OAuth2 password flow endpoint. It expects a
// form-encoded username and password and answers with a bearer token.
func (api *APIHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	if err := r.ParseForm(); err != nil {
		api.logger.Error("failed to parse login form", zap.String("request.id", requestID), zap.Error(err))
		if err = WriteJSON(w, http.StatusBadRequest, LoginError{Error: "invalid login form"}); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	user, err := api.authService.Authenticate(r.Context(), username, password)
	if err != nil {
		api.logger.Info("login attempt rejected",
			zap.String("request.id", requestID),
			zap.String("auth.username", username),
		)
		if err = WriteJSON(w, http.StatusUnauthorized, LoginError{Error: "incorrect username or password"}); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	token, err := api.authService.IssueToken(user.Username)
	if err != nil {
		api.logger.Error("failed to issue token", zap.String("request.id", requestID), zap.Error(err))
		if err = WriteJSON(w, http.StatusInternalServerError, LoginError{Error: "failed to issue token"}); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	api.logger.Info("login succeeded",
		zap.String("request.id", requestID),
		zap.String("auth.username", user.Username),
	)
	if err = WriteJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"}); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// CreateBook appends a book to its author's sequence and answers with
// the full updated catalog.
func (api *APIHandler) CreateBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	book := Book{}
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	err := DecodeBookRequestBody(r, &book)
	if err != nil {
		api.logger.Error("failed to create book", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to create the book", book)
		if err = WriteErrorResponse(w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	err = ValidateBookRequestBody(&book)
	if err != nil {
		api.logger.Error("failed to create book", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to create the book", err.Error())
		if err = WriteErrorResponse(w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	catalog, err := api.catalogService.Add(r.Context(), book)
	if err != nil {
		api.logger.Error("failed to create book", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to create the book", book)
		if err = WriteErrorResponse(w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	api.logger.Info("success to create book",
		zap.String("request.id", requestID),
		zap.String("token.subject", GetValueFromContext(r.Context(), TokenSubjectContextKey)),
	)
	resp := GenericResponse(requestID, http.StatusCreated, "Book created successfully.", nil, catalog)
	if err = WriteResponse(w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// UpdateBook replaces the catalog entry matching the submitted author
// and title with the submitted record.
func (api *APIHandler) UpdateBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var book Book
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	err := DecodeBookRequestBody(r, &book)
	if err != nil {
		api.logger.Error("failed to update book", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to update the book", book)
		if err = WriteErrorResponse(w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	err = ValidateBookRequestBody(&book)
	if err != nil {
		api.logger.Error("failed to update book", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to update the book", err.Error())
		if err = WriteErrorResponse(w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	err = api.catalogService.Update(r.Context(), book)
	if errors.Is(err, ErrBookNotFound) {
		api.logger.Error("book does not exist",
			zap.String("catalog.author", book.Author),
			zap.String("catalog.title", book.Title),
			zap.String("request.id", requestID),
		)
		errResp := NewAPIError(requestID, http.StatusNotFound, "book not updated", book)
		if err = WriteErrorResponse(w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	if err != nil {
		api.logger.Error("failed to update book", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to update the book", book)
		if err = WriteErrorResponse(w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	api.logger.Info("success to update book",
		zap.String("catalog.author", book.Author),
		zap.String("catalog.title", book.Title),
		zap.String("request.id", requestID),
	)
	resp := GenericResponse(requestID, http.StatusOK, "book successfully updated!", nil, book)
	if err = WriteResponse(w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// DeleteBook removes the first book of the author whose title matches
// the query parameters.
func (api *APIHandler) DeleteBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	q := r.URL.Query()
	author, title := q.Get("author"), q.Get("title")
	if author == "" || title == "" {
		api.logger.Error("missing author or title query parameter", zap.String("request.id", requestID))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "author and title query parameters are required", EmptyData)
		if err := WriteErrorResponse(w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	err := api.catalogService.Delete(r.Context(), author, title)
	if errors.Is(err, ErrBookNotFound) {
		api.logger.Error("book does not exist",
			zap.String("catalog.author", author),
			zap.String("catalog.title", title),
			zap.String("request.id", requestID),
		)
		errResp := NewAPIError(requestID, http.StatusNotFound, "book not deleted", EmptyData)
		if err = WriteErrorResponse(w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	if err != nil {
		api.logger.Error("failed to delete book", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to delete the book", EmptyData)
		if err = WriteErrorResponse(w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	api.logger.Info("success to delete book",
		zap.String("catalog.author", author),
		zap.String("catalog.title", title),
		zap.String("request.id", requestID),
	)
	resp := GenericResponse(requestID, http.StatusOK, "book successfully deleted!", nil, EmptyData)
	if err = WriteResponse(w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// GetAuthorBooks serves the book sequence of a single author.
func (api *APIHandler) GetAuthorBooks(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	author := ps.ByName("author")
	books, err := api.catalogService.GetByAuthor(r.Context(), author)
	if errors.Is(err, ErrAuthorNotFound) {
		api.logger.Error("author does not exist", zap.String("catalog.author", author), zap.String("request.id", requestID))
		errResp := NewAPIError(requestID, http.StatusNotFound, "books of this author not found!", EmptyData)
		if err = WriteErrorResponse(w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	if err != nil {
		api.logger.Error("failed to get author books", zap.String("catalog.author", author), zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to get author books", EmptyData)
		if err = WriteErrorResponse(w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	api.logger.Info("success to get author books", zap.String("catalog.author", author), zap.String("request.id", requestID))
	total := len(books)
	resp := GenericResponse(requestID, http.StatusOK, "Author books fetched successfully.", &total, books)
	if err = WriteResponse(w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}
