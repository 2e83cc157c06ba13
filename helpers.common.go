package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"unicode/utf8"
)

var (
	ErrAuthorNotFound     = errors.New("author not found")
	ErrBookNotFound       = errors.New("book not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type (
	ContextKey        string
	missingFieldError string
	invalidFieldError string
)

const (
	RequestIDPrefix         string     = "r"
	RequestIDContextKey     ContextKey = "request.id"
	RequestNumberContextKey ContextKey = "request.number"
	TokenSubjectContextKey  ContextKey = "token.subject"
)

// Book field boundaries and defaults.
const (
	MinFieldLength   = 2
	MaxFieldLength   = 100
	MinPages         = 10
	DefaultBookImage = "static/img/book.jpg"
)

func (m missingFieldError) Error() string {
	return string(m) + " is required"
}

func (i invalidFieldError) Error() string {
	return string(i)
}

// GetValueFromContext returns the value of a given key in the context
// if this key is not available, it returns an empty string.
func GetValueFromContext(ctx context.Context, contextKey ContextKey) string {
	if val := ctx.Value(contextKey); val != nil {
		return val.(string)
	}
	return ""
}

// GetRequestNumberFromContext returns the request number set in
// the context. if not previously set then it returns 0.
func GetRequestNumberFromContext(ctx context.Context) uint64 {
	if val := ctx.Value(RequestNumberContextKey); val != nil {
		return val.(uint64)
	}
	return 0
}

// DecodeBookRequestBody is a helper function to read the content of a book creation or update request.
func DecodeBookRequestBody(r *http.Request, book *Book) error {
	if r.Body == nil {
		return errors.New("invalid book request body")
	}
	return json.NewDecoder(r.Body).Decode(book)
}

// ValidateBookRequestBody is a helper function to check if the content of
// a book creation or update request is valid. It fills in the default
// cover image when none is provided.
func ValidateBookRequestBody(book *Book) error {
	if len(book.Title) == 0 {
		return missingFieldError("title")
	}

	if n := utf8.RuneCountInString(book.Title); n < MinFieldLength || n > MaxFieldLength {
		return invalidFieldError(fmt.Sprintf("title must be between %d and %d characters", MinFieldLength, MaxFieldLength))
	}

	if len(book.Author) == 0 {
		return missingFieldError("author")
	}

	if n := utf8.RuneCountInString(book.Author); n < MinFieldLength || n > MaxFieldLength {
		return invalidFieldError(fmt.Sprintf("author must be between %d and %d characters", MinFieldLength, MaxFieldLength))
	}

	if book.Pages <= MinPages {
		return invalidFieldError(fmt.Sprintf("pages must be greater than %d", MinPages))
	}

	if len(book.Image) == 0 {
		book.Image = DefaultBookImage
	}

	return nil
}

// GetRequestSourceIP helps find the source IP of the caller.
func GetRequestSourceIP(r *http.Request) string {
	// Get IP from the X-REAL-IP header
	ip := r.Header.Get("X-REAL-IP")
	netIP := net.ParseIP(ip)
	if netIP != nil {
		return ip
	}

	// Get IP from X-FORWARDED-FOR header
	ips := r.Header.Get("X-FORWARDED-FOR")
	splitIps := strings.Split(ips, ",")
	for _, ip := range splitIps {
		netIP = net.ParseIP(ip)
		if netIP != nil {
			return ip
		}
	}

	// Get IP from RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return ""
	}
	netIP = net.ParseIP(ip)
	if netIP != nil {
		return ip
	}
	return ""
}

// IsAppRunningInDocker checks the existence of the .dockerenv
// file at the root directory and returns a boolean result. This
// helps know if the App is running in a docker container or not.
func IsAppRunningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}
