package main

import (
	"context"
	"crypto/subtle"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Claims carries the token payload: subject and registered expiry.
type Claims struct {
	jwt.RegisteredClaims
}

// AuthServiceProvider defines the authentication and token operations.
type AuthServiceProvider interface {
	Authenticate(ctx context.Context, username, password string) (Credential, error)
	IssueToken(username string) (string, error)
	VerifyToken(tokenString string) (*Claims, error)
}

type AuthService struct {
	logger *zap.Logger
	config *Config
	clock  Clocker
	users  UserStore
}

func NewAuthService(logger *zap.Logger, config *Config, clock Clocker, users UserStore) AuthServiceProvider {
	return &AuthService{
		logger: logger,
		config: config,
		clock:  clock,
		users:  users,
	}
}

// Authenticate looks up the username then compares the supplied password
// with the stored credential value. The stored value is compared as-is,
// no hashing is involved.
func (as *AuthService) Authenticate(ctx context.Context, username, password string) (Credential, error) {
	users, err := as.users.Load(ctx)
	if err != nil {
		as.logger.Error("auth: failed to load users document", zap.Error(err))
		return Credential{}, ErrInvalidCredentials
	}
	user, ok := users[username]
	if !ok {
		return Credential{}, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(user.HashedPassword)) != 1 {
		return Credential{}, ErrInvalidCredentials
	}
	return user, nil
}

// IssueToken builds a signed HS256 token carrying the username as
// subject and expiring after the configured duration.
func (as *AuthService) IssueToken(username string) (string, error) {
	now := as.clock.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.config.Auth.TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.config.Auth.Secret))
}

// VerifyToken checks the token signature and expiry and returns the
// decoded claims. Any parsing failure maps to ErrInvalidToken.
func (as *AuthService) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.config.Auth.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}
