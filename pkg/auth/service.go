package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/basewatch/basewatch-engine/pkg/config"
)

// AuthService validates bearer tokens on incoming requests.
type AuthService interface {
	// ValidateRequest extracts and validates the bearer token from the
	// Authorization header. Returns the parsed claims and the raw token.
	ValidateRequest(r *http.Request) (*Claims, string, error)

	// IsEnabled reports whether token verification is turned on.
	IsEnabled() bool
}

type authService struct {
	cfg    *config.Config
	logger *zap.Logger
}

var _ AuthService = (*authService)(nil)

// NewAuthService creates an AuthService backed by the configured HMAC secret.
func NewAuthService(cfg *config.Config, logger *zap.Logger) AuthService {
	return &authService{
		cfg:    cfg,
		logger: logger.Named("auth"),
	}
}

func (s *authService) IsEnabled() bool {
	return s.cfg.Auth.EnableVerification
}

func (s *authService) ValidateRequest(r *http.Request) (*Claims, string, error) {
	tokenString, err := extractBearerToken(r)
	if err != nil {
		return nil, "", err
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.Auth.JWTSecret), nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, "", fmt.Errorf("invalid token")
	}

	return claims, tokenString, nil
}

// extractBearerToken pulls the token out of the Authorization header.
func extractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", fmt.Errorf("missing Authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", fmt.Errorf("invalid Authorization header format")
	}

	return parts[1], nil
}
