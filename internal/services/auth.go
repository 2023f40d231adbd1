package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/artspace-backend/internal/platform/ctxutil"
	"github.com/yungbote/artspace-backend/internal/platform/logger"
)

// AuthService only verifies tokens; issuing them belongs to the identity provider.
type AuthService interface {
	Enabled() bool
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	log          *logger.Logger
	jwtSecretKey string
}

func NewAuthService(log *logger.Logger, jwtSecretKey string) AuthService {
	return &authService{
		log:          log.With("service", "AuthService"),
		jwtSecretKey: strings.TrimSpace(jwtSecretKey),
	}
}

func (as *authService) Enabled() bool { return as.jwtSecretKey != "" }

// SetContextFromToken validates an HS256 token and stores its subject as the caller.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, fmt.Errorf("missing token")
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return ctx, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return ctx, fmt.Errorf("invalid or expired JWT token")
	}
	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return ctx, fmt.Errorf("token has no subject")
	}
	return ctxutil.WithCaller(ctx, subject), nil
}
