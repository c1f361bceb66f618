package middlewares

import (
	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
)

type tokenManager interface {
	ValidateAccessToken(tokenStr string) (*auth.TokenClaims, error)
}

type Middleware struct {
	jwtManager tokenManager
	logger     logger.ZapLogger
}

func NewMiddleware(tokenManager tokenManager, log logger.ZapLogger) *Middleware {
	return &Middleware{
		jwtManager: tokenManager,
		logger:     log,
	}
}
