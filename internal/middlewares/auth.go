package middlewares

import (
	"net/http"
	"strings"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/handlerutils"
	"github.com/fekuna/omnipos-storefront-service/internal/servererrors"
	"go.uber.org/zap"
)

// Authenticate attaches the caller to the request context when a bearer token
// is present. A present but invalid token is rejected; no token means an
// anonymous retail caller.
func (mw *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			handlerutils.WriteErrorJSON(w, http.StatusUnauthorized, servererrors.ErrUnauthorized.Error(), nil)
			return
		}

		claims, err := mw.jwtManager.ValidateAccessToken(tokenStr)
		if err != nil {
			mw.logger.Debug("rejected access token", zap.Error(err))
			handlerutils.WriteErrorJSON(w, http.StatusUnauthorized, servererrors.ErrUnauthorized.Error(), nil)
			return
		}

		ctx := auth.WithUser(r.Context(), auth.UserContext{
			UserID: claims.UserID,
			Role:   claims.Role,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (mw *Middleware) RequireUser(h handlerutils.APIHandler) handlerutils.APIHandler {
	return func(w http.ResponseWriter, r *http.Request) error {
		if _, ok := auth.GetUser(r.Context()); !ok {
			return servererrors.Unauthorized(servererrors.ErrNoAccessToken)
		}
		return h(w, r)
	}
}

func (mw *Middleware) RequireAdmin(h handlerutils.APIHandler) handlerutils.APIHandler {
	return func(w http.ResponseWriter, r *http.Request) error {
		u, ok := auth.GetUser(r.Context())
		if !ok {
			return servererrors.Unauthorized(servererrors.ErrNoAccessToken)
		}
		if !u.IsAdmin() {
			return servererrors.Forbidden(servererrors.ErrUnauthorizedAccess)
		}
		return h(w, r)
	}
}
