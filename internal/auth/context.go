package auth

import (
	"context"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
)

type UserContext struct {
	UserID string
	Role   model.Role
}

func (u UserContext) IsAdmin() bool {
	return u.Role == model.RoleAdmin
}

type contextKey struct{}

var userKey = contextKey{}

func WithUser(ctx context.Context, u UserContext) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func GetUser(ctx context.Context) (UserContext, bool) {
	u, ok := ctx.Value(userKey).(UserContext)
	return u, ok && u.UserID != ""
}

// GetBuyerClass is retail for anonymous callers.
func GetBuyerClass(ctx context.Context) model.BuyerClass {
	u, _ := GetUser(ctx)
	return model.BuyerClassFor(u.Role)
}
