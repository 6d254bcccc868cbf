package middleware

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/service"
)

// ContextKey keeps request-scoped values out of other packages' key space.
type ContextKey string

const (
	UserIDCtxKey   = ContextKey("user_id")
	UserRoleCtxKey = ContextKey("user_role")
)

func WithActor(ctx context.Context, actor service.Actor) context.Context {
	ctx = context.WithValue(ctx, UserIDCtxKey, actor.UserID)
	return context.WithValue(ctx, UserRoleCtxKey, actor.Role)
}

// ActorFrom returns the authenticated caller stored by JWTAuth.
func ActorFrom(ctx context.Context) (service.Actor, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(string)
	if !ok || userID == "" {
		return service.Actor{}, false
	}
	role, _ := ctx.Value(UserRoleCtxKey).(entity.Role)
	return service.Actor{UserID: userID, Role: role}, true
}
