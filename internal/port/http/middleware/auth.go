package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/apperror"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/auth"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/port/http/response"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/service"
)

// BearerToken extracts the token of an "Authorization: Bearer <t>" header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// JWTAuth rejects requests without a valid bearer token and stores the
// caller in the request context.
func JWTAuth(tokens *auth.TokenManager, out *response.Writer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				out.Error(w, r, apperror.Unauthorized("missing bearer token"))
				return
			}
			claims, err := tokens.Parse(token)
			if err != nil {
				msg := "invalid token"
				if errors.Is(err, auth.ErrTokenExpired) {
					msg = "token has expired"
				}
				out.Error(w, r, apperror.Unauthorized(msg))
				return
			}
			actor := service.Actor{UserID: claims.UserID, Role: entity.Role(claims.Role)}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireAdmin must run after JWTAuth.
func RequireAdmin(out *response.Writer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFrom(r.Context())
			if !ok {
				out.Error(w, r, apperror.Unauthorized("authentication required"))
				return
			}
			if !actor.IsAdmin() {
				out.Error(w, r, apperror.Forbidden("admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
