package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/aiblog/services"
	"github.com/cppla/aiblog/utils"
)

const (
	// ContextIdentityKey stores the resolved *services.Identity inside Gin context.
	ContextIdentityKey = "identity"
	// ContextTokenKey stores the raw bearer token for handlers that need it (logout).
	ContextTokenKey = "bearer_token"
)

// IdentityResolver turns a bearer token into an identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*services.Identity, error)
}

// AuthRequired ensures the request carries a valid bearer token.
// A missing credential answers 401; a present but unusable one answers 403.
func AuthRequired(resolver IdentityResolver) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, status, code, msg := bearerToken(ctx.GetHeader("Authorization"))
		if status != 0 {
			utils.Abort(ctx, status, code, msg)
			return
		}

		identity, err := resolver.Resolve(ctx.Request.Context(), token)
		if err != nil {
			utils.Abort(ctx, http.StatusForbidden, 40301, "invalid token")
			return
		}

		ctx.Set(ContextIdentityKey, identity)
		ctx.Set(ContextTokenKey, token)
		ctx.Next()
	}
}

// bearerToken extracts the token from an Authorization header. A non-zero
// status describes why the header cannot be used.
func bearerToken(header string) (token string, status, code int, msg string) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", http.StatusUnauthorized, 40101, "authorization header missing"
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
		return "", http.StatusUnauthorized, 40103, "empty bearer token"
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", http.StatusForbidden, 40302, "invalid authorization header format"
	}
	return strings.TrimSpace(parts[1]), 0, 0, ""
}

// CurrentIdentity returns the identity resolved by AuthRequired, or nil.
func CurrentIdentity(ctx *gin.Context) *services.Identity {
	v, ok := ctx.Get(ContextIdentityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*services.Identity)
	return identity
}

// CurrentToken returns the bearer token accepted by AuthRequired.
func CurrentToken(ctx *gin.Context) string {
	return ctx.GetString(ContextTokenKey)
}
