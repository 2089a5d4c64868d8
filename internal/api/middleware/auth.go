package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ingetuto/ingetuto-api/internal/api/handler/v1/response"
	"github.com/ingetuto/ingetuto-api/internal/pkg/jwthelper"
	"github.com/ingetuto/ingetuto-api/internal/pkg/session"
)

const (
	ContextKeyEmail       = "email"
	ContextKeyActiveRole  = "activeRole"
	ContextKeyToken       = "token"
	ContextKeyTokenExpiry = "tokenExpiry"
)

var (
	errMissingToken = errors.New("missing bearer token")
	errRoleDenied   = errors.New("the active role may not perform this action")
)

type Authenticator struct {
	key     []byte
	tracker *session.Tracker
}

func NewAuthenticator(key string, tracker *session.Tracker) *Authenticator {
	return &Authenticator{
		key:     []byte(key),
		tracker: tracker,
	}
}

func bearerToken(ctx *gin.Context) string {
	header := ctx.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}

	// Browsers cannot set headers on a websocket handshake.
	if ctx.IsWebsocket() {
		return ctx.Query("token")
	}

	return ""
}

// VerifyJWT rejects requests without a valid, live token and stores the caller's
// e-mail and active role in the context.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := bearerToken(ctx)
		if token == "" {
			response.RenderErr(ctx, response.ErrUnauthorized(errMissingToken))
			return
		}

		claims, err := jwthelper.ParseToken(a.key, token)
		if err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(jwthelper.ErrInvalidToken))
			return
		}

		var expiry time.Time
		if claims.ExpiresAt != nil {
			expiry = claims.ExpiresAt.Time
		}
		if err = a.tracker.Touch(token, expiry); err != nil {
			response.RenderErr(ctx, response.ErrUnauthorized(err))
			return
		}

		ctx.Set(ContextKeyEmail, claims.Subject)
		ctx.Set(ContextKeyActiveRole, claims.ActiveRole)
		ctx.Set(ContextKeyToken, token)
		ctx.Set(ContextKeyTokenExpiry, expiry)
		ctx.Next()
	}
}

// RequireRoles lets the request through only when the token's active role is one of roles.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		active := ctx.GetString(ContextKeyActiveRole)
		for _, r := range roles {
			if r == active {
				ctx.Next()
				return
			}
		}

		response.RenderErr(ctx, response.ErrPermissionDenied(errRoleDenied))
	}
}
