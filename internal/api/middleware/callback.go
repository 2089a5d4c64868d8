package middleware

import (
	"crypto/subtle"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ingetuto/ingetuto-api/internal/api/handler/v1/response"
)

// HeaderCallbackSecret carries the secret shared with the login bridge that
// talks to the identity provider.
const HeaderCallbackSecret = "X-Callback-Secret"

var errBadCallbackSecret = errors.New("the login callback is not signed by a trusted bridge")

// RequireCallbackSecret only lets through callers presenting the shared secret.
// An empty secret rejects everyone.
func RequireCallbackSecret(secret string) gin.HandlerFunc {
	want := []byte(secret)

	return func(ctx *gin.Context) {
		got := []byte(ctx.GetHeader(HeaderCallbackSecret))
		if len(want) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
			response.RenderErr(ctx, response.ErrUnauthorized(errBadCallbackSecret))
			return
		}

		ctx.Next()
	}
}
