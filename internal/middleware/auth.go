package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/supabase-community/auth-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/eternalmoments/backend/internal/modules/serializer"
	"github.com/eternalmoments/backend/internal/modules/service"
)

// UserAuth returns a middleware that authenticates requests using
// Supabase access tokens. The token is verified against the auth
// server, the local user row is resolved (created on first sight), and
// the user is set in the context. The user_id attribute is set on the
// current span for telemetry filtering.
func UserAuth(authClient auth.Client, users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ctx, authSpan := otel.Tracer("middleware").Start(ctx, "user_auth",
			trace.WithAttributes(attribute.String("middleware", "user_auth")))

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			authSpan.SetAttributes(attribute.Bool("authenticated", false))
			authSpan.End()
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		resp, err := authClient.WithToken(token).GetUser()
		if err != nil {
			authSpan.RecordError(err)
			authSpan.SetAttributes(attribute.Bool("authenticated", false))
			authSpan.End()
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}

		user, err := users.Resolve(ctx, resp.ID.String(), resp.Email)
		if err != nil {
			authSpan.RecordError(err)
			authSpan.End()
			c.AbortWithStatusJSON(http.StatusInternalServerError, serializer.DBErr("", err))
			return
		}

		rootSpan := trace.SpanFromContext(c.Request.Context())
		if rootSpan.SpanContext().IsValid() {
			rootSpan.SetAttributes(attribute.String("user_id", user.ID.String()))
		}

		authSpan.SetAttributes(
			attribute.String("user_id", user.ID.String()),
			attribute.Bool("authenticated", true),
		)
		authSpan.End()

		c.Set("user", user)
		c.Next()
	}
}
