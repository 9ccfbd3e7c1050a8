package rest

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avasquez/inkwell/api"
	"github.com/avasquez/inkwell/auth"
	authcontext "github.com/avasquez/inkwell/auth/context"
)

const (
	headerUserID   = "x-user-id"
	headerUserName = "x-user-name"
)

// Identity resolves the request identity: a bearer token subject when one
// parses, then the x-user-id header, then the demo user. The resolved id is
// attached to the request context for the handlers.
func Identity(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := ""

		header := c.GetHeader("Authorization")
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			subject, err := authSvc.Subject(token)
			if err == nil {
				userID = subject
			}
		}

		if userID == "" {
			userID = c.GetHeader(headerUserID)
		}

		if userID == "" {
			userID = auth.DemoUserID
		}

		ctx := authcontext.WithSubject(c.Request.Context(), userID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		slog.InfoContext(
			c.Request.Context(),
			"request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func HandlePanics() gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		slog.ErrorContext(c.Request.Context(), "recovered from panic", "error", recovered)

		c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{Message: "Internal Server Error"})
	}
}

func currentUserID(c *gin.Context) string {
	return authcontext.GetSubject(c.Request.Context())
}
