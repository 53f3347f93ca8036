package delivery

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	headerUserID    = "X-User-ID"
	headerUserRole  = "X-User-Role"
	headerRequestID = "X-Request-ID"

	ctxUserID  = "userID"
	ctxIsAdmin = "isAdmin"

	roleAdmin = "admin"
)

func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		reqID := c.GetHeader(headerRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Writer.Header().Set(headerRequestID, reqID)

		c.Next()

		statusCode := c.Writer.Status()
		entry := logger.WithFields(logrus.Fields{
			"request_id":  reqID,
			"status_code": statusCode,
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"remote_ip":   c.ClientIP(),
			"latency_ms":  time.Since(startTime).Milliseconds(),
		})

		switch {
		case len(c.Errors) > 0:
			entry.Error(c.Errors.ByType(gin.ErrorTypePrivate).String())
		case statusCode >= 500:
			entry.Error("Request completed with server error")
		case statusCode >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// Identity reads the caller from headers set by the upstream session layer.
// Requests without a valid user ID are rejected.
func Identity(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(headerUserID)
		if raw == "" {
			logger.Warn("Middleware: X-User-ID header is missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Status: "Fail", Message: "User identification missing"})
			return
		}
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			logger.Warnf("Middleware: Invalid X-User-ID header value: %s", raw)
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Status: "Fail", Message: "Invalid user identification"})
			return
		}
		c.Set(ctxUserID, userID)
		c.Set(ctxIsAdmin, c.GetHeader(headerUserRole) == roleAdmin)
		c.Next()
	}
}

func RequireAdmin(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ctxIsAdmin) {
			logger.Warnf("Middleware: User %d denied access to %s", c.GetInt64(ctxUserID), c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusForbidden, Response{Status: "Fail", Message: "Administrator role required"})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) int64 {
	return c.GetInt64(ctxUserID)
}

func isAdmin(c *gin.Context) bool {
	return c.GetBool(ctxIsAdmin)
}
