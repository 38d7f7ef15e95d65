package middleware

import (
	"fmt"
	"net/http"
	"regexp"
	"runtime/debug"
	"strings"
	"time"

	"identity_service/internal/apperr"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorEnvelope is the uniform failure body. Every failed request, whatever
// the cause, leaves the service in this shape.
type ErrorEnvelope struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
	Method    string    `json:"method"`
	Details   []string  `json:"details,omitempty"`
	Stack     string    `json:"stack,omitempty"`
}

// ErrorHandler funnels failures into the envelope. Handlers and middlewares
// attach errors with c.Error(...) and abort; after the chain runs, the last
// attached error is classified, logged, and written. Handlers never write
// failure bodies themselves.
func ErrorHandler(logger *zap.Logger, appEnv string) gin.HandlerFunc {
	production := appEnv == "production"
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, env := classify(err, production)
		env.Path = c.Request.URL.Path
		env.Method = c.Request.Method

		logFailure(logger, c, status, err)

		c.JSON(status, env)
	}
}

// Recovery converts a panic into the standard 500 envelope instead of
// tearing the connection down.
func Recovery(logger *zap.Logger, appEnv string) gin.HandlerFunc {
	production := appEnv == "production"
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.String("requestId", c.GetString(RequestIDKey)),
					zap.ByteString("stack", stack),
				)

				env := ErrorEnvelope{
					Success:   false,
					Message:   "Internal server error",
					Error:     sanitizeMessage(fmt.Sprint(r)),
					Timestamp: time.Now().UTC(),
					Path:      c.Request.URL.Path,
					Method:    c.Request.Method,
				}
				if !production {
					env.Stack = string(stack)
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, env)
			}
		}()
		c.Next()
	}
}

func classify(err error, production bool) (int, ErrorEnvelope) {
	env := ErrorEnvelope{
		Success:   false,
		Timestamp: time.Now().UTC(),
	}

	if e, ok := apperr.From(err); ok {
		env.Message = e.Message
		env.Error = string(e.Kind)
		env.Details = e.Details
		return e.HTTPStatus(), env
	}

	env.Message = "Internal server error"
	env.Error = sanitizeMessage(err.Error())
	if !production {
		env.Stack = string(debug.Stack())
	}
	return http.StatusInternalServerError, env
}

// logFailure records every failed request before the response goes out.
// Logging must never fail the response, so there is nothing here that can
// error. Hashes and secrets never reach this path; errors carry none.
func logFailure(logger *zap.Logger, c *gin.Context, status int, err error) {
	fields := []zap.Field{
		zap.Int("status", status),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("requestId", c.GetString(RequestIDKey)),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", fields...)
		return
	}
	logger.Warn("request failed", fields...)
}

var ansiEscapeRX = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// sanitizeMessage strips ANSI escape sequences and maps control characters to
// spaces so raw driver or panic text cannot smuggle terminal escapes into a
// client-facing field.
func sanitizeMessage(msg string) string {
	msg = ansiEscapeRX.ReplaceAllString(msg, "")
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return ' '
		}
		return r
	}, msg)
}
