package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/KOMKZ/go-yogan-boot/auth"
	"github.com/KOMKZ/go-yogan-boot/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// TraceIDKey context key read by logger.CtxZapLogger
	TraceIDKey = "trace_id"

	// TraceIDHeader request and response header
	TraceIDHeader = "X-Trace-ID"

	// ClaimsKey gin.Context key of the verified *auth.Claims
	ClaimsKey = "auth_claims"
)

// TraceID propagates or generates a trace id; an active otel span wins
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		var traceID string
		if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.IsValid() {
			traceID = sc.TraceID().String()
		} else {
			traceID = c.GetHeader(TraceIDHeader)
			if traceID == "" {
				traceID = uuid.NewString()
			}
			ctx := context.WithValue(c.Request.Context(), TraceIDKey, traceID)
			c.Request = c.Request.WithContext(ctx)
		}

		c.Set(TraceIDKey, traceID)
		c.Writer.Header().Set(TraceIDHeader, traceID)
		c.Next()
	}
}

// RequestLog one structured line per request; level follows the status code
func RequestLog(log *logger.CtxZapLogger, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("body_size", c.Writer.Size()),
		}
		if msg := c.Errors.ByType(gin.ErrorTypePrivate).String(); msg != "" {
			fields = append(fields, zap.String("error", msg))
		}

		ctx := c.Request.Context()
		switch {
		case status >= http.StatusInternalServerError:
			log.ErrorCtx(ctx, "http request", fields...)
		case status >= http.StatusBadRequest:
			log.WarnCtx(ctx, "http request", fields...)
		default:
			log.InfoCtx(ctx, "http request", fields...)
		}
	}
}

// Recovery turns handler panics into a 500 without exposing the stack
func Recovery(log *logger.CtxZapLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.ErrorCtx(c.Request.Context(), "panic recovered",
					zap.String("panic", fmt.Sprint(r)),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path))
				c.AbortWithStatusJSON(http.StatusInternalServerError, Response{
					Code: http.StatusInternalServerError,
					Msg:  "internal server error",
				})
			}
		}()
		c.Next()
	}
}

// RequireAuth verifies the bearer access token and stores its claims
func RequireAuth(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			Error(c, auth.ErrTokenInvalid.WithMsgf("missing bearer token"))
			return
		}

		claims, err := svc.Authenticate(c.Request.Context(), token)
		if err != nil {
			Error(c, err)
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// ClaimsFrom claims stored by RequireAuth
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
