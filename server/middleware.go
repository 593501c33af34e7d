package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/existflow/todoserver/internal/logger"
	"github.com/labstack/echo/v4"
)

const (
	ctxUID       = "uid"
	ctxAnonymous = "is_anonymous"
)

// authMiddleware verifies the bearer token and injects uid and is_anonymous
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		// Get token from Authorization header
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return c.JSON(http.StatusUnauthorized, msg("authorization required"))
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			return c.JSON(http.StatusUnauthorized, msg("invalid authorization format"))
		}

		claims, err := s.tokens.Parse(token)
		if err != nil {
			logger.Debug("Rejected token", logger.F("error", err))
			return c.JSON(http.StatusUnauthorized, msg("invalid token"))
		}

		c.Set(ctxUID, claims.UID)
		c.Set(ctxAnonymous, claims.Anonymous)
		return next(c)
	}
}

func userID(c echo.Context) string {
	uid, _ := c.Get(ctxUID).(string)
	return uid
}

func isAnonymous(c echo.Context) bool {
	anonymous, _ := c.Get(ctxAnonymous).(bool)
	return anonymous
}

// requestLogger logs every request once the error handler has set its status
func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()

		if err := next(c); err != nil {
			c.Error(err)
		}

		res := c.Response()
		logger.Info("HTTP Request",
			logger.F("method", req.Method),
			logger.F("uri", req.RequestURI),
			logger.F("status", res.Status),
			logger.F("size", res.Size),
			logger.F("duration", time.Since(start).String()),
			logger.F("request_id", res.Header().Get(echo.HeaderXRequestID)),
			logger.F("remote", c.RealIP()))

		return nil
	}
}

// statusOf returns the status a handler result will be answered with
func statusOf(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}

// errorHandler answers unhandled errors without leaking internals
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		message := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok {
			message = m
		}
		_ = c.JSON(he.Code, msg(message))
		return
	}

	logger.Error("Request failed",
		logger.F("method", c.Request().Method),
		logger.F("uri", c.Request().RequestURI),
		logger.F("error", err))
	_ = c.JSON(http.StatusInternalServerError, msg("Internal server error"))
}
