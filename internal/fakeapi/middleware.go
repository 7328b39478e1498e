package fakeapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/existflow/todoisland/internal/model"
	"github.com/labstack/echo/v4"
)

const ctxUserKey = "user"

// authMiddleware checks the bearer access token
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth := c.Request().Header.Get("Authorization")
		if auth == "" {
			return errorJSON(c, http.StatusUnauthorized, "authorization required")
		}

		raw := strings.TrimPrefix(auth, "Bearer ")
		if raw == auth {
			return errorJSON(c, http.StatusUnauthorized, "invalid authorization format")
		}

		claims, err := s.parseToken(raw)
		if err != nil {
			return errorJSON(c, http.StatusUnauthorized, "invalid or expired token")
		}

		id, err := strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil {
			return errorJSON(c, http.StatusUnauthorized, "invalid token subject")
		}
		user, ok := s.store.user(id)
		if !ok {
			return errorJSON(c, http.StatusUnauthorized, "unknown user")
		}

		c.Set(ctxUserKey, user)
		return next(c)
	}
}

func currentUser(c echo.Context) model.User {
	u, _ := c.Get(ctxUserKey).(model.User)
	return u
}
