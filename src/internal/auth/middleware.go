package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Middleware provides authentication middleware
type Middleware struct {
	authService *AuthService
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(authService *AuthService) *Middleware {
	return &Middleware{authService: authService}
}

// Require returns middleware that rejects unauthenticated requests
func (m *Middleware) Require() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := m.claimsFromRequest(c)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid authentication")
			}
			setClaims(c, claims)
			return next(c)
		}
	}
}

// Optional returns middleware that sets user context when a valid token is
// present but lets anonymous requests through. Viewer-relative projections
// (is_favorited, is_in_shopping_cart, is_subscribed) rely on this.
func (m *Middleware) Optional() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if claims, err := m.claimsFromRequest(c); err == nil {
				setClaims(c, claims)
			}
			return next(c)
		}
	}
}

// RequireAdmin returns middleware that requires admin privileges
func (m *Middleware) RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			isAdmin, ok := c.Get("is_admin").(bool)
			if !ok || !isAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "admin privileges required")
			}
			return next(c)
		}
	}
}

func (m *Middleware) claimsFromRequest(c echo.Context) (*Claims, error) {
	header := c.Request().Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, ErrInvalidToken
	}
	return m.authService.ValidateToken(parts[1])
}

func setClaims(c echo.Context, claims *Claims) {
	c.Set("user_id", claims.UserID)
	c.Set("username", claims.Username)
	c.Set("is_admin", claims.IsAdmin)
}
