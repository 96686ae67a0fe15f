package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RequireRole returns middleware that checks if the user has at least one of the specified roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if HasAnyRole(c.Request().Context(), roles...) {
				return next(c)
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}

// HasAnyRole reports whether the caller holds one of roles. Admin holds all.
func HasAnyRole(ctx context.Context, roles ...string) bool {
	for _, has := range RolesFromContext(ctx) {
		if has == "admin" {
			return true
		}
		for _, required := range roles {
			if has == required {
				return true
			}
		}
	}
	return false
}

func IsAdmin(ctx context.Context) bool {
	return HasAnyRole(ctx)
}

// CanActFor reports whether the caller may act on resources owned by userID.
func CanActFor(ctx context.Context, userID string) bool {
	if IsAdmin(ctx) {
		return true
	}
	uid := UserIDFromContext(ctx)
	return uid != "" && uid == userID
}

// RequireSelf returns a 403 unless the caller may act for userID.
func RequireSelf(ctx context.Context, userID string) error {
	if !CanActFor(ctx, userID) {
		return echo.NewHTTPError(http.StatusForbidden, "not allowed to act for this account")
	}
	return nil
}
