package auth

import (
	"github.com/labstack/echo/v4"
)

// publicRoutes lists "METHOD route" pairs reachable without a bearer token.
// Routes are matched on echo's registered path, not the raw URL.
var publicRoutes = map[string]bool{
	"GET /health":                     true,
	"GET /health/db":                  true,
	"GET /metrics":                    true,
	"POST /api/v1/auth/login":         true,
	"POST /api/v1/auth/signup":        true,
	"GET /api/v1/doctors":             true,
	"GET /api/v1/doctors/:id/slots":   true,
	"GET /api/v1/shops":               true,
	"GET /api/v1/shops/:id/medicines": true,
	"GET /api/v1/medicines":           true,
	"POST /api/v1/contact":            true,
}

// AuthSkipper returns true for requests whose route should skip authentication.
func AuthSkipper(c echo.Context) bool {
	return IsPublicRoute(c.Request().Method, c.Path())
}

func IsPublicRoute(method, path string) bool {
	return publicRoutes[method+" "+path]
}
