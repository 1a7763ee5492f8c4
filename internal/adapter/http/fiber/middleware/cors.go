package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	fibercors "github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/seu-repo/ocpp-csms/pkg/config"
)

// NewCORS builds the CORS middleware for the admin API from config, falling
// back to permissive defaults so a bare deployment still serves the
// dashboard frontend.
func NewCORS(cfg config.CORSConfig) fiber.Handler {
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = 86400
	}

	return fibercors.New(fibercors.Config{
		AllowOrigins:     joinOr(cfg.AllowedOrigins, "*"),
		AllowMethods:     joinOr(cfg.AllowedMethods, "GET,POST,PUT,DELETE,OPTIONS"),
		AllowHeaders:     joinOr(cfg.AllowedHeaders, "Origin,Content-Type,Accept"),
		ExposeHeaders:    joinOr(cfg.ExposeHeaders, "Content-Length,Content-Disposition"),
		AllowCredentials: cfg.Credentials,
		MaxAge:           maxAge,
	})
}

func joinOr(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return strings.Join(values, ",")
}
