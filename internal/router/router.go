// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/feastly/food-ordering-backend/internal/config"
	"github.com/feastly/food-ordering-backend/internal/handler"
	"github.com/feastly/food-ordering-backend/internal/middleware"
)

// RegisterHealth exposes the health check used by load balancers.
func RegisterHealth(e *echo.Echo, db *sql.DB, rdb *redis.Client) {
	e.GET("/healthz", handler.Health(db, rdb))
}

// RegisterAuth registers the token lifecycle endpoints under /v1/auth and
// the protected identity probe under /v1. Logout takes its token from the
// Authorization header, the other flows from the JSON body.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, secret []byte, denylist middleware.TokenDenylist) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/logout", a.Logout)
	g.POST("/refresh", a.Refresh)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(secret, denylist))
	auth.GET("/me", a.Me)
}

// RegisterOtp registers the email verification endpoints under /v1/otp.
// Send and resend sit behind the rate limiter: each call mints a fresh code
// with a fresh attempt budget, so their frequency is what needs bounding.
func RegisterOtp(e *echo.Echo, o *handler.OtpHandler, rl config.RateLimitConfig, rdb *redis.Client) {
	limited := middleware.NewTokenBucket(rl, rdb)

	g := e.Group("/v1/otp")
	g.POST("/send", o.Send, limited)
	g.POST("/resend", o.Resend, limited)
	g.POST("/verify", o.Verify)
	g.GET("/attempts", o.Attempts)
}
