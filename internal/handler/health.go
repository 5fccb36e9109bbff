package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Health returns a handler reporting the service and its backing stores.
// Redis is optional; a nil client is reported as disabled, not unhealthy.
func Health(db *sql.DB, rdb *redis.Client) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		dbState := "ok"
		if err := db.PingContext(ctx); err != nil {
			dbState = "down"
			status = http.StatusServiceUnavailable
		}
		redisState := "disabled"
		if rdb != nil {
			redisState = "ok"
			if err := rdb.Ping(ctx).Err(); err != nil {
				redisState = "down"
			}
		}
		return c.JSON(status, echo.Map{
			"status": map[string]string{"db": dbState, "redis": redisState},
		})
	}
}
