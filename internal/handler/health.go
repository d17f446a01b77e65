package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/clehider/BazarMundoVictor/internal/kvstore"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Health returns a JSON health check response.
// Checks store and Redis connectivity; never exposes credentials or internals.
func Health(store kvstore.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		storeStatus := "connected"
		if _, _, err := store.Get(ctx, "healthcheck"); err != nil && !errors.Is(err, kvstore.ErrNotFound) {
			storeStatus = "error"
		}

		redisStatus := "connected"
		if rdb == nil {
			redisStatus = "disabled"
		} else if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		status := http.StatusOK
		if storeStatus != "connected" || redisStatus == "error" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":    status == http.StatusOK,
			"store": storeStatus,
			"redis": redisStatus,
		})
	}
}
