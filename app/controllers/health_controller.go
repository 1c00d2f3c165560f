package controllers

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/nuber-eats/nuber/pkg/cache"
	"github.com/nuber-eats/nuber/pkg/logger"
	"github.com/nuber-eats/nuber/pkg/response"
)

type HealthController struct {
	db *gorm.DB
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{db: db}
}

// Check reports 200 when the database answers a ping and 503 otherwise.
// Redis is reported but optional.
func (c *HealthController) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"database": "ok", "cache": "disabled"}
	code := http.StatusOK

	if err := ping(ctx, c.db); err != nil {
		logger.WithCtx(ctx).Warn("health: database ping failed", "error", err)
		status["database"] = "down"
		code = http.StatusServiceUnavailable
	}
	if cache.RDB != nil {
		status["cache"] = "ok"
		if err := cache.RDB.Ping(ctx).Err(); err != nil {
			status["cache"] = "down"
		}
	}

	response.JSON(w, code, status)
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
