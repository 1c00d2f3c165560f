package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/nuber-eats/nuber/app/repositories"
	"github.com/nuber-eats/nuber/pkg/logger"
	"github.com/nuber-eats/nuber/pkg/metrics"
)

// PromotionSweeper demotes restaurants whose paid promotion has run out.
type PromotionSweeper struct {
	catalog *repositories.CatalogRepository
	now     func() time.Time
}

func NewPromotionSweeper(db *gorm.DB) *PromotionSweeper {
	return &PromotionSweeper{
		catalog: repositories.NewCatalogRepository(db),
		now:     time.Now,
	}
}

// Sweep clears the promotion of every restaurant whose window ended before
// now and returns how many were demoted. Each restaurant is demoted on its
// own and only while it is still expired; one failure is logged and does
// not stop the rest.
func (s *PromotionSweeper) Sweep(ctx context.Context) (int, error) {
	now := s.now()
	expired, err := s.catalog.ExpiredPromotions(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("promotions: scan: %w", err)
	}

	demoted := 0
	for _, rest := range expired {
		ok, err := s.catalog.DemoteExpired(ctx, rest.ID, now)
		if err != nil {
			metrics.PromotionsExpired.WithLabelValues("failed").Inc()
			logger.Error("promotions: demote failed", "restaurant_id", rest.ID, "error", err)
			continue
		}
		if !ok {
			continue
		}
		metrics.PromotionsExpired.WithLabelValues("ok").Inc()
		demoted++
	}

	if demoted > 0 {
		logger.Info("promotions: expired", "count", demoted)
	}
	return demoted, nil
}

// Run is the scheduler entry point.
func (s *PromotionSweeper) Run(ctx context.Context) {
	if _, err := s.Sweep(ctx); err != nil {
		logger.Error("promotions: sweep failed", "error", err)
	}
}
