package database

import (
	"time"

	"github.com/nuber-eats/nuber/pkg/metrics"
	"gorm.io/gorm"
)

const startedAtKey = "nuber:started_at"

// Instrument records every query's latency in metrics.DBQueryDuration,
// labelled select, insert, update, delete or raw.
func Instrument(db *gorm.DB) error {
	cb := db.Callback()

	hooks := []struct {
		op     string
		before func(string, func(*gorm.DB)) error
		after  func(string, func(*gorm.DB)) error
	}{
		{"select", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"insert", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}

	for _, h := range hooks {
		op := h.op
		if err := h.before("nuber:metrics_before_"+op, startTimer); err != nil {
			return err
		}
		if err := h.after("nuber:metrics_after_"+op, func(tx *gorm.DB) { observe(tx, op) }); err != nil {
			return err
		}
	}
	return nil
}

func startTimer(tx *gorm.DB) {
	tx.InstanceSet(startedAtKey, time.Now())
}

func observe(tx *gorm.DB, op string) {
	v, ok := tx.InstanceGet(startedAtKey)
	if !ok {
		return
	}
	if start, ok := v.(time.Time); ok {
		metrics.ObserveDBQuery(op, start)
	}
}
