package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nuber-eats/nuber/app/models"
	"github.com/nuber-eats/nuber/pkg/auth"
)

func TestSweep_DemotesOnlyExpired(t *testing.T) {
	db := newDB(t)
	owner := seedUser(t, db, "owner@nuber.test", auth.RoleOwner)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	promote := func(name string, until time.Time) *models.Restaurant {
		r := seedRestaurant(t, db, owner, name)
		r.IsPromoted = true
		r.PromotedUntil = &until
		require.NoError(t, db.Save(r).Error)
		return r
	}
	expiredA := promote("Expired One", now.Add(-time.Hour))
	expiredB := promote("Expired Two", now.Add(-time.Second))
	active := promote("Still Going", now.Add(time.Hour))
	plain := seedRestaurant(t, db, owner, "Never Promoted")

	sweeper := NewPromotionSweeper(db)
	sweeper.now = func() time.Time { return now }

	n, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	reload := func(id uint) models.Restaurant {
		var r models.Restaurant
		require.NoError(t, db.First(&r, id).Error)
		return r
	}
	for _, id := range []uint{expiredA.ID, expiredB.ID} {
		r := reload(id)
		assert.False(t, r.IsPromoted)
		assert.Nil(t, r.PromotedUntil)
	}
	assert.True(t, reload(active.ID).IsPromoted)
	assert.False(t, reload(plain.ID).IsPromoted)
}

func TestSweep_Idempotent(t *testing.T) {
	db := newDB(t)
	owner := seedUser(t, db, "owner@nuber.test", auth.RoleOwner)
	r := seedRestaurant(t, db, owner, "Expired One")
	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(r).Updates(map[string]interface{}{"is_promoted": true, "promoted_until": past}).Error)

	sweeper := NewPromotionSweeper(db)

	n, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var updates int
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("test:count_updates", func(*gorm.DB) { updates++ }))

	n, err = sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, updates)
}

func TestSweep_KeepsWritesMadeAfterTheScan(t *testing.T) {
	db := newDB(t)
	owner := seedUser(t, db, "owner@nuber.test", auth.RoleOwner)
	r := seedRestaurant(t, db, owner, "Old Name")
	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(r).Updates(map[string]interface{}{"is_promoted": true, "promoted_until": past}).Error)

	// A rename and a renewed payment land between the scan and the demotion.
	renewed := time.Now().Add(7 * 24 * time.Hour)
	var fired bool
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:renew_after_scan", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "restaurants" {
			return
		}
		fired = true
		require.NoError(t, db.Exec("UPDATE restaurants SET name = ?, promoted_until = ? WHERE id = ?", "New Name", renewed, r.ID).Error)
	}))

	n, err := NewPromotionSweeper(db).Sweep(context.Background())
	require.NoError(t, err)
	require.True(t, fired)
	assert.Zero(t, n)

	var stored models.Restaurant
	require.NoError(t, db.First(&stored, r.ID).Error)
	assert.Equal(t, "New Name", stored.Name)
	assert.True(t, stored.IsPromoted)
	require.NotNil(t, stored.PromotedUntil)
	assert.True(t, stored.PromotedUntil.After(time.Now()))
}
