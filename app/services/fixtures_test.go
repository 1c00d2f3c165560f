package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nuber-eats/nuber/app/models"
	"github.com/nuber-eats/nuber/pkg/auth"
	"github.com/nuber-eats/nuber/pkg/mail"
	"github.com/nuber-eats/nuber/pkg/testkit"
	"github.com/nuber-eats/nuber/pkg/ws"
)

func newDB(t *testing.T) *gorm.DB {
	return testkit.NewDB(t, models.All()...)
}

func seedUser(t *testing.T, db *gorm.DB, email string, role auth.Role) *auth.Principal {
	t.Helper()
	hash, err := auth.HashPassword("secret")
	require.NoError(t, err)
	u := &models.User{Email: email, Password: hash, Role: role}
	require.NoError(t, db.Create(u).Error)
	return &auth.Principal{ID: u.ID, Role: role}
}

func seedRestaurant(t *testing.T, db *gorm.DB, owner *auth.Principal, name string) *models.Restaurant {
	t.Helper()
	r := &models.Restaurant{Name: name, Address: "1 Main St", OwnerID: owner.ID}
	require.NoError(t, db.Create(r).Error)
	return r
}

func seedDish(t *testing.T, db *gorm.DB, d *models.Dish) *models.Dish {
	t.Helper()
	d.ID = 0
	require.NoError(t, db.Create(d).Error)
	return d
}

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

type published struct {
	userID uint
	event  ws.Event
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (r *recordingPublisher) Publish(userID uint, ev ws.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, published{userID, ev})
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []*mail.Message
}

func (r *recordingMailer) Enqueue(m *mail.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, m)
	return nil
}
