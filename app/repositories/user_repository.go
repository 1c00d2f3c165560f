package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/nuber-eats/nuber/app/models"
	"github.com/nuber-eats/nuber/pkg/auth"
	"github.com/nuber-eats/nuber/pkg/orm"
)

// UserRepository handles database operations for accounts, their e-mail
// verifications and reported locations.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) query(ctx context.Context) *orm.Query {
	return orm.Use(r.db).WithContext(ctx)
}

// FindByEmail looks up a user by their email address. A missing user is
// (nil, nil).
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.query(ctx).Where("email = ?", email).First(&user)
	return found(&user, err)
}

// FindByID looks up a user by primary key. A missing user is (nil, nil).
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.query(ctx).Where("id = ?", id).First(&user)
	return found(&user, err)
}

// FindAccount satisfies auth.AccountFinder.
func (r *UserRepository) FindAccount(ctx context.Context, id uint) (*auth.Account, error) {
	user, err := r.FindByID(ctx, id)
	if err != nil || user == nil {
		return nil, err
	}
	return &auth.Account{ID: user.ID, Role: user.Role, Verified: user.Verified}, nil
}

// Create persists a new user record.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.query(ctx).Create(user)
}

// Update persists changes to an existing user.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	return r.query(ctx).Save(user)
}

func (r *UserRepository) CreateVerification(ctx context.Context, v *models.Verification) error {
	return r.query(ctx).Create(v)
}

// FindVerification loads a pending verification and its user.
func (r *UserRepository) FindVerification(ctx context.Context, code string) (*models.Verification, error) {
	var v models.Verification
	err := r.query(ctx).Preload("User").Where("code = ?", code).First(&v)
	return found(&v, err)
}

func (r *UserRepository) DeleteVerification(ctx context.Context, id uint) error {
	return r.query(ctx).Delete(&models.Verification{}, id)
}

// DeleteVerificationsFor drops any pending verification of userID.
func (r *UserRepository) DeleteVerificationsFor(ctx context.Context, userID uint) error {
	return r.query(ctx).Where("user_id = ?", userID).Delete(&models.Verification{})
}

func (r *UserRepository) CreateGPS(ctx context.Context, gps *models.UserGPS) error {
	return r.query(ctx).Create(gps)
}

func (r *UserRepository) FindGPS(ctx context.Context, id uint) (*models.UserGPS, error) {
	var gps models.UserGPS
	err := r.query(ctx).Where("id = ?", id).First(&gps)
	return found(&gps, err)
}

func (r *UserRepository) UpdateGPS(ctx context.Context, gps *models.UserGPS) error {
	return r.query(ctx).Save(gps)
}

// found folds "record not found" into a nil result.
func found[T any](v *T, err error) (*T, error) {
	if orm.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
