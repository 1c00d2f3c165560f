package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nuber-eats/nuber/pkg/auth"
)

// User is a platform account. Password holds a bcrypt hash and is never
// serialised.
type User struct {
	Base
	Email    string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string    `gorm:"size:255;not null" json:"-"`
	Role     auth.Role `gorm:"size:20;not null" json:"role"`
	Verified bool      `gorm:"not null;default:false" json:"verified"`
}

// Verification is the pending e-mail confirmation for a user.
type Verification struct {
	Base
	Code   string `gorm:"uniqueIndex;size:36;not null" json:"code"`
	UserID uint   `gorm:"uniqueIndex;not null" json:"userId"`
	User   *User  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate assigns a fresh code.
func (v *Verification) BeforeCreate(*gorm.DB) error {
	if v.Code == "" {
		v.Code = uuid.NewString()
	}
	return nil
}

// UserGPS is a location reported by a client.
type UserGPS struct {
	Base
	Lat    float64 `gorm:"not null" json:"lat"`
	Lng    float64 `gorm:"not null" json:"lng"`
	UserID uint    `gorm:"index;not null" json:"userId"`
	User   *User   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (UserGPS) TableName() string { return "user_gps" }
