package models

type Payment struct {
	Base
	TransactionID string      `gorm:"size:255;not null" json:"transactionId"`
	UserID        uint        `gorm:"index;not null" json:"userId"`
	User          *User       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	RestaurantID  uint        `gorm:"index;not null" json:"restaurantId"`
	Restaurant    *Restaurant `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
