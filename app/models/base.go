package models

import "time"

// Base is embedded by every entity. Rows are hard-deleted; there is no
// DeletedAt column.
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Verification{},
		&UserGPS{},
		&Category{},
		&Restaurant{},
		&Dish{},
		&Order{},
		&OrderItem{},
		&Payment{},
	}
}
