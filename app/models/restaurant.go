package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	Base
	Name     string `gorm:"uniqueIndex;size:255;not null" json:"name"`
	Slug     string `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	CoverImg string `gorm:"size:512" json:"coverImg"`
}

// Restaurant is owned by exactly one Owner account. IsPromoted is only true
// while PromotedUntil lies in the future; the promotion sweeper clears both
// once it has passed.
type Restaurant struct {
	Base
	Name          string     `gorm:"size:255;not null" json:"name"`
	CoverImg      string     `gorm:"size:512" json:"coverImg"`
	Address       string     `gorm:"size:255" json:"address"`
	CategoryID    *uint      `gorm:"index" json:"categoryId"`
	Category      *Category  `gorm:"constraint:OnDelete:SET NULL" json:"category,omitempty"`
	OwnerID       uint       `gorm:"index;not null" json:"ownerId"`
	Owner         *User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	IsPromoted    bool       `gorm:"not null;default:false;index" json:"isPromoted"`
	PromotedUntil *time.Time `json:"promotedUntil"`
}

// Dish is one menu entry. Options is stored as a JSON column.
type Dish struct {
	Base
	Name         string          `gorm:"size:255;not null" json:"name"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Photo        string          `gorm:"size:512" json:"photo"`
	Description  string          `gorm:"size:140" json:"description"`
	RestaurantID uint            `gorm:"index;not null" json:"restaurantId"`
	Restaurant   *Restaurant     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Options      []DishOption    `gorm:"serializer:json" json:"options"`
}

// DishOption is a named customisation. When Extra is set it is the whole
// surcharge and Choices are not priced.
type DishOption struct {
	Name    string           `json:"name"`
	Extra   *decimal.Decimal `json:"extra,omitempty"`
	Choices []DishChoice     `json:"choices,omitempty"`
}

type DishChoice struct {
	Name  string           `json:"name"`
	Extra *decimal.Decimal `json:"extra,omitempty"`
}

// Option returns the option named exactly name.
func (d *Dish) Option(name string) (DishOption, bool) {
	for _, o := range d.Options {
		if o.Name == name {
			return o, true
		}
	}
	return DishOption{}, false
}

// Choice returns the choice named exactly name.
func (o DishOption) Choice(name string) (DishChoice, bool) {
	for _, c := range o.Choices {
		if c.Name == name {
			return c, true
		}
	}
	return DishChoice{}, false
}
