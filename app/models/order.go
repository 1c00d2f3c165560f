package models

import "github.com/shopspring/decimal"

type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderCooking   OrderStatus = "Cooking"
	OrderCooked    OrderStatus = "Cooked"
	OrderPickedUp  OrderStatus = "PickedUp"
	OrderDelivered OrderStatus = "Delivered"
)

// OrderStatuses is the lifecycle in order. Orders only ever move one step
// forward.
var OrderStatuses = []OrderStatus{OrderPending, OrderCooking, OrderCooked, OrderPickedUp, OrderDelivered}

func (s OrderStatus) rank() int {
	for i, v := range OrderStatuses {
		if v == s {
			return i
		}
	}
	return -1
}

func (s OrderStatus) Valid() bool { return s.rank() >= 0 }

// Next reports whether to is the status directly after s.
func (s OrderStatus) Next(to OrderStatus) bool {
	return s.Valid() && to.rank() == s.rank()+1
}

// Order references are nullable: deleting a customer, driver or restaurant
// keeps the order history.
type Order struct {
	Base
	CustomerID   *uint           `gorm:"index" json:"customerId"`
	Customer     *User           `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	DriverID     *uint           `gorm:"index" json:"driverId"`
	Driver       *User           `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	RestaurantID *uint           `gorm:"index" json:"restaurantId"`
	Restaurant   *Restaurant     `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Items        []OrderItem     `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	Total        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	Status       OrderStatus     `gorm:"size:20;not null;default:Pending" json:"status"`
}

// OrderItem is the priced snapshot of one line item. It is never updated.
type OrderItem struct {
	Base
	OrderID uint              `gorm:"index;not null" json:"orderId"`
	DishID  *uint             `gorm:"index" json:"dishId"`
	Dish    *Dish             `gorm:"constraint:OnDelete:SET NULL" json:"dish,omitempty"`
	Options []OrderItemOption `gorm:"serializer:json" json:"options"`
	Price   decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"price"`
}

// OrderItemOption is one caller-supplied selection, kept verbatim.
type OrderItemOption struct {
	Name   string  `json:"name"`
	Choice *string `json:"choice,omitempty"`
}
