// Package dto holds the inputs and result envelopes of every API operation.
// Inputs carry validate tags checked by pkg/bind before a service runs.
package dto

import (
	"github.com/nuber-eats/nuber/app/models"
	"github.com/nuber-eats/nuber/pkg/auth"
	"github.com/nuber-eats/nuber/pkg/orm"
)

// Output is the result envelope shared by every mutation. Expected failures
// are reported here, never as transport errors.
type Output struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func OK() Output                 { return Output{OK: true} }
func Fail(message string) Output { return Output{Error: message} }

// PageOutput adds pagination totals to Output.
type PageOutput struct {
	Output
	TotalPages   int   `json:"totalPages"`
	TotalResults int64 `json:"totalResults"`
}

func Page(p orm.Pagination) PageOutput {
	return PageOutput{Output: OK(), TotalPages: p.TotalPages, TotalResults: p.TotalResults}
}

// ── Accounts ─────────────────────────────────────────────────────────────────

type CreateAccountInput struct {
	Email    string    `json:"email" validate:"required,email,max=255"`
	Password string    `json:"password" validate:"required"`
	Role     auth.Role `json:"role" validate:"required,oneof=Client Owner Delivery"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginOutput struct {
	Output
	Token string `json:"token,omitempty"`
}

type UserProfileInput struct {
	UserID uint `json:"userId" validate:"gt=0"`
}

type UserProfileOutput struct {
	Output
	User *models.User `json:"user,omitempty"`
}

type EditProfileInput struct {
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Password *string `json:"password" validate:"omitempty,min=1"`
}

type VerifyEmailInput struct {
	Code string `json:"code" validate:"required"`
}

type CreateGPSInput struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

type EditGPSInput struct {
	GPSID uint     `json:"gpsId" validate:"gt=0"`
	Lat   *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lng   *float64 `json:"lng" validate:"omitempty,gte=-180,lte=180"`
}

type GPSOutput struct {
	Output
	GPS *models.UserGPS `json:"gps,omitempty"`
}

// ── Restaurants ──────────────────────────────────────────────────────────────

type CreateRestaurantInput struct {
	Name         string `json:"name" validate:"required,min=5,max=255"`
	Address      string `json:"address" validate:"required"`
	CoverImg     string `json:"coverImg"`
	CategoryName string `json:"categoryName" validate:"required"`
}

type CreateRestaurantOutput struct {
	Output
	RestaurantID uint `json:"restaurantId,omitempty"`
}

type EditRestaurantInput struct {
	RestaurantID uint    `json:"restaurantId" validate:"gt=0"`
	Name         *string `json:"name" validate:"omitempty,min=5,max=255"`
	Address      *string `json:"address"`
	CoverImg     *string `json:"coverImg"`
	CategoryName *string `json:"categoryName"`
}

type RestaurantIDInput struct {
	RestaurantID uint `json:"restaurantId" validate:"gt=0"`
}

type PageInput struct {
	Page int `json:"page" validate:"gte=1"`
}

type SearchRestaurantInput struct {
	Query string `json:"query" validate:"required"`
	Page  int    `json:"page" validate:"gte=1"`
}

type CategoryInput struct {
	Slug string `json:"slug" validate:"required"`
	Page int    `json:"page" validate:"gte=1"`
}

type RestaurantsOutput struct {
	PageOutput
	Results []models.Restaurant `json:"results"`
}

type RestaurantOutput struct {
	Output
	Restaurant *models.Restaurant `json:"restaurant,omitempty"`
	Menu       []models.Dish      `json:"menu,omitempty"`
}

type AllCategoriesOutput struct {
	Output
	Categories []models.Category `json:"categories"`
}

type CategoryOutput struct {
	PageOutput
	Category    *models.Category    `json:"category,omitempty"`
	Restaurants []models.Restaurant `json:"restaurants"`
}

// ── Dishes ───────────────────────────────────────────────────────────────────

type DishChoiceInput struct {
	Name  string   `json:"name" validate:"required"`
	Extra *float64 `json:"extra" validate:"omitempty,gte=0"`
}

type DishOptionInput struct {
	Name    string            `json:"name" validate:"required"`
	Extra   *float64          `json:"extra" validate:"omitempty,gte=0"`
	Choices []DishChoiceInput `json:"choices" validate:"dive"`
}

type CreateDishInput struct {
	RestaurantID uint              `json:"restaurantId" validate:"gt=0"`
	Name         string            `json:"name" validate:"required,min=5,max=255"`
	Price        float64           `json:"price" validate:"gte=0"`
	Description  string            `json:"description" validate:"max=140"`
	Photo        string            `json:"photo"`
	Options      []DishOptionInput `json:"options" validate:"dive"`
}

type EditDishInput struct {
	DishID      uint               `json:"dishId" validate:"gt=0"`
	Name        *string            `json:"name" validate:"omitempty,min=5,max=255"`
	Price       *float64           `json:"price" validate:"omitempty,gte=0"`
	Description *string            `json:"description" validate:"omitempty,max=140"`
	Photo       *string            `json:"photo"`
	Options     *[]DishOptionInput `json:"options" validate:"omitempty,dive"`
}

type DishIDInput struct {
	DishID uint `json:"dishId" validate:"gt=0"`
}

// ── Orders ───────────────────────────────────────────────────────────────────

type OrderItemOptionInput struct {
	Name   string  `json:"name" validate:"required"`
	Choice *string `json:"choice"`
}

type CreateOrderItemInput struct {
	DishID  uint                   `json:"dishId" validate:"gt=0"`
	Options []OrderItemOptionInput `json:"options" validate:"dive"`
}

type CreateOrderInput struct {
	RestaurantID uint                   `json:"restaurantId" validate:"gt=0"`
	Items        []CreateOrderItemInput `json:"items" validate:"required,min=1,dive"`
}

type CreateOrderOutput struct {
	Output
	OrderID uint `json:"orderId,omitempty"`
}

type OrderIDInput struct {
	ID uint `json:"id" validate:"gt=0"`
}

type OrderOutput struct {
	Output
	Order *models.Order `json:"order,omitempty"`
}

type EditOrderInput struct {
	ID     uint               `json:"id" validate:"gt=0"`
	Status models.OrderStatus `json:"status" validate:"required,oneof=Pending Cooking Cooked PickedUp Delivered"`
}

// ── Payments ─────────────────────────────────────────────────────────────────

type CreatePaymentInput struct {
	TransactionID string `json:"transactionId" validate:"required"`
	RestaurantID  uint   `json:"restaurantId" validate:"gt=0"`
}

type PaymentsOutput struct {
	Output
	Payments []models.Payment `json:"payments"`
}
