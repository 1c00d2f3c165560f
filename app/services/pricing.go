package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nuber-eats/nuber/app/models"
)

var (
	ErrRestaurantNotFound = errors.New("Restaurant not found")
	ErrDishNotFound       = errors.New("Dish not found")
)

// CatalogReader is the read side of the catalog that pricing depends on.
// Both lookups return (nil, nil) for a missing row.
type CatalogReader interface {
	FindRestaurant(ctx context.Context, id uint) (*models.Restaurant, error)
	FindDish(ctx context.Context, id uint) (*models.Dish, error)
}

// LineItem is one dish the customer asked for, with their selections.
type LineItem struct {
	DishID  uint
	Options []models.OrderItemOption
}

// PricedOrder is the result of pricing a cart. Items are unsaved snapshots in
// the order they were requested.
type PricedOrder struct {
	Restaurant *models.Restaurant
	Items      []models.OrderItem
	Total      decimal.Decimal
}

// ComputeOrderTotal resolves every line item against the current catalog and
// returns the priced snapshot. A missing dish aborts the whole order.
func ComputeOrderTotal(ctx context.Context, catalog CatalogReader, restaurantID uint, items []LineItem) (*PricedOrder, error) {
	restaurant, err := catalog.FindRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("pricing: load restaurant %d: %w", restaurantID, err)
	}
	if restaurant == nil {
		return nil, ErrRestaurantNotFound
	}

	out := &PricedOrder{
		Restaurant: restaurant,
		Items:      make([]models.OrderItem, 0, len(items)),
		Total:      decimal.Zero,
	}

	for _, item := range items {
		dish, err := catalog.FindDish(ctx, item.DishID)
		if err != nil {
			return nil, fmt.Errorf("pricing: load dish %d: %w", item.DishID, err)
		}
		if dish == nil {
			return nil, ErrDishNotFound
		}

		price := PriceItem(dish, item.Options)
		dishID := dish.ID
		out.Items = append(out.Items, models.OrderItem{
			DishID:  &dishID,
			Options: item.Options,
			Price:   price,
		})
		out.Total = out.Total.Add(price)
	}
	return out, nil
}

// PriceItem is the dish base price plus the surcharge of each selection.
//
// A selection matches an option by exact name; unmatched selections cost
// nothing. An option with its own extra charges that and ignores choices.
// Otherwise the named choice's extra applies, if there is one. A zero extra
// counts as no extra.
func PriceItem(dish *models.Dish, selections []models.OrderItemOption) decimal.Decimal {
	price := dish.Price
	for _, sel := range selections {
		opt, ok := dish.Option(sel.Name)
		if !ok {
			continue
		}
		if hasExtra(opt.Extra) {
			price = price.Add(*opt.Extra)
			continue
		}
		if sel.Choice == nil {
			continue
		}
		if choice, ok := opt.Choice(*sel.Choice); ok && hasExtra(choice.Extra) {
			price = price.Add(*choice.Extra)
		}
	}
	return price
}

func hasExtra(d *decimal.Decimal) bool {
	return d != nil && !d.IsZero()
}
