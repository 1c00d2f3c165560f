package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuber-eats/nuber/app/models"
)

type fakeCatalog struct {
	restaurants map[uint]*models.Restaurant
	dishes      map[uint]*models.Dish
	err         error
	dishLookups []uint
}

func (f *fakeCatalog) FindRestaurant(_ context.Context, id uint) (*models.Restaurant, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.restaurants[id], nil
}

func (f *fakeCatalog) FindDish(_ context.Context, id uint) (*models.Dish, error) {
	f.dishLookups = append(f.dishLookups, id)
	return f.dishes[id], nil
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func moneyPtr(s string) *decimal.Decimal {
	d := money(s)
	return &d
}

func strPtr(s string) *string { return &s }

func sizeDish() *models.Dish {
	return &models.Dish{
		Base:  models.Base{ID: 1},
		Name:  "Burger",
		Price: money("10.00"),
		Options: []models.DishOption{{
			Name: "Size",
			Choices: []models.DishChoice{
				{Name: "Small"},
				{Name: "Large", Extra: moneyPtr("2.00")},
			},
		}},
	}
}

func spicyDish() *models.Dish {
	return &models.Dish{
		Base:  models.Base{ID: 2},
		Name:  "Noodles",
		Price: money("8.00"),
		Options: []models.DishOption{{
			Name:    "Spicy",
			Extra:   moneyPtr("1.50"),
			Choices: []models.DishChoice{{Name: "Very", Extra: moneyPtr("5.00")}},
		}},
	}
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		restaurants: map[uint]*models.Restaurant{7: {Base: models.Base{ID: 7}, Name: "Burger Palace"}},
		dishes:      map[uint]*models.Dish{1: sizeDish(), 2: spicyDish()},
	}
}

func TestPriceItem_ChoiceExtra(t *testing.T) {
	price := PriceItem(sizeDish(), []models.OrderItemOption{{Name: "Size", Choice: strPtr("Large")}})
	assert.True(t, money("12.00").Equal(price), price.String())
}

func TestPriceItem_OptionExtraIgnoresChoices(t *testing.T) {
	price := PriceItem(spicyDish(), []models.OrderItemOption{{Name: "Spicy", Choice: strPtr("Very")}})
	assert.True(t, money("9.50").Equal(price), price.String())

	price = PriceItem(spicyDish(), []models.OrderItemOption{{Name: "Spicy"}})
	assert.True(t, money("9.50").Equal(price), price.String())
}

func TestPriceItem_UnmatchedSelectionsAreFree(t *testing.T) {
	cases := map[string][]models.OrderItemOption{
		"unknown option":      {{Name: "Sauce", Choice: strPtr("BBQ")}},
		"case sensitive":      {{Name: "size", Choice: strPtr("Large")}},
		"unknown choice":      {{Name: "Size", Choice: strPtr("Huge")}},
		"choice without cost": {{Name: "Size", Choice: strPtr("Small")}},
		"no choice named":     {{Name: "Size"}},
		"no selections":       nil,
	}
	for name, sel := range cases {
		t.Run(name, func(t *testing.T) {
			price := PriceItem(sizeDish(), sel)
			assert.True(t, money("10.00").Equal(price), price.String())
		})
	}
}

func TestPriceItem_ZeroOptionExtraFallsThroughToChoice(t *testing.T) {
	dish := sizeDish()
	dish.Options[0].Extra = moneyPtr("0")

	price := PriceItem(dish, []models.OrderItemOption{{Name: "Size", Choice: strPtr("Large")}})
	assert.True(t, money("12.00").Equal(price), price.String())
}

func TestComputeOrderTotal(t *testing.T) {
	catalog := newFakeCatalog()

	priced, err := ComputeOrderTotal(context.Background(), catalog, 7, []LineItem{
		{DishID: 2, Options: []models.OrderItemOption{{Name: "Spicy"}}},
		{DishID: 1, Options: []models.OrderItemOption{{Name: "Size", Choice: strPtr("Large")}}},
	})
	require.NoError(t, err)

	assert.True(t, money("21.50").Equal(priced.Total), priced.Total.String())
	require.Len(t, priced.Items, 2)
	assert.Equal(t, uint(2), *priced.Items[0].DishID)
	assert.True(t, money("9.50").Equal(priced.Items[0].Price))
	assert.Equal(t, uint(1), *priced.Items[1].DishID)
	assert.True(t, money("12.00").Equal(priced.Items[1].Price))
	assert.Equal(t, "Large", *priced.Items[1].Options[0].Choice)
	assert.Equal(t, []uint{2, 1}, catalog.dishLookups)
}

func TestComputeOrderTotal_NotFound(t *testing.T) {
	catalog := newFakeCatalog()

	_, err := ComputeOrderTotal(context.Background(), catalog, 99, []LineItem{{DishID: 1}})
	assert.ErrorIs(t, err, ErrRestaurantNotFound)
	assert.Empty(t, catalog.dishLookups)

	_, err = ComputeOrderTotal(context.Background(), catalog, 7, []LineItem{{DishID: 1}, {DishID: 42}, {DishID: 2}})
	assert.ErrorIs(t, err, ErrDishNotFound)
	assert.Equal(t, []uint{1, 42}, catalog.dishLookups)
}

func TestComputeOrderTotal_LookupError(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.err = errors.New("connection reset")

	_, err := ComputeOrderTotal(context.Background(), catalog, 7, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRestaurantNotFound)
}
