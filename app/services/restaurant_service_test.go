package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuber-eats/nuber/app/dto"
	"github.com/nuber-eats/nuber/app/models"
	"github.com/nuber-eats/nuber/pkg/auth"
)

func TestCreateRestaurant_SharesCategoryBySlug(t *testing.T) {
	db := newDB(t)
	svc := NewRestaurantService(db)
	owner := seedUser(t, db, "owner@nuber.test", auth.RoleOwner)
	ctx := context.Background()

	a := svc.CreateRestaurant(ctx, owner, dto.CreateRestaurantInput{Name: "Kimchi House", Address: "x", CategoryName: " Korean Food "})
	b := svc.CreateRestaurant(ctx, owner, dto.CreateRestaurantInput{Name: "Bibim Place", Address: "y", CategoryName: "korean food"})
	require.True(t, a.OK, a.Error)
	require.True(t, b.OK, b.Error)

	assert.Equal(t, int64(1), count(t, db, &models.Category{}))

	out := svc.FindCategoryBySlug(ctx, dto.CategoryInput{Slug: "korean-food", Page: 1})
	require.True(t, out.OK, out.Error)
	assert.Equal(t, "korean food", out.Category.Name)
	assert.Len(t, out.Restaurants, 2)
	assert.Equal(t, 1, out.TotalPages)

	n, err := svc.CountRestaurants(ctx, out.Category.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	assert.Equal(t, "Category not found", svc.FindCategoryBySlug(ctx, dto.CategoryInput{Slug: "thai", Page: 1}).Error)

	all := svc.AllCategories(ctx)
	require.True(t, all.OK)
	assert.Len(t, all.Categories, 1)
}

func TestEditAndDeleteRestaurant_RequireOwnership(t *testing.T) {
	db := newDB(t)
	svc := NewRestaurantService(db)
	owner := seedUser(t, db, "owner@nuber.test", auth.RoleOwner)
	rival := seedUser(t, db, "rival@nuber.test", auth.RoleOwner)
	rest := seedRestaurant(t, db, owner, "Burger Palace")
	ctx := context.Background()

	edit := dto.EditRestaurantInput{RestaurantID: rest.ID, Name: strPtr("Burger Castle"), CategoryName: strPtr("Fast Food")}
	assert.Equal(t, "You can't edit a restaurant that you don't own", svc.EditRestaurant(ctx, rival, edit).Error)
	assert.Equal(t, "Restaurant not found", svc.EditRestaurant(ctx, owner, dto.EditRestaurantInput{RestaurantID: 999}).Error)
	require.True(t, svc.EditRestaurant(ctx, owner, edit).OK)

	found := svc.FindRestaurant(ctx, dto.RestaurantIDInput{RestaurantID: rest.ID})
	require.True(t, found.OK)
	assert.Equal(t, "Burger Castle", found.Restaurant.Name)
	require.NotNil(t, found.Restaurant.Category)
	assert.Equal(t, "fast-food", found.Restaurant.Category.Slug)

	del := dto.RestaurantIDInput{RestaurantID: rest.ID}
	assert.Equal(t, "You can't delete a restaurant that you don't own", svc.DeleteRestaurant(ctx, rival, del).Error)
	require.True(t, svc.DeleteRestaurant(ctx, owner, del).OK)
	assert.Equal(t, "Restaurant not found", svc.FindRestaurant(ctx, del).Error)
}

func TestListing_PromotedFirstAndPaged(t *testing.T) {
	db := newDB(t)
	svc := NewRestaurantService(db)
	owner := seedUser(t, db, "owner@nuber.test", auth.RoleOwner)
	ctx := context.Background()

	for i := 0; i < 30; i++ {
		seedRestaurant(t, db, owner, fmt.Sprintf("Diner %02d", i))
	}
	pizza := &models.Category{Name: "pizza", Slug: "pizza"}
	require.NoError(t, db.Create(pizza).Error)
	promoted := seedRestaurant(t, db, owner, "Promoted Pizza")
	until := time.Now().Add(time.Hour)
	require.NoError(t, db.Model(promoted).Updates(map[string]interface{}{
		"is_promoted": true, "promoted_until": until, "category_id": pizza.ID,
	}).Error)

	first := svc.AllRestaurants(ctx, dto.PageInput{Page: 1})
	require.True(t, first.OK, first.Error)
	assert.Len(t, first.Results, 25)
	assert.Equal(t, promoted.ID, first.Results[0].ID)
	require.NotNil(t, first.Results[0].Category)
	assert.Equal(t, "pizza", first.Results[0].Category.Slug)
	assert.Equal(t, int64(31), first.TotalResults)
	assert.Equal(t, 2, first.TotalPages)

	second := svc.AllRestaurants(ctx, dto.PageInput{Page: 2})
	assert.Len(t, second.Results, 6)
}

func TestSearchRestaurants_CaseInsensitive(t *testing.T) {
	db := newDB(t)
	svc := NewRestaurantService(db)
	owner := seedUser(t, db, "owner@nuber.test", auth.RoleOwner)
	seedRestaurant(t, db, owner, "Burger Palace")
	seedRestaurant(t, db, owner, "BURGER barn")
	seedRestaurant(t, db, owner, "Taco Town")
	ctx := context.Background()

	out := svc.SearchRestaurants(ctx, dto.SearchRestaurantInput{Query: "burger", Page: 1})
	require.True(t, out.OK)
	assert.Len(t, out.Results, 2)
	assert.Equal(t, int64(2), out.TotalResults)

	out = svc.SearchRestaurants(ctx, dto.SearchRestaurantInput{Query: "' OR 1=1 --", Page: 1})
	require.True(t, out.OK)
	assert.Empty(t, out.Results)
}

func TestDishes_OwnerOnly(t *testing.T) {
	db := newDB(t)
	svc := NewRestaurantService(db)
	owner := seedUser(t, db, "owner@nuber.test", auth.RoleOwner)
	rival := seedUser(t, db, "rival@nuber.test", auth.RoleOwner)
	rest := seedRestaurant(t, db, owner, "Burger Palace")
	ctx := context.Background()

	extra := 2.0
	in := dto.CreateDishInput{
		RestaurantID: rest.ID,
		Name:         "Cheese Burger",
		Price:        10,
		Options: []dto.DishOptionInput{{
			Name:    "Size",
			Choices: []dto.DishChoiceInput{{Name: "Large", Extra: &extra}},
		}},
	}
	assert.Equal(t, "You can't do that.", svc.CreateDish(ctx, rival, in).Error)
	require.True(t, svc.CreateDish(ctx, owner, in).OK)

	menu := svc.FindRestaurant(ctx, dto.RestaurantIDInput{RestaurantID: rest.ID}).Menu
	require.Len(t, menu, 1)
	dish := menu[0]
	assert.True(t, money("12.00").Equal(PriceItem(&dish, []models.OrderItemOption{{Name: "Size", Choice: strPtr("Large")}})))

	price := 11.5
	assert.Equal(t, "You can't do that.", svc.EditDish(ctx, rival, dto.EditDishInput{DishID: dish.ID, Price: &price}).Error)
	require.True(t, svc.EditDish(ctx, owner, dto.EditDishInput{DishID: dish.ID, Price: &price}).OK)

	var stored models.Dish
	require.NoError(t, db.First(&stored, dish.ID).Error)
	assert.True(t, money("11.50").Equal(stored.Price))
	assert.Len(t, stored.Options, 1)

	assert.Equal(t, "Dish not found", svc.DeleteDish(ctx, owner, dto.DishIDInput{DishID: 999}).Error)
	require.True(t, svc.DeleteDish(ctx, owner, dto.DishIDInput{DishID: dish.ID}).OK)
	assert.Zero(t, count(t, db, &models.Dish{}))
}
