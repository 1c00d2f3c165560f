package seeders

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nuber-eats/nuber/app/models"
	"github.com/nuber-eats/nuber/app/repositories"
	"github.com/nuber-eats/nuber/pkg/auth"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password"

func init() {
	Register("accounts", seedAccounts)
	Register("catalog", seedCatalog)
}

var demoAccounts = []struct {
	email string
	role  auth.Role
}{
	{"client@nuber.test", auth.RoleClient},
	{"owner@nuber.test", auth.RoleOwner},
	{"driver@nuber.test", auth.RoleDelivery},
}

func seedAccounts(ctx context.Context, db *gorm.DB) error {
	users := repositories.NewUserRepository(db)
	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return err
	}
	for _, a := range demoAccounts {
		existing, err := users.FindByEmail(ctx, a.email)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if err := users.Create(ctx, &models.User{Email: a.email, Password: hash, Role: a.role, Verified: true}); err != nil {
			return err
		}
	}
	return nil
}

func seedCatalog(ctx context.Context, db *gorm.DB) error {
	users := repositories.NewUserRepository(db)
	catalog := repositories.NewCatalogRepository(db)

	owner, err := users.FindByEmail(ctx, "owner@nuber.test")
	if err != nil {
		return err
	}
	if owner == nil {
		return errors.New("owner account missing")
	}

	n, err := catalog.CountOwnedRestaurants(ctx, owner.ID)
	if err != nil || n > 0 {
		return err
	}

	category, err := catalog.GetOrCreateCategory(ctx, "Fast Food")
	if err != nil {
		return err
	}
	rest := &models.Restaurant{Name: "Burger Palace", Address: "1 Main St", OwnerID: owner.ID, CategoryID: &category.ID}
	if err := catalog.CreateRestaurant(ctx, rest); err != nil {
		return err
	}

	two := decimal.NewFromInt(2)
	oneFifty := decimal.RequireFromString("1.50")
	dishes := []*models.Dish{
		{
			Name: "Cheeseburger", Price: decimal.NewFromInt(10), RestaurantID: rest.ID,
			Description: "Beef, cheddar, pickles",
			Options: []models.DishOption{
				{Name: "Size", Choices: []models.DishChoice{{Name: "Regular"}, {Name: "Large", Extra: &two}}},
				{Name: "Bacon", Extra: &oneFifty},
			},
		},
		{Name: "Fries", Price: decimal.RequireFromString("3.50"), RestaurantID: rest.ID, Description: "Salted"},
	}
	for _, d := range dishes {
		if err := catalog.CreateDish(ctx, d); err != nil {
			return err
		}
	}
	return nil
}
