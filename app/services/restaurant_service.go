package services

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nuber-eats/nuber/app/dto"
	"github.com/nuber-eats/nuber/app/models"
	"github.com/nuber-eats/nuber/app/repositories"
	"github.com/nuber-eats/nuber/pkg/auth"
	"github.com/nuber-eats/nuber/pkg/logger"
)

const (
	errCreateRestaurant  = "Could not create restaurant"
	errNoSuchRestaurant  = "Restaurant not found"
	errEditNotOwner      = "You can't edit a restaurant that you don't own"
	errEditRestaurant    = "Could not edit Restaurant"
	errDeleteNotOwner    = "You can't delete a restaurant that you don't own"
	errDeleteRestaurant  = "Could not delete restaurant."
	errLoadCategories    = "Could not load categories"
	errCategoryNotFound  = "Category not found"
	errLoadCategory      = "Could not load category"
	errLoadRestaurants   = "Could not load restaurants"
	errFindRestaurant    = "Could not find restaurant"
	errSearchRestaurants = "Could not search for restaurants"
	errNoSuchDish        = "Dish not found"
	errNotYourDish       = "You can't do that."
	errCreateDish        = "Could not create dish"
	errEditDish          = "Could not edit dish"
	errDeleteDish        = "Could not delete dish"
)

// RestaurantService manages restaurants, their menus and categories.
type RestaurantService struct {
	catalog *repositories.CatalogRepository
}

func NewRestaurantService(db *gorm.DB) *RestaurantService {
	return &RestaurantService{catalog: repositories.NewCatalogRepository(db)}
}

func (s *RestaurantService) CreateRestaurant(ctx context.Context, owner *auth.Principal, in dto.CreateRestaurantInput) dto.CreateRestaurantOutput {
	log := logger.WithCtx(ctx)

	category, err := s.catalog.GetOrCreateCategory(ctx, in.CategoryName)
	if err != nil {
		log.Error("restaurants: category", "name", in.CategoryName, "error", err)
		return dto.CreateRestaurantOutput{Output: dto.Fail(errCreateRestaurant)}
	}

	rest := &models.Restaurant{
		Name:       in.Name,
		Address:    in.Address,
		CoverImg:   in.CoverImg,
		CategoryID: &category.ID,
		OwnerID:    owner.ID,
	}
	if err := s.catalog.CreateRestaurant(ctx, rest); err != nil {
		log.Error("restaurants: create", "error", err)
		return dto.CreateRestaurantOutput{Output: dto.Fail(errCreateRestaurant)}
	}
	return dto.CreateRestaurantOutput{Output: dto.OK(), RestaurantID: rest.ID}
}

// owned loads a restaurant and checks that owner holds it. The returned
// message is empty on success.
func (s *RestaurantService) owned(ctx context.Context, owner *auth.Principal, id uint, notOwner, failed string) (*models.Restaurant, string) {
	rest, err := s.catalog.FindRestaurant(ctx, id)
	if err != nil {
		logger.WithCtx(ctx).Error("restaurants: load", "restaurant_id", id, "error", err)
		return nil, failed
	}
	if rest == nil {
		return nil, errNoSuchRestaurant
	}
	if rest.OwnerID != owner.ID {
		return nil, notOwner
	}
	return rest, ""
}

func (s *RestaurantService) EditRestaurant(ctx context.Context, owner *auth.Principal, in dto.EditRestaurantInput) dto.Output {
	rest, msg := s.owned(ctx, owner, in.RestaurantID, errEditNotOwner, errEditRestaurant)
	if msg != "" {
		return dto.Fail(msg)
	}
	log := logger.WithCtx(ctx)

	if in.CategoryName != nil && *in.CategoryName != "" {
		category, err := s.catalog.GetOrCreateCategory(ctx, *in.CategoryName)
		if err != nil {
			log.Error("restaurants: category", "name", *in.CategoryName, "error", err)
			return dto.Fail(errEditRestaurant)
		}
		rest.CategoryID = &category.ID
	}
	if in.Name != nil {
		rest.Name = *in.Name
	}
	if in.Address != nil {
		rest.Address = *in.Address
	}
	if in.CoverImg != nil {
		rest.CoverImg = *in.CoverImg
	}

	if err := s.catalog.UpdateRestaurant(ctx, rest); err != nil {
		log.Error("restaurants: update", "restaurant_id", rest.ID, "error", err)
		return dto.Fail(errEditRestaurant)
	}
	return dto.OK()
}

func (s *RestaurantService) DeleteRestaurant(ctx context.Context, owner *auth.Principal, in dto.RestaurantIDInput) dto.Output {
	rest, msg := s.owned(ctx, owner, in.RestaurantID, errDeleteNotOwner, errDeleteRestaurant)
	if msg != "" {
		return dto.Fail(msg)
	}
	if err := s.catalog.DeleteRestaurant(ctx, rest.ID); err != nil {
		logger.WithCtx(ctx).Error("restaurants: delete", "restaurant_id", rest.ID, "error", err)
		return dto.Fail(errDeleteRestaurant)
	}
	return dto.OK()
}

func (s *RestaurantService) AllRestaurants(ctx context.Context, in dto.PageInput) dto.RestaurantsOutput {
	list, page, err := s.catalog.ListRestaurants(ctx, in.Page)
	if err != nil {
		logger.WithCtx(ctx).Error("restaurants: list", "error", err)
		return dto.RestaurantsOutput{PageOutput: dto.PageOutput{Output: dto.Fail(errLoadRestaurants)}}
	}
	return dto.RestaurantsOutput{PageOutput: dto.Page(page), Results: list}
}

// FindRestaurant returns a restaurant with its menu.
func (s *RestaurantService) FindRestaurant(ctx context.Context, in dto.RestaurantIDInput) dto.RestaurantOutput {
	log := logger.WithCtx(ctx)

	rest, err := s.catalog.FindRestaurant(ctx, in.RestaurantID)
	if err != nil {
		log.Error("restaurants: load", "restaurant_id", in.RestaurantID, "error", err)
		return dto.RestaurantOutput{Output: dto.Fail(errFindRestaurant)}
	}
	if rest == nil {
		return dto.RestaurantOutput{Output: dto.Fail(errNoSuchRestaurant)}
	}
	menu, err := s.catalog.Menu(ctx, rest.ID)
	if err != nil {
		log.Error("restaurants: menu", "restaurant_id", rest.ID, "error", err)
		return dto.RestaurantOutput{Output: dto.Fail(errFindRestaurant)}
	}
	return dto.RestaurantOutput{Output: dto.OK(), Restaurant: rest, Menu: menu}
}

func (s *RestaurantService) SearchRestaurants(ctx context.Context, in dto.SearchRestaurantInput) dto.RestaurantsOutput {
	list, page, err := s.catalog.SearchRestaurants(ctx, in.Query, in.Page)
	if err != nil {
		logger.WithCtx(ctx).Error("restaurants: search", "query", in.Query, "error", err)
		return dto.RestaurantsOutput{PageOutput: dto.PageOutput{Output: dto.Fail(errSearchRestaurants)}}
	}
	return dto.RestaurantsOutput{PageOutput: dto.Page(page), Results: list}
}

func (s *RestaurantService) AllCategories(ctx context.Context) dto.AllCategoriesOutput {
	list, err := s.catalog.AllCategories(ctx)
	if err != nil {
		logger.WithCtx(ctx).Error("restaurants: categories", "error", err)
		return dto.AllCategoriesOutput{Output: dto.Fail(errLoadCategories)}
	}
	return dto.AllCategoriesOutput{Output: dto.OK(), Categories: list}
}

// CountRestaurants backs the restaurantCount field of a category.
func (s *RestaurantService) CountRestaurants(ctx context.Context, categoryID uint) (int64, error) {
	return s.catalog.CountRestaurants(ctx, categoryID)
}

// FindCategoryBySlug returns a category with one page of its restaurants.
func (s *RestaurantService) FindCategoryBySlug(ctx context.Context, in dto.CategoryInput) dto.CategoryOutput {
	log := logger.WithCtx(ctx)

	category, err := s.catalog.FindCategoryBySlug(ctx, in.Slug)
	if err != nil {
		log.Error("restaurants: category", "slug", in.Slug, "error", err)
		return dto.CategoryOutput{PageOutput: dto.PageOutput{Output: dto.Fail(errLoadCategory)}}
	}
	if category == nil {
		return dto.CategoryOutput{PageOutput: dto.PageOutput{Output: dto.Fail(errCategoryNotFound)}}
	}
	list, page, err := s.catalog.RestaurantsInCategory(ctx, category.ID, in.Page)
	if err != nil {
		log.Error("restaurants: category page", "slug", in.Slug, "error", err)
		return dto.CategoryOutput{PageOutput: dto.PageOutput{Output: dto.Fail(errLoadCategory)}}
	}
	return dto.CategoryOutput{PageOutput: dto.Page(page), Category: category, Restaurants: list}
}

// ── Dishes ───────────────────────────────────────────────────────────────────

func (s *RestaurantService) CreateDish(ctx context.Context, owner *auth.Principal, in dto.CreateDishInput) dto.Output {
	rest, msg := s.owned(ctx, owner, in.RestaurantID, errNotYourDish, errCreateDish)
	if msg != "" {
		return dto.Fail(msg)
	}

	dish := &models.Dish{
		Name:         in.Name,
		Price:        toMoney(in.Price),
		Description:  in.Description,
		Photo:        in.Photo,
		RestaurantID: rest.ID,
		Options:      dishOptions(in.Options),
	}
	if err := s.catalog.CreateDish(ctx, dish); err != nil {
		logger.WithCtx(ctx).Error("dishes: create", "restaurant_id", rest.ID, "error", err)
		return dto.Fail(errCreateDish)
	}
	return dto.OK()
}

// ownedDish loads a dish and checks that owner holds its restaurant.
func (s *RestaurantService) ownedDish(ctx context.Context, owner *auth.Principal, id uint, failed string) (*models.Dish, string) {
	dish, err := s.catalog.FindDish(ctx, id)
	if err != nil {
		logger.WithCtx(ctx).Error("dishes: load", "dish_id", id, "error", err)
		return nil, failed
	}
	if dish == nil {
		return nil, errNoSuchDish
	}
	if _, msg := s.owned(ctx, owner, dish.RestaurantID, errNotYourDish, failed); msg != "" {
		return nil, msg
	}
	return dish, ""
}

func (s *RestaurantService) EditDish(ctx context.Context, owner *auth.Principal, in dto.EditDishInput) dto.Output {
	dish, msg := s.ownedDish(ctx, owner, in.DishID, errEditDish)
	if msg != "" {
		return dto.Fail(msg)
	}

	if in.Name != nil {
		dish.Name = *in.Name
	}
	if in.Price != nil {
		dish.Price = toMoney(*in.Price)
	}
	if in.Description != nil {
		dish.Description = *in.Description
	}
	if in.Photo != nil {
		dish.Photo = *in.Photo
	}
	if in.Options != nil {
		dish.Options = dishOptions(*in.Options)
	}

	if err := s.catalog.UpdateDish(ctx, dish); err != nil {
		logger.WithCtx(ctx).Error("dishes: update", "dish_id", dish.ID, "error", err)
		return dto.Fail(errEditDish)
	}
	return dto.OK()
}

func (s *RestaurantService) DeleteDish(ctx context.Context, owner *auth.Principal, in dto.DishIDInput) dto.Output {
	dish, msg := s.ownedDish(ctx, owner, in.DishID, errDeleteDish)
	if msg != "" {
		return dto.Fail(msg)
	}
	if err := s.catalog.DeleteDish(ctx, dish.ID); err != nil {
		logger.WithCtx(ctx).Error("dishes: delete", "dish_id", dish.ID, "error", err)
		return dto.Fail(errDeleteDish)
	}
	return dto.OK()
}

func toMoney(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(2)
}

func optionalMoney(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := toMoney(*f)
	return &d
}

func dishOptions(in []dto.DishOptionInput) []models.DishOption {
	out := make([]models.DishOption, len(in))
	for i, o := range in {
		choices := make([]models.DishChoice, len(o.Choices))
		for j, c := range o.Choices {
			choices[j] = models.DishChoice{Name: c.Name, Extra: optionalMoney(c.Extra)}
		}
		out[i] = models.DishOption{Name: o.Name, Extra: optionalMoney(o.Extra), Choices: choices}
	}
	return out
}
