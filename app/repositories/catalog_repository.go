package repositories

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/nuber-eats/nuber/app/models"
	"github.com/nuber-eats/nuber/pkg/cache"
	"github.com/nuber-eats/nuber/pkg/orm"
)

// PageSize is the number of restaurants per listing page.
const PageSize = 25

const categoriesCacheKey = "catalog:categories"

// CatalogRepository reads and writes restaurants, categories and dishes.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) query(ctx context.Context) *orm.Query {
	return orm.Use(r.db).WithContext(ctx)
}

// FindRestaurant returns (nil, nil) when id does not exist.
func (r *CatalogRepository) FindRestaurant(ctx context.Context, id uint) (*models.Restaurant, error) {
	var rest models.Restaurant
	err := r.query(ctx).Preload("Category").Where("id = ?", id).First(&rest)
	return found(&rest, err)
}

// FindDish returns (nil, nil) when id does not exist. The lookup is global,
// not scoped to a restaurant.
func (r *CatalogRepository) FindDish(ctx context.Context, id uint) (*models.Dish, error) {
	var dish models.Dish
	err := r.query(ctx).Where("id = ?", id).First(&dish)
	return found(&dish, err)
}

func (r *CatalogRepository) CreateRestaurant(ctx context.Context, rest *models.Restaurant) error {
	return r.query(ctx).Create(rest)
}

func (r *CatalogRepository) UpdateRestaurant(ctx context.Context, rest *models.Restaurant) error {
	rest.Category = nil
	return r.query(ctx).Save(rest)
}

func (r *CatalogRepository) DeleteRestaurant(ctx context.Context, id uint) error {
	return r.query(ctx).Delete(&models.Restaurant{}, id)
}

func (r *CatalogRepository) restaurants(ctx context.Context) *orm.Query {
	return r.query(ctx).
		Model(&models.Restaurant{}).
		Preload("Category").
		Order("is_promoted DESC").
		Order("id ASC")
}

// ListRestaurants returns one page of all restaurants, promoted first.
func (r *CatalogRepository) ListRestaurants(ctx context.Context, page int) ([]models.Restaurant, orm.Pagination, error) {
	var out []models.Restaurant
	p, err := r.restaurants(ctx).Paginate(&out, page, PageSize)
	return out, p, err
}

// SearchRestaurants matches names case-insensitively.
func (r *CatalogRepository) SearchRestaurants(ctx context.Context, term string, page int) ([]models.Restaurant, orm.Pagination, error) {
	var out []models.Restaurant
	p, err := r.restaurants(ctx).
		Where("LOWER(name) LIKE ?", "%"+strings.ToLower(term)+"%").
		Paginate(&out, page, PageSize)
	return out, p, err
}

func (r *CatalogRepository) RestaurantsInCategory(ctx context.Context, categoryID uint, page int) ([]models.Restaurant, orm.Pagination, error) {
	var out []models.Restaurant
	p, err := r.restaurants(ctx).
		Where("category_id = ?", categoryID).
		Paginate(&out, page, PageSize)
	return out, p, err
}

// CountRestaurants returns how many restaurants belong to categoryID.
func (r *CatalogRepository) CountRestaurants(ctx context.Context, categoryID uint) (int64, error) {
	return r.query(ctx).Model(&models.Restaurant{}).Where("category_id = ?", categoryID).Count()
}

func (r *CatalogRepository) CountOwnedRestaurants(ctx context.Context, ownerID uint) (int64, error) {
	return r.query(ctx).Model(&models.Restaurant{}).Where("owner_id = ?", ownerID).Count()
}

// AllCategories is served from the cache when Redis is connected.
func (r *CatalogRepository) AllCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := r.query(ctx).Model(&models.Category{}).Order("name ASC").Cache(ctx, categoriesCacheKey, 10*time.Minute, &out)
	return out, err
}

func (r *CatalogRepository) FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	err := r.query(ctx).Where("slug = ?", slug).First(&c)
	return found(&c, err)
}

// Slug normalises a category name: trimmed, lower-cased, spaces to dashes.
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// GetOrCreateCategory returns the category whose slug matches name, creating
// it on first use.
func (r *CatalogRepository) GetOrCreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	slug := Slug(name)

	c, err := r.FindCategoryBySlug(ctx, slug)
	if err != nil || c != nil {
		return c, err
	}

	c = &models.Category{Name: strings.ToLower(name), Slug: slug}
	if err := r.query(ctx).Create(c); err != nil {
		return nil, err
	}
	_ = cache.Forget(ctx, categoriesCacheKey)
	return c, nil
}

func (r *CatalogRepository) CreateDish(ctx context.Context, dish *models.Dish) error {
	return r.query(ctx).Create(dish)
}

func (r *CatalogRepository) UpdateDish(ctx context.Context, dish *models.Dish) error {
	dish.Restaurant = nil
	return r.query(ctx).Save(dish)
}

func (r *CatalogRepository) DeleteDish(ctx context.Context, id uint) error {
	return r.query(ctx).Delete(&models.Dish{}, id)
}

// Menu returns the dishes of a restaurant in creation order.
func (r *CatalogRepository) Menu(ctx context.Context, restaurantID uint) ([]models.Dish, error) {
	var out []models.Dish
	err := r.query(ctx).Where("restaurant_id = ?", restaurantID).Order("id ASC").Get(&out)
	return out, err
}

// Promote marks the restaurant promoted until the given time, leaving every
// other column alone.
func (r *CatalogRepository) Promote(ctx context.Context, id uint, until time.Time) error {
	return r.query(ctx).
		Model(&models.Restaurant{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_promoted": true, "promoted_until": until})
}

// DemoteExpired clears the promotion of restaurant id if it is still
// expired at now. It reports false when the row no longer matches, e.g.
// because a payment renewed it after the scan.
func (r *CatalogRepository) DemoteExpired(ctx context.Context, id uint, now time.Time) (bool, error) {
	n, err := r.query(ctx).
		Model(&models.Restaurant{}).
		Where("id = ? AND is_promoted = ? AND promoted_until < ?", id, true, now).
		UpdatesAffected(map[string]interface{}{"is_promoted": false, "promoted_until": nil})
	return n == 1, err
}

// ExpiredPromotions returns promoted restaurants whose window ended before now.
func (r *CatalogRepository) ExpiredPromotions(ctx context.Context, now time.Time) ([]models.Restaurant, error) {
	var out []models.Restaurant
	err := r.query(ctx).
		Where("is_promoted = ? AND promoted_until < ?", true, now).
		Get(&out)
	return out, err
}
