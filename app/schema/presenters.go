package schema

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nuber-eats/nuber/app/dto"
	"github.com/nuber-eats/nuber/app/models"
)

// obj is the shape every resolver hands back to graphql-go.
type obj = map[string]interface{}

func entity(b models.Base, fields obj) obj {
	fields["id"] = int(b.ID)
	fields["createdAt"] = b.CreatedAt
	fields["updatedAt"] = b.UpdatedAt
	return fields
}

func result(o dto.Output, fields obj) obj {
	if fields == nil {
		fields = obj{}
	}
	fields["ok"] = o.OK
	if o.Error != "" {
		fields["error"] = o.Error
	}
	return fields
}

func paged(p dto.PageOutput, fields obj) obj {
	fields = result(p.Output, fields)
	if p.OK {
		fields["totalPages"] = p.TotalPages
		fields["totalResults"] = int(p.TotalResults)
	}
	return fields
}

func failed(message string) obj { return result(dto.Fail(message), nil) }

func optInt(v *uint) interface{} {
	if v == nil {
		return nil
	}
	return int(*v)
}

func optTime(v *time.Time) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func optMoney(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.InexactFloat64()
}

func presentUser(u *models.User) interface{} {
	if u == nil {
		return nil
	}
	return entity(u.Base, obj{
		"email":    u.Email,
		"role":     string(u.Role),
		"verified": u.Verified,
	})
}

func presentGPS(g *models.UserGPS) interface{} {
	if g == nil {
		return nil
	}
	return entity(g.Base, obj{"lat": g.Lat, "lng": g.Lng, "userId": int(g.UserID)})
}

func presentCategory(c *models.Category) interface{} {
	if c == nil {
		return nil
	}
	return entity(c.Base, obj{"name": c.Name, "slug": c.Slug, "coverImg": c.CoverImg})
}

func presentCategories(in []models.Category) []interface{} {
	out := make([]interface{}, len(in))
	for i := range in {
		out[i] = presentCategory(&in[i])
	}
	return out
}

func presentRestaurant(r *models.Restaurant) interface{} {
	if r == nil {
		return nil
	}
	return entity(r.Base, obj{
		"name":          r.Name,
		"coverImg":      r.CoverImg,
		"address":       r.Address,
		"ownerId":       int(r.OwnerID),
		"categoryId":    optInt(r.CategoryID),
		"category":      presentCategory(r.Category),
		"isPromoted":    r.IsPromoted,
		"promotedUntil": optTime(r.PromotedUntil),
	})
}

func presentRestaurants(in []models.Restaurant) []interface{} {
	out := make([]interface{}, len(in))
	for i := range in {
		out[i] = presentRestaurant(&in[i])
	}
	return out
}

func presentDish(d *models.Dish) interface{} {
	options := make([]interface{}, len(d.Options))
	for i, o := range d.Options {
		choices := make([]interface{}, len(o.Choices))
		for j, c := range o.Choices {
			choices[j] = obj{"name": c.Name, "extra": optMoney(c.Extra)}
		}
		options[i] = obj{"name": o.Name, "extra": optMoney(o.Extra), "choices": choices}
	}
	return entity(d.Base, obj{
		"name":         d.Name,
		"price":        d.Price.InexactFloat64(),
		"photo":        d.Photo,
		"description":  d.Description,
		"restaurantId": int(d.RestaurantID),
		"options":      options,
	})
}

func presentDishes(in []models.Dish) []interface{} {
	out := make([]interface{}, len(in))
	for i := range in {
		out[i] = presentDish(&in[i])
	}
	return out
}

func presentOrder(o *models.Order) interface{} {
	if o == nil {
		return nil
	}
	items := make([]interface{}, len(o.Items))
	for i, it := range o.Items {
		opts := make([]interface{}, len(it.Options))
		for j, sel := range it.Options {
			var choice interface{}
			if sel.Choice != nil {
				choice = *sel.Choice
			}
			opts[j] = obj{"name": sel.Name, "choice": choice}
		}
		items[i] = entity(it.Base, obj{
			"dishId":  optInt(it.DishID),
			"options": opts,
			"price":   it.Price.InexactFloat64(),
		})
	}
	return entity(o.Base, obj{
		"customerId":   optInt(o.CustomerID),
		"driverId":     optInt(o.DriverID),
		"restaurantId": optInt(o.RestaurantID),
		"items":        items,
		"total":        o.Total.InexactFloat64(),
		"status":       string(o.Status),
	})
}

func presentPayments(in []models.Payment) []interface{} {
	out := make([]interface{}, len(in))
	for i, p := range in {
		out[i] = entity(p.Base, obj{
			"transactionId": p.TransactionID,
			"userId":        int(p.UserID),
			"restaurantId":  int(p.RestaurantID),
		})
	}
	return out
}
