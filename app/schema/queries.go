package schema

import (
	"context"

	gql "github.com/graphql-go/graphql"

	"github.com/nuber-eats/nuber/app/dto"
	"github.com/nuber-eats/nuber/pkg/auth"
)

// catalogTypes are the restaurant-side object types. Category.restaurantCount
// resolves through the restaurant service, so they are built per schema.
type catalogTypes struct {
	category   *gql.Object
	restaurant *gql.Object
}

func (b *builder) catalogTypes() catalogTypes {
	category := gql.NewObject(gql.ObjectConfig{
		Name: "Category",
		Fields: entityFields(gql.Fields{
			"name":     &gql.Field{Type: nonNull(gql.String)},
			"slug":     &gql.Field{Type: nonNull(gql.String)},
			"coverImg": &gql.Field{Type: gql.String},
			"restaurantCount": &gql.Field{
				Type: nonNull(gql.Int),
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					src, _ := p.Source.(obj)
					id, _ := src["id"].(int)
					n, err := b.svc.Restaurants.CountRestaurants(p.Context, uint(id))
					return int(n), err
				},
			},
		}),
	})

	restaurant := gql.NewObject(gql.ObjectConfig{
		Name: "Restaurant",
		Fields: entityFields(gql.Fields{
			"name":          &gql.Field{Type: nonNull(gql.String)},
			"coverImg":      &gql.Field{Type: gql.String},
			"address":       &gql.Field{Type: nonNull(gql.String)},
			"ownerId":       &gql.Field{Type: nonNull(gql.Int)},
			"categoryId":    &gql.Field{Type: gql.Int},
			"category":      &gql.Field{Type: category},
			"isPromoted":    &gql.Field{Type: nonNull(gql.Boolean)},
			"promotedUntil": &gql.Field{Type: gql.DateTime},
		}),
	})

	return catalogTypes{category: category, restaurant: restaurant}
}

func (b *builder) queries() gql.Fields {
	ct := b.catalogTypes()
	catalog := b.svc.Restaurants

	restaurantsOutput := output("RestaurantsOutput", pageFields(gql.Fields{
		"results": &gql.Field{Type: list(ct.restaurant)},
	}))
	searchOutput := output("SearchRestaurantOutput", pageFields(gql.Fields{
		"restaurants": &gql.Field{Type: list(ct.restaurant)},
	}))
	restaurantOutput := output("RestaurantOutput", gql.Fields{
		"restaurant": &gql.Field{Type: ct.restaurant},
		"menu":       &gql.Field{Type: list(dishType)},
	})
	allCategoriesOutput := output("AllCategoriesOutput", gql.Fields{
		"categories": &gql.Field{Type: list(ct.category)},
	})
	categoryOutput := output("CategoryOutput", pageFields(gql.Fields{
		"category":    &gql.Field{Type: ct.category},
		"restaurants": &gql.Field{Type: list(ct.restaurant)},
	}))

	return gql.Fields{
		"me": b.op("me", anyone, userType, nil,
			func(ctx context.Context, p *auth.Principal, _ map[string]interface{}) (interface{}, error) {
				out := b.svc.Users.Me(ctx, p)
				return presentUser(out.User), nil
			}),

		"userProfile": b.op("userProfile", anyone, userProfileOutput,
			gql.FieldConfigArgument{"userId": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.Int)}},
			func(ctx context.Context, _ *auth.Principal, args map[string]interface{}) (interface{}, error) {
				id, _ := args["userId"].(int)
				in := dto.UserProfileInput{UserID: uint(max(id, 0))}
				if msg := bindMessage(in); msg != "" {
					return failed(msg), nil
				}
				out := b.svc.Users.UserProfile(ctx, in)
				return result(out.Output, obj{"user": presentUser(out.User)}), nil
			}),

		"restaurants": b.op("restaurants", nil, restaurantsOutput, inputArg(restaurantsInput),
			envelope(func(ctx context.Context, _ *auth.Principal, in dto.PageInput) interface{} {
				out := catalog.AllRestaurants(ctx, in)
				return paged(out.PageOutput, obj{"results": presentRestaurants(out.Results)})
			})),

		"restaurant": b.op("restaurant", nil, restaurantOutput, inputArg(restaurantIDInput),
			envelope(func(ctx context.Context, _ *auth.Principal, in dto.RestaurantIDInput) interface{} {
				out := catalog.FindRestaurant(ctx, in)
				return result(out.Output, obj{
					"restaurant": presentRestaurant(out.Restaurant),
					"menu":       presentDishes(out.Menu),
				})
			})),

		"searchRestaurant": b.op("searchRestaurant", nil, searchOutput, inputArg(searchRestaurantInput),
			envelope(func(ctx context.Context, _ *auth.Principal, in dto.SearchRestaurantInput) interface{} {
				out := catalog.SearchRestaurants(ctx, in)
				return paged(out.PageOutput, obj{"restaurants": presentRestaurants(out.Results)})
			})),

		"allCategories": b.op("allCategories", nil, allCategoriesOutput, nil,
			func(ctx context.Context, _ *auth.Principal, _ map[string]interface{}) (interface{}, error) {
				out := catalog.AllCategories(ctx)
				return result(out.Output, obj{"categories": presentCategories(out.Categories)}), nil
			}),

		"category": b.op("category", nil, categoryOutput, inputArg(categoryInput),
			envelope(func(ctx context.Context, _ *auth.Principal, in dto.CategoryInput) interface{} {
				out := catalog.FindCategoryBySlug(ctx, in)
				return paged(out.PageOutput, obj{
					"category":    presentCategory(out.Category),
					"restaurants": presentRestaurants(out.Restaurants),
				})
			})),

		"getOrder": b.op("getOrder", anyone, orderOutput, inputArg(orderIDInput),
			envelope(func(ctx context.Context, p *auth.Principal, in dto.OrderIDInput) interface{} {
				out := b.svc.Orders.GetOrder(ctx, p, in)
				return result(out.Output, obj{"order": presentOrder(out.Order)})
			})),

		"getPayments": b.op("getPayments", owner, paymentsOutput, nil,
			func(ctx context.Context, p *auth.Principal, _ map[string]interface{}) (interface{}, error) {
				out := b.svc.Payments.GetPayments(ctx, p)
				return result(out.Output, obj{"payments": presentPayments(out.Payments)}), nil
			}),
	}
}
