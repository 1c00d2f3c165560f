package schema

import (
	"context"

	gql "github.com/graphql-go/graphql"

	"github.com/nuber-eats/nuber/app/dto"
	"github.com/nuber-eats/nuber/pkg/auth"
)

// envelope decodes the input into a fresh T and runs call with it. Invalid
// input short-circuits into a failed envelope.
func envelope[T any](call func(ctx context.Context, p *auth.Principal, in T) interface{}) handler {
	return func(ctx context.Context, p *auth.Principal, args map[string]interface{}) (interface{}, error) {
		var in T
		msg, err := decode(args, &in)
		if err != nil {
			return nil, err
		}
		if msg != "" {
			return failed(msg), nil
		}
		return call(ctx, p, in), nil
	}
}

func (b *builder) mutations() gql.Fields {
	users, catalog := b.svc.Users, b.svc.Restaurants

	return gql.Fields{
		"createAccount": b.op("createAccount", nil, coreOutput, inputArg(createAccountInput),
			envelope(func(ctx context.Context, _ *auth.Principal, in dto.CreateAccountInput) interface{} {
				return result(users.CreateAccount(ctx, in), nil)
			})),

		"login": b.op("login", nil, loginOutput, inputArg(loginInput),
			envelope(func(ctx context.Context, _ *auth.Principal, in dto.LoginInput) interface{} {
				out := users.Login(ctx, in)
				fields := obj{}
				if out.Token != "" {
					fields["token"] = out.Token
				}
				return result(out.Output, fields)
			})),

		"editProfile": b.op("editProfile", anyone, coreOutput, inputArg(editProfileInput),
			envelope(func(ctx context.Context, p *auth.Principal, in dto.EditProfileInput) interface{} {
				return result(users.EditProfile(ctx, p, in), nil)
			})),

		"verifyEmail": b.op("verifyEmail", nil, coreOutput, inputArg(verifyEmailInput),
			envelope(func(ctx context.Context, _ *auth.Principal, in dto.VerifyEmailInput) interface{} {
				return result(users.VerifyEmail(ctx, in), nil)
			})),

		"userGPS": b.op("userGPS", client, userGPSOutput, inputArg(createGPSInput),
			envelope(func(ctx context.Context, p *auth.Principal, in dto.CreateGPSInput) interface{} {
				out := users.CreateGPS(ctx, p, in)
				return result(out.Output, obj{"gps": presentGPS(out.GPS)})
			})),

		"editUserGPS": b.op("editUserGPS", client, userGPSOutput, inputArg(editGPSInput),
			envelope(func(ctx context.Context, p *auth.Principal, in dto.EditGPSInput) interface{} {
				out := users.EditGPS(ctx, p, in)
				return result(out.Output, obj{"gps": presentGPS(out.GPS)})
			})),

		"createRestaurant": b.op("createRestaurant", owner, createRestaurantOutput, inputArg(createRestaurantInput),
			envelope(func(ctx context.Context, p *auth.Principal, in dto.CreateRestaurantInput) interface{} {
				out := catalog.CreateRestaurant(ctx, p, in)
				fields := obj{}
				if out.OK {
					fields["restaurantId"] = int(out.RestaurantID)
				}
				return result(out.Output, fields)
			})),

		"editRestaurant": b.op("editRestaurant", owner, coreOutput, inputArg(editRestaurantInput),
			envelope(func(ctx context.Context, p *auth.Principal, in dto.EditRestaurantInput) interface{} {
				return result(catalog.EditRestaurant(ctx, p, in), nil)
			})),

		"deleteRestaurant": b.op("deleteRestaurant", owner, coreOutput, inputArg(restaurantIDInput),
			envelope(func(ctx context.Context, p *auth.Principal, in dto.RestaurantIDInput) interface{} {
				return result(catalog.DeleteRestaurant(ctx, p, in), nil)
			})),

		"createDish": b.op("createDish", owner, coreOutput, inputArg(createDishInput),
			envelope(func(ctx context.Context, p *auth.Principal, in dto.CreateDishInput) interface{} {
				return result(catalog.CreateDish(ctx, p, in), nil)
			})),

		"editDish": b.op("editDish", owner, coreOutput, inputArg(editDishInput),
			envelope(func(ctx context.Context, p *auth.Principal, in dto.EditDishInput) interface{} {
				return result(catalog.EditDish(ctx, p, in), nil)
			})),

		"deleteDish": b.op("deleteDish", owner, coreOutput, inputArg(dishIDInput),
			envelope(func(ctx context.Context, p *auth.Principal, in dto.DishIDInput) interface{} {
				return result(catalog.DeleteDish(ctx, p, in), nil)
			})),

		"createOrder": b.op("createOrder", client, createOrderOutput, inputArg(createOrderInput),
			envelope(func(ctx context.Context, p *auth.Principal, in dto.CreateOrderInput) interface{} {
				out := b.svc.Orders.CreateOrder(ctx, p, in)
				fields := obj{}
				if out.OK {
					fields["orderId"] = int(out.OrderID)
				}
				return result(out.Output, fields)
			})),

		"editOrder": b.op("editOrder", anyone, coreOutput, inputArg(editOrderInput),
			envelope(func(ctx context.Context, p *auth.Principal, in dto.EditOrderInput) interface{} {
				return result(b.svc.Orders.EditOrder(ctx, p, in), nil)
			})),

		"createPayment": b.op("createPayment", owner, coreOutput, inputArg(createPaymentInput),
			envelope(func(ctx context.Context, p *auth.Principal, in dto.CreatePaymentInput) interface{} {
				return result(b.svc.Payments.CreatePayment(ctx, p, in), nil)
			})),
	}
}
