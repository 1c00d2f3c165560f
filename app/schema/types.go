package schema

import (
	gql "github.com/graphql-go/graphql"

	"github.com/nuber-eats/nuber/app/models"
	"github.com/nuber-eats/nuber/pkg/auth"
)

func nonNull(t gql.Type) gql.Type { return gql.NewNonNull(t) }

func list(t gql.Type) gql.Type { return gql.NewList(nonNull(t)) }

var userRoleEnum = func() *gql.Enum {
	values := gql.EnumValueConfigMap{}
	for _, r := range auth.Roles {
		values[string(r)] = &gql.EnumValueConfig{Value: string(r)}
	}
	return gql.NewEnum(gql.EnumConfig{Name: "UserRole", Values: values})
}()

var orderStatusEnum = func() *gql.Enum {
	values := gql.EnumValueConfigMap{}
	for _, s := range models.OrderStatuses {
		values[string(s)] = &gql.EnumValueConfig{Value: string(s)}
	}
	return gql.NewEnum(gql.EnumConfig{Name: "OrderStatus", Values: values})
}()

func entityFields(extra gql.Fields) gql.Fields {
	fields := gql.Fields{
		"id":        &gql.Field{Type: nonNull(gql.Int)},
		"createdAt": &gql.Field{Type: gql.DateTime},
		"updatedAt": &gql.Field{Type: gql.DateTime},
	}
	for k, v := range extra {
		fields[k] = v
	}
	return fields
}

// ── Entities ─────────────────────────────────────────────────────────────────

var userType = gql.NewObject(gql.ObjectConfig{
	Name: "User",
	Fields: entityFields(gql.Fields{
		"email":    &gql.Field{Type: nonNull(gql.String)},
		"role":     &gql.Field{Type: nonNull(userRoleEnum)},
		"verified": &gql.Field{Type: nonNull(gql.Boolean)},
	}),
})

var userGPSType = gql.NewObject(gql.ObjectConfig{
	Name: "UserGPS",
	Fields: entityFields(gql.Fields{
		"lat":    &gql.Field{Type: nonNull(gql.Float)},
		"lng":    &gql.Field{Type: nonNull(gql.Float)},
		"userId": &gql.Field{Type: nonNull(gql.Int)},
	}),
})

var dishChoiceType = gql.NewObject(gql.ObjectConfig{
	Name: "DishChoice",
	Fields: gql.Fields{
		"name":  &gql.Field{Type: nonNull(gql.String)},
		"extra": &gql.Field{Type: gql.Float},
	},
})

var dishOptionType = gql.NewObject(gql.ObjectConfig{
	Name: "DishOption",
	Fields: gql.Fields{
		"name":    &gql.Field{Type: nonNull(gql.String)},
		"extra":   &gql.Field{Type: gql.Float},
		"choices": &gql.Field{Type: list(dishChoiceType)},
	},
})

var dishType = gql.NewObject(gql.ObjectConfig{
	Name: "Dish",
	Fields: entityFields(gql.Fields{
		"name":         &gql.Field{Type: nonNull(gql.String)},
		"price":        &gql.Field{Type: nonNull(gql.Float)},
		"photo":        &gql.Field{Type: gql.String},
		"description":  &gql.Field{Type: gql.String},
		"restaurantId": &gql.Field{Type: nonNull(gql.Int)},
		"options":      &gql.Field{Type: list(dishOptionType)},
	}),
})

var orderItemOptionType = gql.NewObject(gql.ObjectConfig{
	Name: "OrderItemOption",
	Fields: gql.Fields{
		"name":   &gql.Field{Type: nonNull(gql.String)},
		"choice": &gql.Field{Type: gql.String},
	},
})

var orderItemType = gql.NewObject(gql.ObjectConfig{
	Name: "OrderItem",
	Fields: entityFields(gql.Fields{
		"dishId":  &gql.Field{Type: gql.Int},
		"options": &gql.Field{Type: list(orderItemOptionType)},
		"price":   &gql.Field{Type: nonNull(gql.Float)},
	}),
})

var orderType = gql.NewObject(gql.ObjectConfig{
	Name: "Order",
	Fields: entityFields(gql.Fields{
		"customerId":   &gql.Field{Type: gql.Int},
		"driverId":     &gql.Field{Type: gql.Int},
		"restaurantId": &gql.Field{Type: gql.Int},
		"items":        &gql.Field{Type: list(orderItemType)},
		"total":        &gql.Field{Type: nonNull(gql.Float)},
		"status":       &gql.Field{Type: nonNull(orderStatusEnum)},
	}),
})

var paymentType = gql.NewObject(gql.ObjectConfig{
	Name: "Payment",
	Fields: entityFields(gql.Fields{
		"transactionId": &gql.Field{Type: nonNull(gql.String)},
		"userId":        &gql.Field{Type: nonNull(gql.Int)},
		"restaurantId":  &gql.Field{Type: nonNull(gql.Int)},
	}),
})

// ── Outputs ──────────────────────────────────────────────────────────────────

func outputFields(extra gql.Fields) gql.Fields {
	fields := gql.Fields{
		"ok":    &gql.Field{Type: nonNull(gql.Boolean)},
		"error": &gql.Field{Type: gql.String},
	}
	for k, v := range extra {
		fields[k] = v
	}
	return fields
}

func output(name string, extra gql.Fields) *gql.Object {
	return gql.NewObject(gql.ObjectConfig{Name: name, Fields: outputFields(extra)})
}

func pageFields(extra gql.Fields) gql.Fields {
	extra["totalPages"] = &gql.Field{Type: gql.Int}
	extra["totalResults"] = &gql.Field{Type: gql.Int}
	return extra
}

var coreOutput = output("CoreOutput", nil)

var loginOutput = output("LoginOutput", gql.Fields{
	"token": &gql.Field{Type: gql.String},
})

var userProfileOutput = output("UserProfileOutput", gql.Fields{
	"user": &gql.Field{Type: userType},
})

var userGPSOutput = output("UserGPSOutput", gql.Fields{
	"gps": &gql.Field{Type: userGPSType},
})

var createRestaurantOutput = output("CreateRestaurantOutput", gql.Fields{
	"restaurantId": &gql.Field{Type: gql.Int},
})

var orderOutput = output("GetOrderOutput", gql.Fields{
	"order": &gql.Field{Type: orderType},
})

var createOrderOutput = output("CreateOrderOutput", gql.Fields{
	"orderId": &gql.Field{Type: gql.Int},
})

var paymentsOutput = output("GetPaymentsOutput", gql.Fields{
	"payments": &gql.Field{Type: list(paymentType)},
})

// ── Inputs ───────────────────────────────────────────────────────────────────

type inputFields = gql.InputObjectConfigFieldMap

func input(name string, fields inputFields) *gql.InputObject {
	return gql.NewInputObject(gql.InputObjectConfig{Name: name, Fields: fields})
}

func field(t gql.Input) *gql.InputObjectFieldConfig { return &gql.InputObjectFieldConfig{Type: t} }

func required(t gql.Input) *gql.InputObjectFieldConfig {
	return &gql.InputObjectFieldConfig{Type: gql.NewNonNull(t)}
}

func page() *gql.InputObjectFieldConfig {
	return &gql.InputObjectFieldConfig{Type: gql.Int, DefaultValue: 1}
}

var (
	createAccountInput = input("CreateAccountInput", inputFields{
		"email":    required(gql.String),
		"password": required(gql.String),
		"role":     required(userRoleEnum),
	})
	loginInput = input("LoginInput", inputFields{
		"email":    required(gql.String),
		"password": required(gql.String),
	})
	editProfileInput = input("EditProfileInput", inputFields{
		"email":    field(gql.String),
		"password": field(gql.String),
	})
	verifyEmailInput = input("VerifyEmailInput", inputFields{
		"code": required(gql.String),
	})
	createGPSInput = input("CreateUserGPSInput", inputFields{
		"lat": required(gql.Float),
		"lng": required(gql.Float),
	})
	editGPSInput = input("EditUserGPSInput", inputFields{
		"gpsId": required(gql.Int),
		"lat":   field(gql.Float),
		"lng":   field(gql.Float),
	})

	createRestaurantInput = input("CreateRestaurantInput", inputFields{
		"name":         required(gql.String),
		"address":      required(gql.String),
		"coverImg":     field(gql.String),
		"categoryName": required(gql.String),
	})
	editRestaurantInput = input("EditRestaurantInput", inputFields{
		"restaurantId": required(gql.Int),
		"name":         field(gql.String),
		"address":      field(gql.String),
		"coverImg":     field(gql.String),
		"categoryName": field(gql.String),
	})
	restaurantIDInput = input("RestaurantInput", inputFields{
		"restaurantId": required(gql.Int),
	})
	restaurantsInput = input("RestaurantsInput", inputFields{
		"page": page(),
	})
	searchRestaurantInput = input("SearchRestaurantInput", inputFields{
		"query": required(gql.String),
		"page":  page(),
	})
	categoryInput = input("CategoryInput", inputFields{
		"slug": required(gql.String),
		"page": page(),
	})

	dishChoiceInput = input("DishChoiceInputType", inputFields{
		"name":  required(gql.String),
		"extra": field(gql.Float),
	})
	dishOptionInput = input("DishOptionInputType", inputFields{
		"name":    required(gql.String),
		"extra":   field(gql.Float),
		"choices": field(gql.NewList(gql.NewNonNull(dishChoiceInput))),
	})
	createDishInput = input("CreateDishInput", inputFields{
		"restaurantId": required(gql.Int),
		"name":         required(gql.String),
		"price":        required(gql.Float),
		"description":  field(gql.String),
		"photo":        field(gql.String),
		"options":      field(gql.NewList(gql.NewNonNull(dishOptionInput))),
	})
	editDishInput = input("EditDishInput", inputFields{
		"dishId":      required(gql.Int),
		"name":        field(gql.String),
		"price":       field(gql.Float),
		"description": field(gql.String),
		"photo":       field(gql.String),
		"options":     field(gql.NewList(gql.NewNonNull(dishOptionInput))),
	})
	dishIDInput = input("DishInput", inputFields{
		"dishId": required(gql.Int),
	})

	orderItemOptionInput = input("OrderItemOptionInputType", inputFields{
		"name":   required(gql.String),
		"choice": field(gql.String),
	})
	createOrderItemInput = input("CreateOrderItemInput", inputFields{
		"dishId":  required(gql.Int),
		"options": field(gql.NewList(gql.NewNonNull(orderItemOptionInput))),
	})
	createOrderInput = input("CreateOrderInput", inputFields{
		"restaurantId": required(gql.Int),
		"items":        required(gql.NewList(gql.NewNonNull(createOrderItemInput))),
	})
	orderIDInput = input("GetOrderInput", inputFields{
		"id": required(gql.Int),
	})
	editOrderInput = input("EditOrderInput", inputFields{
		"id":     required(gql.Int),
		"status": required(orderStatusEnum),
	})

	createPaymentInput = input("CreatePaymentInput", inputFields{
		"transactionId": required(gql.String),
		"restaurantId":  required(gql.Int),
	})
)
