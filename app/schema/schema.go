// Package schema is the GraphQL API: object types, root fields and the role
// policy of every root field.
//
// Each root field is declared in an rbac.Registry as it is built, and its
// resolver checks that declaration before any service code runs.
package schema

import (
	"context"
	"encoding/json"
	"errors"

	gql "github.com/graphql-go/graphql"

	"github.com/nuber-eats/nuber/app/services"
	"github.com/nuber-eats/nuber/pkg/auth"
	"github.com/nuber-eats/nuber/pkg/bind"
	pkggraphql "github.com/nuber-eats/nuber/pkg/graphql"
	"github.com/nuber-eats/nuber/pkg/logger"
	"github.com/nuber-eats/nuber/pkg/metrics"
	"github.com/nuber-eats/nuber/pkg/rbac"
)

var (
	owner  = rbac.Roles(auth.RoleOwner)
	client = rbac.Roles(auth.RoleClient)
	anyone = rbac.Authenticated()
)

// Services are the application services the resolvers call.
type Services struct {
	Users       *services.UsersService
	Restaurants *services.RestaurantService
	Orders      *services.OrderService
	Payments    *services.PaymentService
}

type builder struct {
	svc      Services
	registry *rbac.Registry
}

// New builds the schema and returns it with the registry holding every root
// field's policy.
func New(svc Services) (gql.Schema, *rbac.Registry, error) {
	b := &builder{svc: svc, registry: rbac.NewRegistry()}

	query := gql.NewObject(gql.ObjectConfig{Name: "Query", Fields: b.queries()})
	mutation := gql.NewObject(gql.ObjectConfig{Name: "Mutation", Fields: b.mutations()})

	s, err := pkggraphql.NewSchema(query, mutation)
	return s, b.registry, err
}

// handler resolves one root field for an authorised caller.
type handler func(ctx context.Context, p *auth.Principal, args map[string]interface{}) (interface{}, error)

// op declares name under policy and returns the guarded field. A nil policy
// leaves the field open to anonymous callers.
func (b *builder) op(name string, policy *rbac.Policy, typ gql.Output, args gql.FieldConfigArgument, h handler) *gql.Field {
	b.registry.Declare(name, policy)

	return &gql.Field{
		Type: typ,
		Args: args,
		Resolve: func(rp gql.ResolveParams) (interface{}, error) {
			ctx := rp.Context
			if err := b.registry.Authorize(ctx, name); err != nil {
				metrics.GraphQLOperations.WithLabelValues(name, "denied").Inc()
				return nil, err
			}

			out, err := h(ctx, auth.PrincipalFrom(ctx), rp.Args)
			if err != nil {
				metrics.GraphQLOperations.WithLabelValues(name, "error").Inc()
				logger.WithCtx(ctx).Error("graphql: resolver failed", "operation", name, "error", err)
				return nil, err
			}
			metrics.GraphQLOperations.WithLabelValues(name, "ok").Inc()
			return out, nil
		},
	}
}

func inputArg(t *gql.InputObject) gql.FieldConfigArgument {
	return gql.FieldConfigArgument{"input": &gql.ArgumentConfig{Type: gql.NewNonNull(t)}}
}

var errBadInput = errors.New("invalid input")

// decode copies the "input" argument into dest and validates it. The second
// return value is the validation message for the result envelope, empty when
// dest is valid.
func decode(args map[string]interface{}, dest interface{}) (string, error) {
	if err := unmarshalInput(args, dest); err != nil {
		return "", err
	}
	return bindMessage(dest), nil
}

func unmarshalInput(args map[string]interface{}, dest interface{}) error {
	raw, err := json.Marshal(args["input"])
	if err != nil {
		return errBadInput
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return errBadInput
	}
	return nil
}

func bindMessage(v interface{}) string {
	return bind.FirstError(bind.Struct(v))
}
