// Package graphql serves a graphql-go schema over HTTP.
package graphql

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/nuber-eats/nuber/pkg/bind"
	"github.com/nuber-eats/nuber/pkg/logger"
	"github.com/nuber-eats/nuber/pkg/response"
)

// NewSchema builds a schema from the root query and (optional) mutation.
func NewSchema(query, mutation *graphql.Object) (graphql.Schema, error) {
	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}

// Request is the standard GraphQL-over-HTTP body.
type Request struct {
	Query         string                 `json:"query" validate:"required"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// Execute runs one request. The request context is passed to every resolver.
func Execute(r *http.Request, schema graphql.Schema, req Request) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        r.Context(),
	})
}

// Handler serves POST requests with a JSON body. Execution errors are part
// of the 200 response body, as the GraphQL convention requires.
func Handler(schema graphql.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Request
		errs, err := bind.JSON(w, r, &req)
		if err != nil {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		if errs != nil {
			response.ValidationError(w, errs)
			return
		}

		result := Execute(r, schema, req)
		if result.HasErrors() {
			logger.WithCtx(r.Context()).Debug("graphql: execution errors",
				"operation", req.OperationName, "errors", len(result.Errors))
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			logger.WithCtx(r.Context()).Error("graphql: encode result", "error", err)
		}
	}
}
