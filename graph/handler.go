package graph

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/handler"

	"github.com/syssam/collection/dialect/sql"
	"github.com/syssam/collection/store"
)

// HandlerOption configures NewHandler.
type HandlerOption func(*handlerOptions)

type handlerOptions struct {
	playground bool
	logger     *slog.Logger
}

// WithPlayground serves the GraphQL playground at /playground.
func WithPlayground(enabled bool) HandlerOption {
	return func(o *handlerOptions) {
		o.playground = enabled
	}
}

// WithHandlerLogger sets the logger execution errors are reported to.
func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(o *handlerOptions) {
		o.logger = logger
	}
}

// NewHandler returns the HTTP handler of the subgraph. GraphQL requests are
// served at / and run with a RequestContext for client.
func NewHandler(s *Schema, client *store.Client, opts ...HandlerOption) http.Handler {
	o := &handlerOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	gql := handler.New(&handler.Config{
		Schema: &s.Exec,
		Pretty: true,
		ResultCallbackFn: func(ctx context.Context, params *graphql.Params, result *graphql.Result, _ []byte) {
			for _, err := range result.Errors {
				o.logger.WarnContext(ctx, "graphql execution error",
					"operation", params.OperationName,
					"error", err.Message,
					"path", err.Path,
				)
			}
			if rs := sql.RequestStatsFrom(ctx); rs != nil {
				start, _ := ctx.Value(requestStartKey{}).(time.Time)
				o.logger.DebugContext(ctx, "graphql request",
					"operation", params.OperationName,
					"duration", time.Since(start),
					"statements", rs.Total().Statements,
					"db", rs,
				)
			}
		},
	})
	mux := http.NewServeMux()
	if o.playground {
		mux.Handle("/playground", playground.Handler("collection", "/"))
	}
	mux.Handle("/", requestStats(gql))
	return ContextFactory(client, mux)
}

type requestStartKey struct{}

// requestStats times every GraphQL request and counts its store statements.
func requestStats(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, _ := sql.WithRequestStats(r.Context())
		ctx = context.WithValue(ctx, requestStartKey{}, time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
