package graph

import (
	"context"
	"errors"
	"net/http"

	"github.com/syssam/collection/store"
)

// RequestContext is the per-request value resolvers read their dependencies
// from.
type RequestContext struct {
	// Store is the persistence client.
	Store *store.Client
}

type requestContextKey struct{}

var errNoRequestContext = errors.New("graph: request context is missing")

// NewContext returns a copy of ctx carrying rc.
func NewContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

// ForContext returns the RequestContext of ctx, or nil when there is none.
func ForContext(ctx context.Context) *RequestContext {
	rc, _ := ctx.Value(requestContextKey{}).(*RequestContext)
	return rc
}

// ContextFactory attaches a RequestContext built from client to every request.
func ContextFactory(client *store.Client, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := NewContext(r.Context(), &RequestContext{Store: client})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func storeFrom(ctx context.Context) (*store.Client, error) {
	rc := ForContext(ctx)
	if rc == nil || rc.Store == nil {
		return nil, errNoRequestContext
	}
	return rc.Store, nil
}
