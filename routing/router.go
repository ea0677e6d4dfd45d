// Package routing maps named routes onto gorilla/mux, checks each route's
// auth type and passes route details and the caller down through the
// go-utils httpserver context keys, so httpserver's getters work in handlers.
package routing

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/umakantv/go-utils/errs"
	"github.com/umakantv/go-utils/httpserver"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// Auth types a route can require
const (
	AuthNone  = "none"
	AuthToken = "token"
)

// HandlerFunc receives the request context carrying route and caller details
type HandlerFunc func(ctx context.Context, w http.ResponseWriter, r *http.Request)

// Route names an endpoint for logging and declares its auth requirement
type Route struct {
	Name     string
	Method   string
	Path     string
	AuthType string
}

// ClaimUserID is the RequestAuth claim carrying the authenticated user's id
const ClaimUserID = "user_id"

// Authenticator checks the request's credentials
type Authenticator func(r *http.Request) (bool, httpserver.RequestAuth)

// Router is an http.Handler built from registered routes
type Router struct {
	mux  *mux.Router
	auth Authenticator
}

// New creates an empty router; auth is consulted for every non-public route
func New(auth Authenticator) *Router {
	m := mux.NewRouter()
	m.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(errs.NewNotFoundError("Not found."))
	})
	m.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Method \"" + r.Method + "\" not allowed."})
	})
	return &Router{mux: m, auth: auth}
}

// Register adds a route
func (rt *Router) Register(route Route, h HandlerFunc) {
	rt.mux.Methods(route.Method).Path(route.Path).Name(route.Name).
		HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := withRoute(r.Context(), route)

			if route.AuthType != AuthNone {
				ok, auth := rt.auth(r)
				if !ok || auth.Type != route.AuthType {
					logger.Info("Unauthenticated request",
						zap.String("route", route.Name),
						zap.String("method", route.Method),
						zap.String("path", r.URL.Path))
					w.Header().Set("Content-Type", "application/json")
					w.Header().Set("WWW-Authenticate", "Token")
					w.WriteHeader(http.StatusUnauthorized)
					json.NewEncoder(w).Encode(errs.NewAuthenticationError("Authentication credentials were not provided."))
					return
				}
				ctx = WithRequestAuth(ctx, auth)
			}

			h(ctx, w, r.WithContext(ctx))
		})
}

// Mount serves h for every path under prefix, without auth
func (rt *Router) Mount(prefix string, h http.Handler) {
	rt.mux.PathPrefix(prefix).Handler(h)
}

func withRoute(ctx context.Context, route Route) context.Context {
	ctx = context.WithValue(ctx, httpserver.RouteNameKey, route.Name)
	ctx = context.WithValue(ctx, httpserver.RouteMethodKey, route.Method)
	ctx = context.WithValue(ctx, httpserver.RoutePathKey, route.Path)
	return context.WithValue(ctx, httpserver.AuthTypeKey, route.AuthType)
}

// WithRequestAuth attaches the authenticated caller to ctx
func WithRequestAuth(ctx context.Context, auth httpserver.RequestAuth) context.Context {
	return context.WithValue(ctx, httpserver.RequestAuthKey, &auth)
}

// UserID returns the authenticated user's id from the request context
func UserID(ctx context.Context) (int, bool) {
	auth := httpserver.GetRequestAuth(ctx)
	if auth == nil {
		return 0, false
	}
	claims, _ := auth.Claims.(map[string]interface{})
	id, ok := claims[ClaimUserID].(int)
	return id, ok && id > 0
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.mux.ServeHTTP(w, r)
}
