package router

import (
	"github.com/gin-gonic/gin"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration. Registrars added with Register
// land directly under the versioned API group; registrars added with
// RegisterScoped additionally run the club scoping middleware, so every
// route they register requires a valid X-Club-ID header.
type Router struct {
	engine            *gin.Engine
	apiVersion        string
	registrars        []RouteRegistrar
	scopedRegistrars  []RouteRegistrar
	scopedMiddlewares []gin.HandlerFunc
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithScopedMiddleware sets the middleware applied to scoped registrars
func WithScopedMiddleware(mw ...gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.scopedMiddlewares = mw
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a RouteRegistrar under the plain API group
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// RegisterScoped adds a RouteRegistrar behind the club scoping middleware
func (r *Router) RegisterScoped(registrar RouteRegistrar) *Router {
	r.scopedRegistrars = append(r.scopedRegistrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)

	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}

	scoped := api.Group("")
	if len(r.scopedMiddlewares) > 0 {
		scoped.Use(r.scopedMiddlewares...)
	}
	for _, registrar := range r.scopedRegistrars {
		registrar.RegisterRoutes(scoped)
	}
}
