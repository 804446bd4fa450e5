package httpx

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Route pairs an HTTP method and chi pattern with a definition.
type Route struct {
	Method     string
	Pattern    string
	Definition RouteDefinition
}

// Registry is the declarative route table. Routes are registered once at
// startup and mounted onto a chi router; the registry also supports
// lookup by name for introspection.
type Registry struct {
	logger *slog.Logger
	routes []Route
	byName map[string]int
}

// NewRegistry creates an empty route registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger: logger,
		byName: make(map[string]int),
	}
}

// Get registers a GET route.
func (reg *Registry) Get(pattern string, def RouteDefinition) {
	reg.register(http.MethodGet, pattern, def)
}

// Post registers a POST route.
func (reg *Registry) Post(pattern string, def RouteDefinition) {
	reg.register(http.MethodPost, pattern, def)
}

// Put registers a PUT route.
func (reg *Registry) Put(pattern string, def RouteDefinition) {
	reg.register(http.MethodPut, pattern, def)
}

// Delete registers a DELETE route.
func (reg *Registry) Delete(pattern string, def RouteDefinition) {
	reg.register(http.MethodDelete, pattern, def)
}

func (reg *Registry) register(method, pattern string, def RouteDefinition) {
	if def.Name == "" {
		panic(fmt.Sprintf("httpx: route %s %s has no name", method, pattern))
	}
	if def.Handler == nil {
		panic(fmt.Sprintf("httpx: route %q has no handler", def.Name))
	}
	if _, exists := reg.byName[def.Name]; exists {
		panic(fmt.Sprintf("httpx: duplicate route name %q", def.Name))
	}

	reg.routes = append(reg.routes, Route{Method: method, Pattern: pattern, Definition: def})
	reg.byName[def.Name] = len(reg.routes) - 1
}

// Lookup returns the route registered under name.
func (reg *Registry) Lookup(name string) (Route, bool) {
	i, ok := reg.byName[name]
	if !ok {
		return Route{}, false
	}
	return reg.routes[i], true
}

// Routes returns the registered routes in registration order.
func (reg *Registry) Routes() []Route {
	return reg.routes
}

// Mount compiles every registered definition and attaches it to the router.
func (reg *Registry) Mount(r chi.Router) {
	for _, rt := range reg.routes {
		r.Method(rt.Method, rt.Pattern, Handler(rt.Definition, reg.logger))
	}
}
