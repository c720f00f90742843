// Package api provides HTTP handlers for the Doorman decision layer.
package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/doorman"
	"github.com/xraph/doorman/decisionlog"
)

// API wires all Doorman HTTP handlers together. Guards are mounted per
// protected resource; the decide and enforce endpoints dispatch on the
// request's resource name.
type API struct {
	guards map[string]*doorman.Guard
	logs   decisionlog.Store
	router forge.Router
}

// New creates an API over a decision-log store and a Forge router.
func New(logs decisionlog.Store, router forge.Router) *API {
	return &API{
		guards: make(map[string]*doorman.Guard),
		logs:   logs,
		router: router,
	}
}

// Mount registers the guard serving the named resource.
func (a *API) Mount(resource string, guard *doorman.Guard) {
	a.guards[resource] = guard
}

// Handler returns the fully assembled http.Handler with all routes.
func (a *API) Handler() http.Handler {
	if a.router == nil {
		a.router = forge.NewRouter()
	}
	if err := a.RegisterRoutes(a.router); err != nil {
		panic("doorman: register routes: " + err.Error())
	}
	return a.router.Handler()
}

// RegisterRoutes registers all API routes into the given Forge router.
func (a *API) RegisterRoutes(router forge.Router) error {
	registerers := []func(forge.Router) error{
		a.registerDecideRoutes,
		a.registerLogRoutes,
	}
	for _, fn := range registerers {
		if err := fn(router); err != nil {
			return err
		}
	}
	return nil
}
