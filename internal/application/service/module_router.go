package service

import (
	"errors"
	"fmt"

	"github.com/garyjia/asset-console/internal/application/port"
	"github.com/garyjia/asset-console/internal/domain/module"
)

// ErrIncompleteRouting is returned when a module code has no repository
var ErrIncompleteRouting = errors.New("module routing is incomplete")

// Route is what a module code resolves to
type Route struct {
	Code       module.Code
	ModuleName string
	Repository port.RecordRepository
}

// ModuleRouter maps module codes to configuration names and repositories
type ModuleRouter interface {
	Resolve(code module.Code) (Route, error)
	Routes() []Route
}

type moduleRouter struct {
	routes map[module.Code]Route
}

// NewModuleRouter checks that every catalogue code has an approvable
// repository so Resolve can never miss for a valid code.
func NewModuleRouter(repos map[module.Code]port.RecordRepository) (ModuleRouter, error) {
	routes := make(map[module.Code]Route, len(repos))
	for _, code := range module.Codes() {
		repo, ok := repos[code]
		if !ok || repo == nil {
			return nil, fmt.Errorf("%w: %s has no repository", ErrIncompleteRouting, code)
		}
		if !repo.Approvable() {
			return nil, fmt.Errorf("%w: %s repository %s has no approval workflow", ErrIncompleteRouting, code, repo.Key())
		}
		routes[code] = Route{Code: code, ModuleName: code.ModuleName(), Repository: repo}
	}
	for code := range repos {
		if !code.IsValid() {
			return nil, fmt.Errorf("%w: %q", module.ErrUnknownModule, code)
		}
	}
	return &moduleRouter{routes: routes}, nil
}

func (r *moduleRouter) Resolve(code module.Code) (Route, error) {
	route, ok := r.routes[code]
	if !ok {
		return Route{}, fmt.Errorf("%w: %q", module.ErrUnknownModule, code)
	}
	return route, nil
}

// Routes returns every route in catalogue order
func (r *moduleRouter) Routes() []Route {
	out := make([]Route, 0, len(r.routes))
	for _, code := range module.Codes() {
		out = append(out, r.routes[code])
	}
	return out
}
