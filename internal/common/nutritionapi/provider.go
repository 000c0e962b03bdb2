// Package nutritionapi looks up per-100 g nutrition data from third-party
// food databases and maps it onto nutrition.NutritionItem.
package nutritionapi

import (
	"context"
	stderrors "errors"
	"net"
	"strings"
	"time"

	"bulkbuddy-workers/internal/common/config"
	"bulkbuddy-workers/internal/common/errors"
	httpclient "bulkbuddy-workers/internal/common/http"
	"bulkbuddy-workers/internal/common/metrics"
	"bulkbuddy-workers/internal/nutrition"
)

const (
	ProviderUSDA        = "usda"
	ProviderEdamam      = "edamam"
	ProviderSpoonacular = "spoonacular"

	defaultTimeout = 10 * time.Second
)

// Provider resolves a provider-specific query (an id or a free-text food
// name) to nutrient values per 100 g.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, query string) (*nutrition.NutritionItem, error)
}

// Registry holds the enabled providers by name.
type Registry struct {
	providers map[string]Provider
	order     []string
}

// NewRegistry builds clients for every enabled provider section.
func NewRegistry(cfg config.NutritionAPIsConfig) *Registry {
	r := &Registry{providers: make(map[string]Provider)}
	if cfg.USDA.Enabled {
		r.Add(NewUSDAClient(cfg.USDA))
	}
	if cfg.Edamam.Enabled {
		r.Add(NewEdamamClient(cfg.Edamam))
	}
	if cfg.Spoonacular.Enabled {
		r.Add(NewSpoonacularClient(cfg.Spoonacular))
	}
	return r
}

func (r *Registry) Add(p Provider) {
	if _, exists := r.providers[p.Name()]; !exists {
		r.order = append(r.order, p.Name())
	}
	r.providers[p.Name()] = p
}

// Names lists enabled providers in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Lookup queries the named provider, or the first enabled one when name is
// empty, and records the outcome.
func (r *Registry) Lookup(ctx context.Context, name, query string) (*nutrition.NutritionItem, string, error) {
	if name == "" && len(r.order) > 0 {
		name = r.order[0]
	}
	p, ok := r.providers[name]
	if !ok {
		return nil, name, errors.NewNoProviderConfiguredError(name)
	}

	item, err := p.Lookup(ctx, query)
	if err != nil {
		err = classify(name, query, err)
		metrics.RecordProviderRequest(name, string(errors.CodeOf(err)))
		return nil, name, err
	}
	metrics.RecordProviderRequest(name, "ok")
	return item, name, nil
}

func classify(provider, query string, err error) error {
	if _, ok := errors.AsStandardError(err); ok {
		return err
	}

	var statusErr *httpclient.StatusError
	if stderrors.As(err, &statusErr) && statusErr.NotFound() {
		return errors.NewFoodNotFoundError(provider, query)
	}

	var netErr net.Error
	if stderrors.Is(err, context.DeadlineExceeded) ||
		(stderrors.As(err, &netErr) && netErr.Timeout()) {
		return errors.NewNutritionProviderTimeoutError(provider)
	}
	return errors.NewNutritionProviderFailedError(provider, err)
}

func newHTTPClient(cfg config.ProviderConfig) *httpclient.Client {
	timeout := config.GetDuration(cfg.Timeout)
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return httpclient.NewClient(timeout)
}

func trimBase(u string) string {
	return strings.TrimRight(u, "/")
}
