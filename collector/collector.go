package collector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samgozman/vn-market-thread/utils"
)

// maxCauseLen is the maximum length of the error cause printed in the logs.
const maxCauseLen = 100

type registration struct {
	provider Provider
	enabled  bool
}

// Collector holds all registered providers and fetches data from the enabled ones.
// Providers are called one by one, in registration order.
type Collector struct {
	order    []string
	services map[string]*registration
	retry    RetryPolicy
	logger   *slog.Logger
}

// NewCollector creates a new Collector that calls every provider with the given retry policy.
func NewCollector(policy RetryPolicy) *Collector {
	return &Collector{
		services: make(map[string]*registration),
		retry:    policy,
		logger:   slog.Default(),
	}
}

// WithLogger sets the logger used for the progress and failure lines.
func (c *Collector) WithLogger(l *slog.Logger) *Collector {
	c.logger = l
	return c
}

// Register adds a provider under the given name. Registering the same name again replaces the
// provider and the enabled flag, but keeps the original position.
func (c *Collector) Register(name string, p Provider, enabled bool) *Collector {
	if _, ok := c.services[name]; !ok {
		c.order = append(c.order, name)
	}
	c.services[name] = &registration{provider: p, enabled: enabled}
	return c
}

// Enable enables the provider with the given name. Unknown names are ignored.
func (c *Collector) Enable(name string) {
	if s, ok := c.services[name]; ok {
		s.enabled = true
	}
}

// Disable disables the provider with the given name. Unknown names are ignored.
func (c *Collector) Disable(name string) {
	if s, ok := c.services[name]; ok {
		s.enabled = false
	}
}

// IsEnabled reports whether the provider with the given name is registered and enabled.
func (c *Collector) IsEnabled(name string) bool {
	s, ok := c.services[name]
	return ok && s.enabled
}

// Names returns all registered provider names in registration order.
func (c *Collector) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// CollectAll fetches data from every enabled provider.
//
// It never fails: any provider error (or panic) is logged and stored as a failed Outcome,
// and the remaining providers are still called.
func (c *Collector) CollectAll(ctx context.Context, configs ServiceConfig) *CollectionResult {
	res := newCollectionResult(len(c.order))

	for _, name := range c.order {
		s := c.services[name]
		if !s.enabled {
			continue
		}

		params, ok := configs[name]
		if !ok || params == nil {
			params = EmptyParams{}
		}

		c.logger.Info(fmt.Sprintf("[collector][%s] Fetching data", name))
		data, err := c.fetch(ctx, name, s.provider, params)
		if err != nil {
			fe := asFetchError(name, err)
			c.logger.Warn(
				fmt.Sprintf("[collector][%s] Failed to fetch data", name),
				"error", utils.Truncate(fe.Error(), maxCauseLen),
			)
			res.set(Outcome{Source: name, Err: fe})
			continue
		}

		res.set(Outcome{Source: name, Result: data})
	}

	return res
}

// fetch calls the provider through the retry policy.
func (c *Collector) fetch(ctx context.Context, name string, p Provider, params Params) (Result, error) {
	var data Result
	err := c.retry.Do(ctx, func() error {
		r, err := safeFetch(ctx, name, p, params)
		if err != nil {
			return err
		}
		data = r
		return nil
	}, func(n uint, err error) {
		c.logger.Info(
			fmt.Sprintf("[collector][%s] Attempt %d failed, retrying", name, n+1),
			"error", utils.Truncate(err.Error(), maxCauseLen),
		)
	})
	if err != nil {
		return Result{}, err
	}

	return data, nil
}

// safeFetch turns a provider panic into an unrecoverable FetchError.
func safeFetch(ctx context.Context, name string, p Provider, params Params) (r Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = NewFetchError(name, fmt.Sprintf("%v", rec), Unrecoverable(errPanic))
		}
	}()

	return p.Fetch(ctx, params)
}
