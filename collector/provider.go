package collector

import (
	"context"
	"strings"
)

// Provider is the interface for a single market data source (gold, stock, index, exchange, crypto).
//
// A Provider must not fail when the source simply has nothing to report: that is a valid Result
// with an "N/A" line. Errors are reserved for transport and parsing failures.
type Provider interface {
	Fetch(ctx context.Context, params Params) (Result, error)
}

// ProviderFunc is an adapter to allow the use of ordinary functions as a Provider.
type ProviderFunc func(ctx context.Context, params Params) (Result, error)

// Fetch calls f(ctx, params).
func (f ProviderFunc) Fetch(ctx context.Context, params Params) (Result, error) {
	return f(ctx, params)
}

// Params is the per-source parameter set. One of EmptyParams, SymbolParams or CurrencyParams.
type Params interface {
	params()
}

// EmptyParams is used by sources without parameters (gold, vnindex).
type EmptyParams struct{}

// SymbolParams holds an ordered list of tickers (stock, crypto).
type SymbolParams struct {
	Symbols []string
}

// CurrencyParams holds an ordered list of ISO currency codes (exchange).
type CurrencyParams struct {
	Currencies []string
}

func (EmptyParams) params()    {}
func (SymbolParams) params()   {}
func (CurrencyParams) params() {}

// ServiceConfig maps source name to its parameters for one collection run.
type ServiceConfig map[string]Params

// Result is a successful fetch: a single summary line or an ordered list of lines.
type Result struct {
	lines []string
	multi bool
}

// Line creates a single-line Result.
func Line(s string) Result {
	return Result{lines: []string{s}}
}

// Lines creates a multi-line Result. The order is kept as given.
func Lines(lines ...string) Result {
	return Result{lines: lines, multi: true}
}

// IsMulti reports whether the Result was created with Lines.
func (r Result) IsMulti() bool {
	return r.multi
}

// IsEmpty reports whether the Result carries no text.
func (r Result) IsEmpty() bool {
	for _, l := range r.lines {
		if l != "" {
			return false
		}
	}
	return true
}

// Items returns a copy of the Result lines.
func (r Result) Items() []string {
	if len(r.lines) == 0 {
		return nil
	}
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// String joins the lines with a newline.
func (r Result) String() string {
	return strings.Join(r.lines, "\n")
}
