// Package providers implements collector.Provider for every supported market data source.
// Each provider wraps one scavenger client and renders the data into message lines.
package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samgozman/vn-market-thread/collector"
	"github.com/samgozman/vn-market-thread/internal/httpx"
	"github.com/samgozman/vn-market-thread/scavenger"
	"github.com/samgozman/vn-market-thread/scavenger/coingecko"
	"github.com/samgozman/vn-market-thread/scavenger/sjc"
	"github.com/samgozman/vn-market-thread/scavenger/vcb"
	"github.com/samgozman/vn-market-thread/scavenger/vci"
	"github.com/samgozman/vn-market-thread/utils"
)

// Source names used as collector registration keys.
const (
	SourceGold     = "gold"
	SourceStock    = "stock"
	SourceVNIndex  = "vnindex"
	SourceExchange = "exchange"
	SourceCrypto   = "crypto"
)

// maxItemErrorLen is the maximum length of the error text rendered inline for a single item.
const maxItemErrorLen = 50

// maxLogErrorLen is the maximum length of the error text in the retry logs.
const maxLogErrorLen = 100

// historyDays is the number of daily candles requested from the chart API.
// Enough to get over long holidays (Tet) and still have the previous close.
const historyDays = 30

type goldSource interface {
	Fetch(ctx context.Context, date time.Time) ([]sjc.GoldPrice, error)
}

type chartSource interface {
	History(ctx context.Context, symbol string, countBack int, to time.Time) (vci.Candles, error)
}

type rateSource interface {
	Fetch(ctx context.Context) (*vcb.RateTable, error)
}

type coinSource interface {
	FindBySymbol(ctx context.Context, symbol string) (id string, ok bool, err error)
	SimplePrice(ctx context.Context, ids []string) (map[string]coingecko.Price, error)
}

var (
	_ goldSource  = (*sjc.GoldPrices)(nil)
	_ chartSource = (*vci.Chart)(nil)
	_ rateSource  = (*vcb.ExchangeRates)(nil)
	_ coinSource  = (*coingecko.API)(nil)
)

// Set is the set of all providers backed by one Scavenger.
type Set struct {
	Gold     *Gold
	Stock    *Stock
	VNIndex  *Index
	Exchange *Exchange
	Crypto   *Crypto
}

// NewSet creates all providers with the Scavenger clients.
// The retry policy is used for per-item requests, whole-provider requests are retried by the collector.
func NewSet(s *scavenger.Scavenger, policy collector.RetryPolicy) *Set {
	return &Set{
		Gold:     NewGold(s.Gold),
		Stock:    NewStock(s.Chart).WithRetry(policy),
		VNIndex:  NewIndex(s.Chart),
		Exchange: NewExchange(s.Rates),
		Crypto:   NewCrypto(s.CoinGecko).WithRetry(policy),
	}
}

// classify wraps an upstream error into a FetchError of the source.
func classify(source, message string, err error) *collector.FetchError {
	return collector.NewFetchError(source, message, unrecoverable(err))
}

// unrecoverable marks client errors (4xx except 429) and undecodable bodies, so they are not retried.
func unrecoverable(err error) error {
	var se *httpx.StatusError
	switch {
	case errors.As(err, &se) && !se.Temporary():
		return collector.Unrecoverable(err)
	case errors.Is(err, httpx.ErrDecode):
		return collector.Unrecoverable(err)
	}
	return err
}

// fetchItem calls fn for a single item (symbol) with the retry policy.
// The last upstream error is returned as is, to be rendered inline.
func fetchItem(ctx context.Context, policy collector.RetryPolicy, source, item string, fn func() error) error {
	var last error
	_ = policy.Do(ctx, func() error {
		last = fn()
		return unrecoverable(last)
	}, func(n uint, err error) {
		slog.Info(
			fmt.Sprintf("[providers][%s] %s: attempt %d failed, retrying", source, item, n+1),
			"error", utils.Truncate(err.Error(), maxLogErrorLen),
		)
	})

	return last
}

// itemError renders a failed item inline: "VCB: ERROR - invalid status code error: 502".
func itemError(item string, err error) string {
	return fmt.Sprintf("%s: ERROR - %s", item, utils.ErrorText(err, maxItemErrorLen))
}

// notAvailable renders an item the source has no data for: "VCB: N/A".
func notAvailable(item string) string {
	return fmt.Sprintf("%s: %s", item, utils.NotAvailable)
}

// vnd formats the positive VND amount, "N/A" otherwise.
func vnd(v float64) string {
	if v <= 0 {
		return utils.NotAvailable
	}
	return utils.FormatVND(v)
}
