package providers

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/samgozman/vn-market-thread/collector"
	"github.com/samgozman/vn-market-thread/scavenger/coingecko"
	"github.com/samgozman/vn-market-thread/utils"
)

// noCoinsFound is the only line of the crypto section when none of the symbols is known to CoinGecko.
const noCoinsFound = "Crypto: No coins found"

// Crypto renders USD and VND prices with the 24h change: "BTC: $67,123.45 / 1,712.3M VND (+1.20%)".
//
// Coin ids are detected by the exact symbol match in the CoinGecko search, then all prices
// are fetched with a single request.
type Crypto struct {
	source coinSource
	retry  collector.RetryPolicy
}

func NewCrypto(s coinSource) *Crypto {
	return &Crypto{source: s, retry: collector.NoRetry}
}

// WithRetry sets the retry policy of a single symbol search.
func (c *Crypto) WithRetry(p collector.RetryPolicy) *Crypto {
	c.retry = p
	return c
}

// coinLookup is the search outcome of a single symbol.
type coinLookup struct {
	symbol string
	id     string
	err    error
}

func (c *Crypto) Fetch(ctx context.Context, params collector.Params) (collector.Result, error) {
	p, ok := params.(collector.SymbolParams)
	if !ok {
		return collector.Result{}, collector.WrongParams(SourceCrypto, params)
	}

	lookups := make([]coinLookup, 0, len(p.Symbols))
	for _, symbol := range p.Symbols {
		if err := ctx.Err(); err != nil {
			return collector.Result{}, collector.NewFetchError(SourceCrypto, "collection cancelled", err)
		}

		var id string
		err := fetchItem(ctx, c.retry, SourceCrypto, symbol, func() (err error) {
			id, _, err = c.source.FindBySymbol(ctx, symbol)
			return err
		})
		lookups = append(lookups, coinLookup{symbol: symbol, id: id, err: err})
	}

	ids := lo.Uniq(lo.Compact(lo.Map(lookups, func(l coinLookup, _ int) string {
		return l.id
	})))
	if len(ids) == 0 && !lo.SomeBy(lookups, func(l coinLookup) bool { return l.err != nil }) {
		return collector.Line(noCoinsFound), nil
	}

	prices := make(map[string]coingecko.Price, len(ids))
	if len(ids) > 0 {
		resp, err := c.source.SimplePrice(ctx, ids)
		if err != nil {
			return collector.Result{}, classify(SourceCrypto, "failed to fetch prices", err)
		}
		prices = resp
	}

	lines := lo.Map(lookups, func(l coinLookup, _ int) string {
		if l.err != nil {
			return itemError(l.symbol, l.err)
		}
		pr, ok := prices[l.id]
		if l.id == "" || !ok {
			return notAvailable(l.symbol)
		}
		return fmt.Sprintf("%s: %s / %s (%s)",
			l.symbol, utils.FormatUSD(pr.USD), vnd(pr.VND), utils.FormatPercent(pr.Change24h))
	})

	return collector.Lines(lines...), nil
}
