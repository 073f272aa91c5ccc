package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/samgozman/vn-market-thread/collector"
	"github.com/samgozman/vn-market-thread/scavenger/vci"
	"github.com/samgozman/vn-market-thread/utils"
)

// Stock renders the latest close price of every symbol: "VCB: 61.5k VND".
//
// Errors are reported per symbol, so one delisted or mistyped ticker doesn't hide the others.
type Stock struct {
	source chartSource
	retry  collector.RetryPolicy
	now    func() time.Time
}

func NewStock(s chartSource) *Stock {
	return &Stock{source: s, retry: collector.NoRetry, now: time.Now}
}

// WithRetry sets the retry policy of a single symbol request.
func (s *Stock) WithRetry(p collector.RetryPolicy) *Stock {
	s.retry = p
	return s
}

func (s *Stock) Fetch(ctx context.Context, params collector.Params) (collector.Result, error) {
	p, ok := params.(collector.SymbolParams)
	if !ok {
		return collector.Result{}, collector.WrongParams(SourceStock, params)
	}

	to := s.now()
	lines := make([]string, 0, len(p.Symbols))
	for _, symbol := range p.Symbols {
		if err := ctx.Err(); err != nil {
			return collector.Result{}, collector.NewFetchError(SourceStock, "collection cancelled", err)
		}

		var candles vci.Candles
		err := fetchItem(ctx, s.retry, SourceStock, symbol, func() (err error) {
			candles, err = s.source.History(ctx, symbol, historyDays, to)
			return err
		})
		if err != nil {
			lines = append(lines, itemError(symbol, err))
			continue
		}

		latest, _, ok := candles.Last()
		if !ok || latest.Close <= 0 {
			lines = append(lines, notAvailable(symbol))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", symbol, utils.FormatVND(latest.Close)))
	}

	return collector.Lines(lines...), nil
}
