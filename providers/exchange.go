package providers

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/samgozman/vn-market-thread/collector"
	"github.com/samgozman/vn-market-thread/utils"
)

// Exchange renders the VCB rates of every currency: "USD: Buy 25.2k VND - Sell 25.5k VND".
// Buy is the transfer rate.
type Exchange struct {
	source rateSource
}

func NewExchange(s rateSource) *Exchange {
	return &Exchange{source: s}
}

func (e *Exchange) Fetch(ctx context.Context, params collector.Params) (collector.Result, error) {
	p, ok := params.(collector.CurrencyParams)
	if !ok {
		return collector.Result{}, collector.WrongParams(SourceExchange, params)
	}

	table, err := e.source.Fetch(ctx)
	if err != nil {
		return collector.Result{}, classify(SourceExchange, "failed to fetch VCB rates", err)
	}

	lines := lo.Map(p.Currencies, func(code string, _ int) string {
		r, ok := table.Lookup(code)
		if !ok {
			return notAvailable(code)
		}
		return fmt.Sprintf("%s: Buy %s - Sell %s", code, rate(r.Transfer), rate(r.Sell))
	})

	return collector.Lines(lines...), nil
}

func rate(value string) string {
	v, ok := utils.ParseAmount(value)
	if !ok {
		return utils.NotAvailable
	}
	return vnd(v)
}
