package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/samgozman/vn-market-thread/collector"
	"github.com/samgozman/vn-market-thread/utils"
)

// Gold renders the SJC bar price: "SJC Gold: Buy 118.5M VND - Sell 120.5M VND".
type Gold struct {
	source goldSource
	now    func() time.Time
}

func NewGold(s goldSource) *Gold {
	return &Gold{source: s, now: time.Now}
}

func (g *Gold) Fetch(ctx context.Context, params collector.Params) (collector.Result, error) {
	if _, ok := params.(collector.EmptyParams); !ok {
		return collector.Result{}, collector.WrongParams(SourceGold, params)
	}

	prices, err := g.source.Fetch(ctx, g.now().In(utils.VietnamZone))
	if err != nil {
		return collector.Result{}, classify(SourceGold, "failed to fetch SJC prices", err)
	}
	if len(prices) == 0 {
		return collector.Line("SJC Gold: " + utils.NotAvailable), nil
	}

	// The first row is the main "1L, 10L, 1KG" bar of the Ho Chi Minh branch
	p := prices[0]
	return collector.Line(fmt.Sprintf("SJC Gold: Buy %s - Sell %s", vnd(p.Buy), vnd(p.Sell))), nil
}
