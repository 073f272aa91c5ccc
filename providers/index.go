package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/samgozman/vn-market-thread/collector"
	"github.com/samgozman/vn-market-thread/scavenger/vci"
	"github.com/samgozman/vn-market-thread/utils"
)

// Index renders the VN-Index with the change against the previous close:
// "VN-Index: 1,234.56 (+5.67, +0.46%)".
type Index struct {
	source chartSource
	symbol string
	now    func() time.Time
}

func NewIndex(s chartSource) *Index {
	return &Index{source: s, symbol: vci.IndexVNINDEX, now: time.Now}
}

func (i *Index) Fetch(ctx context.Context, params collector.Params) (collector.Result, error) {
	if _, ok := params.(collector.EmptyParams); !ok {
		return collector.Result{}, collector.WrongParams(SourceVNIndex, params)
	}

	candles, err := i.source.History(ctx, i.symbol, historyDays, i.now())
	if err != nil {
		return collector.Result{}, classify(SourceVNIndex, "failed to fetch index history", err)
	}

	latest, prev, ok := candles.Last()
	if !ok {
		return collector.Line("VN-Index: " + utils.NotAvailable), nil
	}

	change := latest.Close - prev.Close
	var pct float64
	if prev.Close != 0 {
		pct = change / prev.Close * 100
	}

	return collector.Line(fmt.Sprintf(
		"VN-Index: %s (%s, %s)",
		utils.FormatNumber(latest.Close, 2),
		utils.FormatSigned(change),
		utils.FormatPercent(pct),
	)), nil
}
