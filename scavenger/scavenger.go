package scavenger

import (
	"time"

	"github.com/samgozman/vn-market-thread/internal/httpx"
	"github.com/samgozman/vn-market-thread/scavenger/coingecko"
	"github.com/samgozman/vn-market-thread/scavenger/sjc"
	"github.com/samgozman/vn-market-thread/scavenger/vcb"
	"github.com/samgozman/vn-market-thread/scavenger/vci"
)

// Scavenger is the struct that fetches raw market data from the upstream sources.
// The Scavenger will hold all available sources, sharing one HTTP client between them.
//
// It doesn't format anything. The main purpose of this struct is to give the providers
// typed access to the upstream data.
type Scavenger struct {
	Gold      *sjc.GoldPrices
	Chart     *vci.Chart
	Rates     *vcb.ExchangeRates
	CoinGecko *coingecko.API
}

// New creates a Scavenger with the default upstream URLs and the given per-request timeout.
func New(timeout time.Duration) *Scavenger {
	c := httpx.New(timeout)
	return &Scavenger{
		Gold:      sjc.New(c),
		Chart:     vci.New(c),
		Rates:     vcb.New(c),
		CoinGecko: coingecko.New(c),
	}
}
