package vci

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/samgozman/vn-market-thread/internal/httpx"
)

const (
	OHLCChartURL = "https://trading.vietcap.com.vn/api/chart/OHLCChart/gap-chart"

	// IndexVNINDEX is the symbol of the HOSE VN-Index in the Vietcap chart API.
	IndexVNINDEX = "VNINDEX"
)

// Chart fetches daily OHLC candles for stocks and indices from the Vietcap (VCI) trading API.
type Chart struct {
	HTTP *httpx.Client
	URL  string
}

// New creates a Chart fetcher with the default Vietcap URL.
func New(c *httpx.Client) *Chart {
	return &Chart{HTTP: c, URL: OHLCChartURL}
}

// History fetches up to countBack daily candles for the symbol ending at `to`.
// The result is sorted by time (ascending), so the last element is the latest session.
func (c *Chart) History(ctx context.Context, symbol string, countBack int, to time.Time) (Candles, error) {
	payload, err := json.Marshal(ohlcRequest{
		TimeFrame: "ONE_DAY",
		Symbols:   []string{symbol},
		To:        to.Unix(),
		CountBack: countBack,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("content-type", "application/json")
	req.Header.Set("accept", "application/json, text/plain, */*")
	req.Header.Set("referer", "https://trading.vietcap.com.vn/")
	req.Header.Set("origin", "https://trading.vietcap.com.vn")

	body, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var resp []ohlcSeries
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, httpx.Decode(err)
	}

	for _, s := range resp {
		if s.Symbol != "" && s.Symbol != symbol {
			continue
		}
		return s.candles()
	}

	return Candles{}, nil
}

// Candle is a single daily session.
type Candle struct {
	Time   time.Time // Session date (UTC)
	Open   float64   // Open price (VND for stocks, points for indices)
	High   float64   // High price
	Low    float64   // Low price
	Close  float64   // Close price
	Volume float64   // Matched volume
}

// Candles is the slice of daily candles sorted by time.
type Candles []Candle

// Last returns the latest candle and the one before it.
// If there is only one candle, both values are the same. ok is false for an empty slice.
func (c Candles) Last() (latest, prev Candle, ok bool) {
	switch len(c) {
	case 0:
		return Candle{}, Candle{}, false
	case 1:
		return c[0], c[0], true
	default:
		return c[len(c)-1], c[len(c)-2], true
	}
}

type ohlcRequest struct {
	TimeFrame string   `json:"timeFrame"`
	Symbols   []string `json:"symbols"`
	To        int64    `json:"to"`
	CountBack int      `json:"countBack"`
}

type ohlcSeries struct {
	Symbol string      `json:"symbol"`
	Open   []float64   `json:"o"`
	High   []float64   `json:"h"`
	Low    []float64   `json:"l"`
	Close  []float64   `json:"c"`
	Volume []float64   `json:"v"`
	Time   []timestamp `json:"t"`
}

func (s ohlcSeries) candles() (Candles, error) {
	n := len(s.Close)
	if len(s.Time) != n {
		return nil, httpx.Decode(fmt.Errorf("%s: %d timestamps for %d close prices", s.Symbol, len(s.Time), n))
	}

	out := make(Candles, n)
	for i := 0; i < n; i++ {
		out[i] = Candle{
			Time:   time.Unix(int64(s.Time[i]), 0).UTC(),
			Open:   at(s.Open, i),
			High:   at(s.High, i),
			Low:    at(s.Low, i),
			Close:  s.Close[i],
			Volume: at(s.Volume, i),
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})

	return out, nil
}

func at(v []float64, i int) float64 {
	if i < len(v) {
		return v[i]
	}
	return 0
}

// timestamp is a unix timestamp that Vietcap sends either as a number or as a string.
type timestamp int64

func (t *timestamp) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(b, `"`))
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return fmt.Errorf("invalid timestamp %s: %w", b, err)
		}
		v = int64(f)
	}
	*t = timestamp(v)
	return nil
}
