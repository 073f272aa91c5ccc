package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/samgozman/vn-market-thread/collector"
	"github.com/samgozman/vn-market-thread/internal/httpx"
	"github.com/samgozman/vn-market-thread/scavenger/coingecko"
	"github.com/samgozman/vn-market-thread/scavenger/sjc"
	"github.com/samgozman/vn-market-thread/scavenger/vcb"
	"github.com/samgozman/vn-market-thread/scavenger/vci"
	"github.com/samgozman/vn-market-thread/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 14, 2, 30, 0, 0, time.UTC)

type mockGold struct {
	mock.Mock
}

func (m *mockGold) Fetch(ctx context.Context, date time.Time) ([]sjc.GoldPrice, error) {
	args := m.Called(ctx, date)
	return args.Get(0).([]sjc.GoldPrice), args.Error(1)
}

type fakeChart map[string]struct {
	candles vci.Candles
	err     error
}

func (f fakeChart) History(_ context.Context, symbol string, _ int, _ time.Time) (vci.Candles, error) {
	r, ok := f[symbol]
	if !ok {
		return vci.Candles{}, nil
	}
	return r.candles, r.err
}

type fakeRates struct {
	table *vcb.RateTable
	err   error
}

func (f fakeRates) Fetch(context.Context) (*vcb.RateTable, error) {
	return f.table, f.err
}

type fakeCoins struct {
	ids       map[string]string
	searchErr map[string]error
	prices    map[string]coingecko.Price
	priceErr  error
	priceIDs  []string
}

func (f *fakeCoins) FindBySymbol(_ context.Context, symbol string) (string, bool, error) {
	if err, ok := f.searchErr[symbol]; ok {
		return "", false, err
	}
	id, ok := f.ids[symbol]
	return id, ok, nil
}

func (f *fakeCoins) SimplePrice(_ context.Context, ids []string) (map[string]coingecko.Price, error) {
	f.priceIDs = ids
	if f.priceErr != nil {
		return nil, f.priceErr
	}
	return f.prices, nil
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		wantUnrecovered bool
	}{
		{name: "bad gateway", err: &httpx.StatusError{Code: http.StatusBadGateway}, wantUnrecovered: false},
		{name: "rate limited", err: &httpx.StatusError{Code: http.StatusTooManyRequests}, wantUnrecovered: false},
		{name: "forbidden", err: &httpx.StatusError{Code: http.StatusForbidden}, wantUnrecovered: true},
		{name: "decode", err: httpx.Decode(errors.New("EOF")), wantUnrecovered: true},
		{name: "network", err: errors.New("dial tcp: i/o timeout"), wantUnrecovered: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe := classify(SourceGold, "failed", tt.err)
			assert.Equal(t, SourceGold, fe.Source)
			assert.Equal(t, tt.wantUnrecovered, errors.Is(fe, collector.ErrUnrecoverable))
			assert.True(t, errors.Is(fe, tt.err))
		})
	}
}

func TestGold_Fetch(t *testing.T) {
	tests := []struct {
		name   string
		prices []sjc.GoldPrice
		want   string
	}{
		{
			name: "regular",
			prices: []sjc.GoldPrice{
				{Name: "Vàng SJC 1L, 10L, 1KG", Buy: 118500000, Sell: 120500000},
				{Name: "Vàng SJC 5 chỉ", Buy: 1, Sell: 2},
			},
			want: "SJC Gold: Buy 118.5M VND - Sell 120.5M VND",
		},
		{
			name:   "missing sell price",
			prices: []sjc.GoldPrice{{Buy: 118000000}},
			want:   "SJC Gold: Buy 118M VND - Sell N/A",
		},
		{
			name:   "no rows",
			prices: []sjc.GoldPrice{},
			want:   "SJC Gold: N/A",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(mockGold)
			m.On("Fetch", mock.Anything, fixedNow.In(utils.VietnamZone)).Return(tt.prices, nil)

			g := NewGold(m)
			g.now = func() time.Time { return fixedNow }

			got, err := g.Fetch(context.Background(), collector.EmptyParams{})
			require.NoError(t, err)
			assert.False(t, got.IsMulti())
			assert.Equal(t, tt.want, got.String())
			m.AssertExpectations(t)
		})
	}
}

func TestGold_Fetch_Errors(t *testing.T) {
	m := new(mockGold)
	m.On("Fetch", mock.Anything, mock.Anything).Return([]sjc.GoldPrice(nil), &httpx.StatusError{Code: 503})

	g := NewGold(m)
	_, err := g.Fetch(context.Background(), collector.EmptyParams{})
	var fe *collector.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, SourceGold, fe.Source)
	assert.False(t, errors.Is(err, collector.ErrUnrecoverable))

	_, err = g.Fetch(context.Background(), collector.SymbolParams{Symbols: []string{"SJC"}})
	assert.True(t, errors.Is(err, collector.ErrUnrecoverable))
}

func TestStock_Fetch(t *testing.T) {
	chart := fakeChart{
		"VCB": {candles: vci.Candles{{Close: 60800}, {Close: 61500}}},
		"VIC": {err: &httpx.StatusError{Code: 502, Status: "502 Bad Gateway"}},
		"HPG": {candles: vci.Candles{{Close: 0}}},
		"FPT": {candles: vci.Candles{{Close: 118000}}},
	}
	s := NewStock(chart)
	s.now = func() time.Time { return fixedNow }

	got, err := s.Fetch(context.Background(), collector.SymbolParams{Symbols: []string{"VCB", "VIC", "HPG", "FPT", "XXX"}})
	require.NoError(t, err)
	assert.True(t, got.IsMulti())
	assert.Equal(t, []string{
		"VCB: 61.5k VND",
		"VIC: ERROR - invalid status code error: 502, value 502 Bad Gate",
		"HPG: N/A",
		"FPT: 118k VND",
		"XXX: N/A",
	}, got.Items())
}

// flakyChart fails the first `failures` calls of every symbol with err.
type flakyChart struct {
	failures int
	err      error
	calls    map[string]int
}

func (f *flakyChart) History(_ context.Context, symbol string, _ int, _ time.Time) (vci.Candles, error) {
	f.calls[symbol]++
	if f.calls[symbol] <= f.failures {
		return nil, f.err
	}
	return vci.Candles{{Close: 61500}}, nil
}

func TestStock_Fetch_Retry(t *testing.T) {
	policy := collector.RetryPolicy{Attempts: 3, Delay: time.Millisecond}
	tests := []struct {
		name      string
		failures  int
		err       error
		wantLine  string
		wantCalls int
	}{
		{
			name:      "transient error recovers",
			failures:  1,
			err:       &httpx.StatusError{Code: http.StatusBadGateway, Status: "502 Bad Gateway"},
			wantLine:  "VCB: 61.5k VND",
			wantCalls: 2,
		},
		{
			name:      "attempts exhausted",
			failures:  5,
			err:       &httpx.StatusError{Code: http.StatusBadGateway, Status: "502 Bad Gateway"},
			wantLine:  "VCB: ERROR - invalid status code error: 502, value 502 Bad Gate",
			wantCalls: 3,
		},
		{
			name:      "client error is not retried",
			failures:  5,
			err:       &httpx.StatusError{Code: http.StatusNotFound, Status: "404 Not Found"},
			wantLine:  "VCB: ERROR - invalid status code error: 404, value 404 Not Foun",
			wantCalls: 1,
		},
		{
			name:      "decode error is not retried",
			failures:  5,
			err:       httpx.Decode(errors.New("invalid character")),
			wantCalls: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chart := &flakyChart{failures: tt.failures, err: tt.err, calls: map[string]int{}}
			s := NewStock(chart).WithRetry(policy)
			s.now = func() time.Time { return fixedNow }

			got, err := s.Fetch(context.Background(), collector.SymbolParams{Symbols: []string{"VCB"}})
			require.NoError(t, err)
			assert.Equal(t, tt.wantCalls, chart.calls["VCB"])
			if tt.wantLine != "" {
				assert.Equal(t, []string{tt.wantLine}, got.Items())
			} else {
				assert.Contains(t, got.String(), "VCB: ERROR - ")
			}
		})
	}
}

func TestStock_Fetch_Params(t *testing.T) {
	s := NewStock(fakeChart{})

	got, err := s.Fetch(context.Background(), collector.SymbolParams{})
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())

	_, err = s.Fetch(context.Background(), collector.CurrencyParams{Currencies: []string{"USD"}})
	assert.True(t, errors.Is(err, collector.ErrUnrecoverable))
}

func TestStock_Fetch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStock(fakeChart{}).Fetch(ctx, collector.SymbolParams{Symbols: []string{"VCB"}})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestIndex_Fetch(t *testing.T) {
	tests := []struct {
		name    string
		candles vci.Candles
		want    string
	}{
		{
			name:    "rising",
			candles: vci.Candles{{Close: 1200}, {Close: 1228.89}, {Close: 1234.56}},
			want:    "VN-Index: 1,234.56 (+5.67, +0.46%)",
		},
		{
			name:    "falling",
			candles: vci.Candles{{Close: 1250}, {Close: 1237.5}},
			want:    "VN-Index: 1,237.50 (-12.50, -1.00%)",
		},
		{
			name:    "single session",
			candles: vci.Candles{{Close: 1234.56}},
			want:    "VN-Index: 1,234.56 (+0.00, +0.00%)",
		},
		{
			name: "no data",
			want: "VN-Index: N/A",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := NewIndex(fakeChart{vci.IndexVNINDEX: {candles: tt.candles}})
			got, err := i.Fetch(context.Background(), collector.EmptyParams{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestIndex_Fetch_Error(t *testing.T) {
	i := NewIndex(fakeChart{vci.IndexVNINDEX: {err: httpx.Decode(errors.New("invalid character"))}})
	_, err := i.Fetch(context.Background(), collector.EmptyParams{})
	var fe *collector.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, SourceVNIndex, fe.Source)
	assert.True(t, errors.Is(err, collector.ErrUnrecoverable))
}

func TestCrypto_Fetch(t *testing.T) {
	coins := &fakeCoins{
		ids:       map[string]string{"BTC": "bitcoin", "ETH": "ethereum", "WBTC": "wrapped-bitcoin"},
		searchErr: map[string]error{"SOL": fmt.Errorf("GET api.coingecko.com: %w", errors.New("connection reset by peer"))},
		prices: map[string]coingecko.Price{
			"bitcoin":  {USD: 67123.45, VND: 1712300000, Change24h: 1.2},
			"ethereum": {USD: 2500, VND: 63700000, Change24h: -3.45},
		},
	}
	c := NewCrypto(coins)

	got, err := c.Fetch(context.Background(), collector.SymbolParams{Symbols: []string{"BTC", "ETH", "SOL", "DOGE", "WBTC"}})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"BTC: $67,123.45 / 1,712.3M VND (+1.20%)",
		"ETH: $2,500.00 / 63.7M VND (-3.45%)",
		"SOL: ERROR - GET api.coingecko.com: connection reset by peer",
		"DOGE: N/A",
		"WBTC: N/A",
	}, got.Items())
	assert.Equal(t, []string{"bitcoin", "ethereum", "wrapped-bitcoin"}, coins.priceIDs)
}

// flakyCoins fails the first search of every symbol.
type flakyCoins struct {
	fakeCoins
	searches map[string]int
}

func (f *flakyCoins) FindBySymbol(ctx context.Context, symbol string) (string, bool, error) {
	f.searches[symbol]++
	if f.searches[symbol] == 1 {
		return "", false, &httpx.StatusError{Code: http.StatusTooManyRequests, Status: "429 Too Many Requests"}
	}
	return f.fakeCoins.FindBySymbol(ctx, symbol)
}

func TestCrypto_Fetch_RetrySearch(t *testing.T) {
	coins := &flakyCoins{
		fakeCoins: fakeCoins{
			ids:    map[string]string{"BTC": "bitcoin"},
			prices: map[string]coingecko.Price{"bitcoin": {USD: 67123.45, VND: 1712300000, Change24h: 1.2}},
		},
		searches: map[string]int{},
	}
	c := NewCrypto(coins).WithRetry(collector.RetryPolicy{Attempts: 2, Delay: time.Millisecond})

	got, err := c.Fetch(context.Background(), collector.SymbolParams{Symbols: []string{"BTC"}})
	require.NoError(t, err)
	assert.Equal(t, 2, coins.searches["BTC"])
	assert.Equal(t, []string{"BTC: $67,123.45 / 1,712.3M VND (+1.20%)"}, got.Items())
	assert.Equal(t, []string{"bitcoin"}, coins.priceIDs)
}

func TestCrypto_Fetch_NoCoins(t *testing.T) {
	coins := &fakeCoins{}
	got, err := NewCrypto(coins).Fetch(context.Background(), collector.SymbolParams{Symbols: []string{"NOPE"}})
	require.NoError(t, err)
	assert.False(t, got.IsMulti())
	assert.Equal(t, "Crypto: No coins found", got.String())
	assert.Nil(t, coins.priceIDs)
}

func TestCrypto_Fetch_PriceError(t *testing.T) {
	coins := &fakeCoins{
		ids:      map[string]string{"BTC": "bitcoin"},
		priceErr: &httpx.StatusError{Code: http.StatusTooManyRequests},
	}
	_, err := NewCrypto(coins).Fetch(context.Background(), collector.SymbolParams{Symbols: []string{"BTC"}})
	var fe *collector.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, SourceCrypto, fe.Source)
	assert.False(t, errors.Is(err, collector.ErrUnrecoverable))
}
