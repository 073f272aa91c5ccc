package coingecko

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/samgozman/vn-market-thread/internal/httpx"
)

const (
	BaseURL = "https://api.coingecko.com/api/v3"
)

// API is the client of the public CoinGecko API (no key).
type API struct {
	HTTP    *httpx.Client
	BaseURL string
}

// New creates an API client with the default CoinGecko base URL.
func New(c *httpx.Client) *API {
	return &API{HTTP: c, BaseURL: BaseURL}
}

// Coin is a search hit.
type Coin struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank int    `json:"market_cap_rank"`
}

// Price of a coin in USD and VND with the 24h change in percent (USD based).
type Price struct {
	USD       float64 `json:"usd"`
	VND       float64 `json:"vnd"`
	Change24h float64 `json:"usd_24h_change"`
}

// Search returns the coins matching the query, ordered by CoinGecko relevance.
func (a *API) Search(ctx context.Context, query string) ([]Coin, error) {
	u := a.BaseURL + "/search?" + url.Values{"query": {query}}.Encode()

	var resp struct {
		Coins []Coin `json:"coins"`
	}
	if err := a.get(ctx, u, &resp); err != nil {
		return nil, err
	}
	if resp.Coins == nil {
		return []Coin{}, nil
	}

	return resp.Coins, nil
}

// FindBySymbol returns the id of the first coin with exactly the same symbol (case-insensitive).
// ok is false if no coin matched.
func (a *API) FindBySymbol(ctx context.Context, symbol string) (id string, ok bool, err error) {
	coins, err := a.Search(ctx, symbol)
	if err != nil {
		return "", false, err
	}
	for _, c := range coins {
		if strings.EqualFold(c.Symbol, symbol) {
			return c.ID, true, nil
		}
	}
	return "", false, nil
}

// SimplePrice returns USD and VND prices with the 24h change for the coin ids.
// Unknown ids are missing from the result map.
func (a *API) SimplePrice(ctx context.Context, ids []string) (map[string]Price, error) {
	q := url.Values{
		"ids":                 {strings.Join(ids, ",")},
		"vs_currencies":       {"usd,vnd"},
		"include_24hr_change": {"true"},
	}
	u := a.BaseURL + "/simple/price?" + q.Encode()

	resp := make(map[string]Price, len(ids))
	if err := a.get(ctx, u, &resp); err != nil {
		return nil, err
	}

	return resp, nil
}

func (a *API) get(ctx context.Context, u string, v any) error {
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("accept", "application/json")

	body, err := a.HTTP.Do(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return httpx.Decode(err)
	}
	return nil
}
