package sjc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samgozman/vn-market-thread/internal/httpx"
)

const (
	PriceServiceURL = "https://sjc.com.vn/GoldPrice/Services/PriceService.ashx"
)

var errNotSuccessful = errors.New("sjc price service returned success=false")

// GoldPrices is the struct that fetches SJC gold prices from the sjc.com.vn price service.
type GoldPrices struct {
	HTTP *httpx.Client
	URL  string
}

// New creates a GoldPrices fetcher with the default price service URL.
func New(c *httpx.Client) *GoldPrices {
	return &GoldPrices{HTTP: c, URL: PriceServiceURL}
}

// Fetch fetches gold prices of all SJC branches for the given date.
// The first element is the main "SJC 1L, 10L, 1KG" bar price of the Ho Chi Minh branch.
func (g *GoldPrices) Fetch(ctx context.Context, date time.Time) ([]GoldPrice, error) {
	form := url.Values{
		"method": {"GetSJCGoldPriceByDate"},
		"toDate": {date.Format("02/01/2006")},
	}
	req, err := http.NewRequest(http.MethodPost, g.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("content-type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("x-requested-with", "XMLHttpRequest")

	body, err := g.HTTP.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var resp priceServiceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, httpx.Decode(err)
	}
	if !resp.Success {
		return nil, errNotSuccessful
	}

	prices := make([]GoldPrice, 0, len(resp.Data))
	for _, d := range resp.Data {
		prices = append(prices, GoldPrice{
			Name:   strings.TrimSpace(d.TypeName),
			Branch: strings.TrimSpace(d.BranchName),
			Buy:    d.BuyValue,
			Sell:   d.SellValue,
		})
	}

	return prices, nil
}

// GoldPrice is a single SJC price row. Prices are in VND per tael, 0 if not available.
type GoldPrice struct {
	Name   string  // Gold type (e.g. "Vàng SJC 1L, 10L, 1KG")
	Branch string  // SJC branch name (e.g. "Hồ Chí Minh")
	Buy    float64 // Buy price
	Sell   float64 // Sell price
}

type priceServiceResponse struct {
	Success    bool   `json:"success"`
	LatestDate string `json:"latestDate"` // unnecessary, but keeping it for JSON unmarshalling
	Data       []struct {
		ID         int     `json:"Id"`
		TypeName   string  `json:"TypeName"`
		BranchName string  `json:"BranchName"`
		Buy        string  `json:"Buy"`
		BuyValue   float64 `json:"BuyValue"`
		Sell       string  `json:"Sell"`
		SellValue  float64 `json:"SellValue"`
	} `json:"data"`
}
