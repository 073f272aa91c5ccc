package vcb

import (
	"context"
	"encoding/xml"
	"net/http"
	"strings"

	"github.com/samgozman/vn-market-thread/internal/httpx"
)

const (
	ExchangeRatesURL = "https://portal.vietcombank.com.vn/Usercontrols/TVPortal.TyGia/pXML.aspx"
)

// ExchangeRates fetches the Vietcombank exchange rate table.
type ExchangeRates struct {
	HTTP *httpx.Client
	URL  string
}

// New creates an ExchangeRates fetcher with the default Vietcombank URL.
func New(c *httpx.Client) *ExchangeRates {
	return &ExchangeRates{HTTP: c, URL: ExchangeRatesURL}
}

// Fetch downloads the current rate table. A single request returns all currencies.
func (e *ExchangeRates) Fetch(ctx context.Context) (*RateTable, error) {
	req, err := http.NewRequest(http.MethodGet, e.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("accept", "application/xml, text/xml")

	body, err := e.HTTP.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var list exrateList
	if err := xml.Unmarshal(body, &list); err != nil {
		return nil, httpx.Decode(err)
	}

	table := &RateTable{
		Updated: strings.TrimSpace(list.DateTime),
		rates:   make(map[string]Rate, len(list.Rates)),
	}
	for _, r := range list.Rates {
		code := strings.ToUpper(strings.TrimSpace(r.Code))
		if code == "" {
			continue
		}
		table.rates[code] = Rate{
			Code:     code,
			Name:     strings.TrimSpace(r.Name),
			Buy:      strings.TrimSpace(r.Buy),
			Transfer: strings.TrimSpace(r.Transfer),
			Sell:     strings.TrimSpace(r.Sell),
		}
	}

	return table, nil
}

// RateTable is the set of rates keyed by currency code.
type RateTable struct {
	Updated string // Publication time as sent by VCB (e.g. "10/14/2026 8:30:12 AM")
	rates   map[string]Rate
}

// Lookup returns the rate of the currency code (case-insensitive).
func (t *RateTable) Lookup(code string) (Rate, bool) {
	if t == nil {
		return Rate{}, false
	}
	r, ok := t.rates[strings.ToUpper(strings.TrimSpace(code))]
	return r, ok
}

// Len returns the number of currencies in the table.
func (t *RateTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rates)
}

// Rate is a single currency row. Values are raw strings like "25,070.00" or "-" if not quoted.
type Rate struct {
	Code     string
	Name     string
	Buy      string // Cash buy
	Transfer string // Transfer buy
	Sell     string
}

type exrateList struct {
	XMLName  xml.Name `xml:"ExrateList"`
	DateTime string   `xml:"DateTime"`
	Rates    []struct {
		Code     string `xml:"CurrencyCode,attr"`
		Name     string `xml:"CurrencyName,attr"`
		Buy      string `xml:"Buy,attr"`
		Transfer string `xml:"Transfer,attr"`
		Sell     string `xml:"Sell,attr"`
	} `xml:"Exrate"`
	Source string `xml:"Source"`
}
