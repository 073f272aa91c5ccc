package vcb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samgozman/vn-market-thread/internal/httpx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rateXML = `<?xml version="1.0" encoding="utf-8"?>
<ExrateList>
  <DateTime>10/14/2026 8:30:12 AM</DateTime>
  <Exrate CurrencyCode="USD" CurrencyName="US DOLLAR" Buy="25,140.00" Transfer="25,170.00" Sell="25,470.00" />
  <Exrate CurrencyCode="EUR" CurrencyName="EURO" Buy="27,010.15" Transfer="27,283.99" Sell="28,491.03" />
  <Exrate CurrencyCode="KWD" CurrencyName="KUWAITI DINAR" Buy="-" Transfer="81,956.75" Sell="85,231.61" />
  <Source>Joint Stock Commercial Bank for Foreign Trade of Vietnam - Vietcombank</Source>
</ExrateList>`

func TestExchangeRates_Fetch(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantLen int
		wantErr error
	}{
		{name: "regular response", body: rateXML, wantLen: 3},
		{name: "empty list", body: `<ExrateList><DateTime>x</DateTime></ExrateList>`, wantLen: 0},
		{name: "html page", body: `<html><body>Maintenance</body></html>`, wantErr: httpx.ErrDecode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				w.Header().Set("Content-Type", "text/xml")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			e := New(httpx.New(2 * time.Second))
			e.URL = srv.URL

			got, err := e.Fetch(context.Background())
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, got.Len())
		})
	}
}

func TestRateTable_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(rateXML))
	}))
	defer srv.Close()

	e := New(httpx.New(2 * time.Second))
	e.URL = srv.URL
	table, err := e.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "10/14/2026 8:30:12 AM", table.Updated)

	usd, ok := table.Lookup("usd")
	assert.True(t, ok)
	assert.Equal(t, Rate{Code: "USD", Name: "US DOLLAR", Buy: "25,140.00", Transfer: "25,170.00", Sell: "25,470.00"}, usd)

	kwd, ok := table.Lookup("KWD")
	assert.True(t, ok)
	assert.Equal(t, "-", kwd.Buy)

	_, ok = table.Lookup("XYZ")
	assert.False(t, ok)

	var empty *RateTable
	_, ok = empty.Lookup("USD")
	assert.False(t, ok)
	assert.Equal(t, 0, empty.Len())
}
