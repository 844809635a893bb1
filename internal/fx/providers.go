package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
)

// ExchangeRateAPI fetches rates from open.er-api.com. It is keyless, so it
// sits first in the default chain.
type ExchangeRateAPI struct {
	BaseURL string
	Client  *http.Client
}

func NewExchangeRateAPI(client *http.Client) *ExchangeRateAPI {
	return &ExchangeRateAPI{BaseURL: "https://open.er-api.com/v6", Client: client}
}

func (p *ExchangeRateAPI) Name() string { return "exchangerate-api" }

func (p *ExchangeRateAPI) Fetch(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	var body struct {
		Result string                 `json:"result"`
		Rates  map[string]json.Number `json:"rates"`
	}
	if err := getJSON(ctx, p.Client, fmt.Sprintf("%s/latest/%s", p.BaseURL, url.PathEscape(base)), &body); err != nil {
		return decimal.Zero, err
	}
	if body.Result != "success" {
		return decimal.Zero, fmt.Errorf("exchangerate-api returned result %q", body.Result)
	}
	return rateFromMap(body.Rates, quote)
}

// Fixer fetches rates from data.fixer.io and requires an access key
type Fixer struct {
	BaseURL   string
	AccessKey string
	Client    *http.Client
}

func NewFixer(accessKey string, client *http.Client) *Fixer {
	return &Fixer{BaseURL: "https://data.fixer.io/api", AccessKey: accessKey, Client: client}
}

func (p *Fixer) Name() string { return "fixer" }

func (p *Fixer) Fetch(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	if p.AccessKey == "" {
		return decimal.Zero, fmt.Errorf("fixer access key not configured")
	}
	var body struct {
		Success bool                   `json:"success"`
		Rates   map[string]json.Number `json:"rates"`
	}
	u := fmt.Sprintf("%s/latest?access_key=%s&base=%s&symbols=%s",
		p.BaseURL, url.QueryEscape(p.AccessKey), url.QueryEscape(base), url.QueryEscape(quote))
	if err := getJSON(ctx, p.Client, u, &body); err != nil {
		return decimal.Zero, err
	}
	if !body.Success {
		return decimal.Zero, fmt.Errorf("fixer returned success=false")
	}
	return rateFromMap(body.Rates, quote)
}

// OpenExchangeRates fetches rates from openexchangerates.org and requires an
// app id
type OpenExchangeRates struct {
	BaseURL string
	AppID   string
	Client  *http.Client
}

func NewOpenExchangeRates(appID string, client *http.Client) *OpenExchangeRates {
	return &OpenExchangeRates{BaseURL: "https://openexchangerates.org/api", AppID: appID, Client: client}
}

func (p *OpenExchangeRates) Name() string { return "openexchangerates" }

func (p *OpenExchangeRates) Fetch(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	if p.AppID == "" {
		return decimal.Zero, fmt.Errorf("openexchangerates app id not configured")
	}
	var body struct {
		Rates map[string]json.Number `json:"rates"`
	}
	u := fmt.Sprintf("%s/latest.json?app_id=%s&base=%s",
		p.BaseURL, url.QueryEscape(p.AppID), url.QueryEscape(base))
	if err := getJSON(ctx, p.Client, u, &body); err != nil {
		return decimal.Zero, err
	}
	return rateFromMap(body.Rates, quote)
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func rateFromMap(rates map[string]json.Number, quote string) (decimal.Decimal, error) {
	raw, ok := rates[quote]
	if !ok {
		return decimal.Zero, fmt.Errorf("no rate for %s in response", quote)
	}
	rate, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("malformed rate %q: %w", raw.String(), err)
	}
	if rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("non-positive rate %s", rate)
	}
	return rate, nil
}
