// Package yahoo reads quotes, daily history and listed options chains from
// the public Yahoo Finance endpoints.
package yahoo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"FXOptions/internal/domain/models"
	"FXOptions/internal/service/provider"
	xhttp "FXOptions/pkg/http"
	"FXOptions/pkg/logger"
)

// Config holds the Yahoo endpoints.
type Config struct {
	ChartURL     string
	OptionsURL   string
	CookieURL    string
	CrumbURL     string
	HistoryRange string
}

// ErrNoData is returned when a well-formed response carries no usable value.
var ErrNoData = errors.New("yahoo: no data")

// Client implements QuoteSource, HistorySource and OptionChainSource.
type Client struct {
	fetch   *provider.Fetcher
	cfg     Config
	session *Session
}

func New(fetch *provider.Fetcher, cfg Config, session *Session) *Client {
	if cfg.HistoryRange == "" {
		cfg.HistoryRange = "3mo"
	}
	return &Client{fetch: fetch, cfg: cfg, session: session}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

func (c *Client) chart(ctx context.Context, symbol, rng string) (*chartResponse, error) {
	var out chartResponse
	err := c.fetch.Fetch(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    strings.TrimRight(c.cfg.ChartURL, "/") + "/" + url.PathEscape(symbol),
		QueryParams: map[string][]string{
			"range":    {rng},
			"interval": {"1d"},
		},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}
	if len(out.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, ErrNoData)
	}
	return &out, nil
}

// Quote returns the regular market price of symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (float64, error) {
	out, err := c.chart(ctx, symbol, "1d")
	if err != nil {
		return 0, err
	}
	p := out.Chart.Result[0].Meta.RegularMarketPrice
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return 0, fmt.Errorf("yahoo quote %s: %w", symbol, ErrNoData)
	}
	c.fetch.Logger().Debug("quote", logger.String("symbol", symbol), logger.Float64("price", *p))
	return *p, nil
}

// DailyCloses returns the configured range of daily closes, skipping nulls.
func (c *Client) DailyCloses(ctx context.Context, symbol string) ([]float64, error) {
	out, err := c.chart(ctx, symbol, c.cfg.HistoryRange)
	if err != nil {
		return nil, err
	}
	quotes := out.Chart.Result[0].Indicators.Quote
	if len(quotes) == 0 {
		return nil, fmt.Errorf("yahoo history %s: %w", symbol, ErrNoData)
	}
	closes := make([]float64, 0, len(quotes[0].Close))
	for _, v := range quotes[0].Close {
		if v != nil {
			closes = append(closes, *v)
		}
	}
	c.fetch.Logger().Debug("history", logger.String("symbol", symbol), logger.Int("points", len(closes)))
	return closes, nil
}

type optionsResponse struct {
	OptionChain struct {
		Result []struct {
			ExpirationDates []int64 `json:"expirationDates"`
			Quote           struct {
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
			} `json:"quote"`
			Options []struct {
				ExpirationDate int64 `json:"expirationDate"`
				Calls          []struct {
					Strike    *float64 `json:"strike"`
					LastPrice *float64 `json:"lastPrice"`
				} `json:"calls"`
			} `json:"options"`
		} `json:"result"`
	} `json:"optionChain"`
}

// OptionChain returns the calls of one expiry. The options endpoint needs
// the session crumb; a 401 or 403 invalidates it and the call is retried
// once with a fresh credential.
func (c *Client) OptionChain(ctx context.Context, symbol string, expiry *time.Time) (*models.OptionChain, error) {
	if c.session == nil {
		return nil, fmt.Errorf("yahoo options %s: no session configured", symbol)
	}
	cred, err := c.session.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("yahoo options %s: %w", symbol, err)
	}
	out, err := c.options(ctx, symbol, expiry, cred)
	if xhttp.IsStatus(err, http.StatusUnauthorized, http.StatusForbidden) {
		c.fetch.Logger().Info("crumb rejected, refreshing", logger.String("symbol", symbol))
		c.session.Invalidate(ctx, cred)
		if cred, err = c.session.Get(ctx); err != nil {
			return nil, fmt.Errorf("yahoo options %s: %w", symbol, err)
		}
		out, err = c.options(ctx, symbol, expiry, cred)
	}
	if err != nil {
		return nil, fmt.Errorf("yahoo options %s: %w", symbol, err)
	}
	return parseChain(symbol, out)
}

func (c *Client) options(ctx context.Context, symbol string, expiry *time.Time, cred Credential) (*optionsResponse, error) {
	q := map[string][]string{"crumb": {cred.Crumb}}
	if expiry != nil {
		q["date"] = []string{strconv.FormatInt(expiry.Unix(), 10)}
	}
	var out optionsResponse
	err := c.fetch.Fetch(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         strings.TrimRight(c.cfg.OptionsURL, "/") + "/" + url.PathEscape(symbol),
		Headers:     map[string]string{"Cookie": cred.CookieHeader()},
		QueryParams: q,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func parseChain(symbol string, out *optionsResponse) (*models.OptionChain, error) {
	if len(out.OptionChain.Result) == 0 {
		return nil, fmt.Errorf("yahoo options %s: %w", symbol, ErrNoData)
	}
	r := out.OptionChain.Result[0]
	if r.Quote.RegularMarketPrice == nil || *r.Quote.RegularMarketPrice <= 0 {
		return nil, fmt.Errorf("yahoo options %s: no underlying price: %w", symbol, ErrNoData)
	}

	chain := &models.OptionChain{
		Symbol:          symbol,
		UnderlyingPrice: *r.Quote.RegularMarketPrice,
		Expirations:     make([]time.Time, 0, len(r.ExpirationDates)),
	}
	for _, ts := range r.ExpirationDates {
		chain.Expirations = append(chain.Expirations, time.Unix(ts, 0).UTC())
	}
	if len(r.Options) > 0 {
		o := r.Options[0]
		if o.ExpirationDate > 0 {
			chain.Expiry = time.Unix(o.ExpirationDate, 0).UTC()
		}
		for _, call := range o.Calls {
			if call.Strike == nil || call.LastPrice == nil {
				continue
			}
			chain.Calls = append(chain.Calls, models.OptionQuote{Strike: *call.Strike, LastPrice: *call.LastPrice})
		}
	}
	return chain, nil
}
