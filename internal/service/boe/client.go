// Package boe reads the Bank of England Bank Rate from the statistical
// database CSV export.
package boe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"FXOptions/internal/service/provider"
	xhttp "FXOptions/pkg/http"
	"FXOptions/pkg/logger"
)

// ErrNoRate is returned when no line of the export carries a rate.
var ErrNoRate = errors.New("boe: no rate found")

// maxPercent rejects values that cannot be a policy rate, such as years in
// a date column.
const maxPercent = 20.0

type Client struct {
	fetch *provider.Fetcher
	url   string
}

func New(fetch *provider.Fetcher, url string) *Client {
	return &Client{fetch: fetch, url: url}
}

// Rate returns the most recent Bank Rate as a decimal.
func (c *Client) Rate(ctx context.Context) (float64, error) {
	var body []byte
	if err := c.fetch.Fetch(ctx, &xhttp.RequestOptions{Method: xhttp.MethodGet, URL: c.url}, &body); err != nil {
		return 0, fmt.Errorf("boe bank rate: %w", err)
	}
	v, err := ParseLatest(body)
	if err != nil {
		return 0, err
	}
	c.fetch.Logger().Debug("boe bank rate", logger.Float64("percent", v))
	return v / 100, nil
}

// ParseLatest scans the export from the bottom and returns the last column
// of the first line whose value is a percentage in [0, 20].
func ParseLatest(body []byte) (float64, error) {
	lines := strings.Split(string(bytes.TrimSpace(body)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		parts := strings.Split(lines[i], ",")
		if len(parts) < 2 {
			continue
		}
		raw := strings.Trim(strings.TrimSpace(parts[len(parts)-1]), `"`)
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > maxPercent {
			continue
		}
		return v, nil
	}
	return 0, ErrNoRate
}
