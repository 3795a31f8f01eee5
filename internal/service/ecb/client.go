// Package ecb reads euro reference rates from the ECB data portal CSV API.
package ecb

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"FXOptions/internal/service/provider"
	xhttp "FXOptions/pkg/http"
	"FXOptions/pkg/logger"
)

// ErrNoObservation is returned when the CSV holds no usable OBS_VALUE.
var ErrNoObservation = errors.New("ecb: no observation")

// Client fetches the latest observation of one ECB series.
type Client struct {
	fetch  *provider.Fetcher
	url    string
	series string
}

// New returns a client for the series at url. series names it in logs.
func New(fetch *provider.Fetcher, url, series string) *Client {
	return &Client{fetch: fetch, url: url, series: series}
}

// Rate returns the latest observation as a decimal (3.90 -> 0.039).
func (c *Client) Rate(ctx context.Context) (float64, error) {
	var body []byte
	err := c.fetch.Fetch(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     c.url,
		Headers: map[string]string{"Accept": "text/csv"},
	}, &body)
	if err != nil {
		return 0, fmt.Errorf("ecb %s: %w", c.series, err)
	}
	v, err := ParseObservation(body)
	if err != nil {
		return 0, fmt.Errorf("ecb %s: %w", c.series, err)
	}
	c.fetch.Logger().Debug("ecb observation", logger.String("series", c.series), logger.Float64("percent", v))
	return v / 100, nil
}

// ParseObservation returns OBS_VALUE, in percent, from the last data row.
func ParseObservation(body []byte) (float64, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimSpace(body)))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) < 2 {
		return 0, ErrNoObservation
	}

	idx := -1
	for i, h := range rows[0] {
		if strings.TrimSpace(h) == "OBS_VALUE" {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, fmt.Errorf("OBS_VALUE column not found: %w", ErrNoObservation)
	}

	last := rows[len(rows)-1]
	if idx >= len(last) {
		return 0, ErrNoObservation
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(last[idx]), 64)
	if err != nil {
		return 0, fmt.Errorf("OBS_VALUE %q: %w", last[idx], ErrNoObservation)
	}
	return v, nil
}
