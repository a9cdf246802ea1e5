// internal/oracle/http.go
package oracle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// HTTPConfig describes a JSON price endpoint.
type HTTPConfig struct {
	// URL may contain {pair}, replaced by the requested pair.
	URL        string
	PricePath  string
	TimePath   string
	Timeout    time.Duration
	MaxElapsed time.Duration
}

// HTTP polls a JSON endpoint and extracts price and publish time with gjson paths.
type HTTP struct {
	cfg    HTTPConfig
	client *http.Client
	logger *zap.Logger
}

// NewHTTP builds an HTTP oracle.
func NewHTTP(cfg HTTPConfig, logger *zap.Logger) *HTTP {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxElapsed <= 0 {
		cfg.MaxElapsed = 15 * time.Second
	}
	return &HTTP{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.Named("oracle"),
	}
}

func (h *HTTP) Latest(ctx context.Context, pair string) (Quote, error) {
	url := strings.ReplaceAll(h.cfg.URL, "{pair}", pair)

	operation := func() (Quote, error) {
		body, err := h.fetch(ctx, url)
		if err != nil {
			return Quote{}, err
		}
		q, err := h.parse(body)
		if err != nil {
			return Quote{}, backoff.Permanent(err)
		}
		return q, nil
	}

	q, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(h.cfg.MaxElapsed),
	)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to fetch %s quote: %w", pair, err)
	}

	h.logger.Debug("Quote fetched",
		zap.String("pair", pair),
		zap.String("price", q.Price.String()),
		zap.Time("publish_time", q.PublishTime))
	return q, nil
}

var errBadStatus = errors.New("unexpected status")

func (h *HTTP) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Warn("Oracle request failed", zap.String("url", url), zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %d", errBadStatus, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, backoff.Permanent(fmt.Errorf("%w: %d", errBadStatus, resp.StatusCode))
	}
	return body, nil
}

func (h *HTTP) parse(body []byte) (Quote, error) {
	if !gjson.ValidBytes(body) {
		return Quote{}, errors.New("oracle response is not JSON")
	}
	priceRes := gjson.GetBytes(body, h.cfg.PricePath)
	if !priceRes.Exists() {
		return Quote{}, fmt.Errorf("oracle response has no %q", h.cfg.PricePath)
	}
	price, err := decimal.NewFromString(priceRes.String())
	if err != nil {
		return Quote{}, fmt.Errorf("bad oracle price %q: %w", priceRes.String(), err)
	}
	if !price.IsPositive() {
		return Quote{}, fmt.Errorf("oracle price %s is not positive", price)
	}

	timeRes := gjson.GetBytes(body, h.cfg.TimePath)
	if !timeRes.Exists() {
		return Quote{}, fmt.Errorf("oracle response has no %q", h.cfg.TimePath)
	}
	return Quote{
		Price:       price,
		PublishTime: time.Unix(timeRes.Int(), 0).UTC(),
		Source:      "http",
	}, nil
}
