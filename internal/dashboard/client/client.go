// Package client talks to the flood API on behalf of the dashboard.
//
// Reads never fail: any transport error, non-2xx status (including the 404
// the API returns for empty lists) or decode error is logged and replaced by
// an empty slice so the page still renders. Writes return their errors.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"floodsentinel/internal/modules/flood/types"

	"github.com/go-resty/resty/v2"
)

type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// apiError is the error body written by the API.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	h := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: h, logger: logger}
}

func (c *Client) Areas(ctx context.Context) []types.Area {
	return getList[types.Area](ctx, c, "/areas", nil)
}

func (c *Client) Sensors(ctx context.Context, areaID int64) []types.Sensor {
	return getList[types.Sensor](ctx, c, "/sensors/"+strconv.FormatInt(areaID, 10), nil)
}

func (c *Client) Readings(ctx context.Context, sensorID int64, limit int) []types.Reading {
	return getList[types.Reading](ctx, c, "/readings/"+strconv.FormatInt(sensorID, 10), map[string]string{
		"limit": strconv.Itoa(limit),
	})
}

// Alerts returns the most recent alerts of one area.
func (c *Client) Alerts(ctx context.Context, areaID int64, limit int) []types.Alert {
	return getList[types.Alert](ctx, c, "/alerts", map[string]string{
		"limit":   strconv.Itoa(limit),
		"area_id": strconv.FormatInt(areaID, 10),
	})
}

func (c *Client) CreateAlert(ctx context.Context, in types.AlertCreate) (types.Alert, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(in).
		Post("/alerts")
	if err != nil {
		return types.Alert{}, fmt.Errorf("post alert: %w", err)
	}
	if resp.IsError() {
		return types.Alert{}, fmt.Errorf("post alert: %s", describe(resp))
	}
	var out types.Alert
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return types.Alert{}, fmt.Errorf("decode alert: %w", err)
	}
	return out, nil
}

func getList[T any](ctx context.Context, c *Client, path string, params map[string]string) []T {
	req := c.http.R().SetContext(ctx)
	if params != nil {
		req.SetQueryParams(params)
	}
	resp, err := req.Get(path)
	if err != nil {
		c.logger.Warn("api request failed", "path", path, "error", err)
		return []T{}
	}
	if resp.IsError() {
		c.logger.Warn("api request failed", "path", path, "status", resp.StatusCode(), "detail", describe(resp))
		return []T{}
	}
	var out []T
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		c.logger.Warn("api response decode failed", "path", path, "error", err)
		return []T{}
	}
	if out == nil {
		out = []T{}
	}
	return out
}

func describe(resp *resty.Response) string {
	var e apiError
	if err := json.Unmarshal(resp.Body(), &e); err == nil && e.Message != "" {
		return fmt.Sprintf("%d %s", resp.StatusCode(), e.Message)
	}
	return resp.Status()
}
