package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/driver_availability/internal/model"
)

const maxResponseBytes = 4 << 20

// Client talks to the availability HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// TemplateUpdate carries the fields to change; nil fields are kept.
type TemplateUpdate struct {
	Name        *string
	WeekPattern model.WeekPattern
}

func (c *Client) ListAvailabilities(ctx context.Context, userID int64, date string) ([]*model.DayAvailability, error) {
	q := url.Values{"userId": {strconv.FormatInt(userID, 10)}}
	if date != "" {
		q.Set("date", date)
	}
	var out []*model.DayAvailability
	if err := c.do(ctx, http.MethodGet, "/availabilities/all", q, nil, "availabilities", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateAvailability(ctx context.Context, userID int64, date string, slots model.SlotStatuses) (*model.DayAvailability, error) {
	body := model.DayPayload{UserID: userID, Date: date, SlotStatuses: slots}
	var out model.DayAvailability
	if err := c.do(ctx, http.MethodPost, "/availabilities/add", nil, body, "availability", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAvailability(ctx context.Context, userID, id int64, slots model.SlotStatuses) (*model.DayAvailability, error) {
	body := model.DayPayload{UserID: userID, SlotStatuses: slots}
	var out model.DayAvailability
	path := "/availabilities/update/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodPut, path, nil, body, "availability", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAvailability(ctx context.Context, userID, id int64) error {
	q := url.Values{"userId": {strconv.FormatInt(userID, 10)}}
	var deleted bool
	path := "/availabilities/delete/" + strconv.FormatInt(id, 10)
	return c.do(ctx, http.MethodDelete, path, q, nil, "deleted", &deleted)
}

func (c *Client) ListTemplates(ctx context.Context, userID int64) ([]*model.AvailabilityTemplate, error) {
	q := url.Values{"userId": {strconv.FormatInt(userID, 10)}}
	var out []*model.AvailabilityTemplate
	if err := c.do(ctx, http.MethodGet, "/availability-templates/all", q, nil, "templates", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateTemplate(ctx context.Context, userID int64, name string, pattern model.WeekPattern) (*model.AvailabilityTemplate, error) {
	body := map[string]any{"userId": userID, "name": name, "weekPattern": pattern}
	var out model.AvailabilityTemplate
	if err := c.do(ctx, http.MethodPost, "/availability-templates/add", nil, body, "template", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTemplate(ctx context.Context, userID, id int64, upd TemplateUpdate) (*model.AvailabilityTemplate, error) {
	body := map[string]any{"userId": userID}
	if upd.Name != nil {
		body["name"] = *upd.Name
	}
	if upd.WeekPattern != nil {
		body["weekPattern"] = upd.WeekPattern
	}
	var out model.AvailabilityTemplate
	path := "/availability-templates/update/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodPut, path, nil, body, "template", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTemplate(ctx context.Context, userID, id int64) error {
	q := url.Values{"userId": {strconv.FormatInt(userID, 10)}}
	var deleted bool
	path := "/availability-templates/delete/" + strconv.FormatInt(id, 10)
	return c.do(ctx, http.MethodDelete, path, q, nil, "deleted", &deleted)
}

// ApplyTemplate applies a template over a date range. On a partial failure the
// counters written so far are returned along with a *model.DateError.
func (c *Client) ApplyTemplate(ctx context.Context, userID, templateID int64, startDate, endDate string, overwrite bool) (model.ApplyResult, error) {
	body := map[string]any{
		"userId":    userID,
		"startDate": startDate,
		"endDate":   endDate,
		"overwrite": overwrite,
	}
	var out model.ApplyResult
	path := "/availability-templates/apply/" + strconv.FormatInt(templateID, 10)
	err := c.do(ctx, http.MethodPost, path, nil, body, "result", &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, key string, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("API call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)
	return decodeEnvelope(data, key, out)
}
