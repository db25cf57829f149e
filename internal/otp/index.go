package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"
)

// ErrNotFound indicates the engine index has no such entity.
var ErrNotFound = errors.New("not found in engine index")

// Routes lists every route in the engine's transit index.
func (c *Client) Routes(ctx context.Context) ([]Fragment, error) {
	start := time.Now()
	routes, err := c.index(ctx, "/index/routes")
	if c.metrics != nil {
		c.metrics.RecordRequest(ProviderName, "index_routes", time.Since(start), err)
	}
	return routes, err
}

// StopRoutes lists the routes serving a stop.
func (c *Client) StopRoutes(ctx context.Context, stop EntityID) ([]Fragment, error) {
	start := time.Now()
	routes, err := c.index(ctx, "/index/stops/"+url.PathEscape(stop.String())+"/routes")
	if c.metrics != nil {
		c.metrics.RecordRequest(ProviderName, "index_stop_routes", time.Since(start), err)
	}
	return routes, err
}

func (c *Client) index(ctx context.Context, path string) ([]Fragment, error) {
	body, err := c.get(ctx, path, nil)
	if err != nil {
		var oe *Error
		if errors.As(err, &oe) && oe.Code == "HTTP_404" {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, err
	}
	defer body.Close()

	dec := json.NewDecoder(io.LimitReader(body, maxBodyBytes))
	dec.UseNumber()

	var items []any
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("decoding index response: %w: %w", ErrInvalidResponse, err)
	}

	fragments := make([]Fragment, 0, len(items))
	for _, item := range items {
		if f, ok := AsFragment(item); ok {
			fragments = append(fragments, f)
		}
	}

	c.logger.Debug().Str("path", path).Int("count", len(fragments)).Msg("received index from engine")
	return fragments, nil
}
