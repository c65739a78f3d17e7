package album

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxBodyBytes = 8 << 20

// ErrUpstream marks any failure talking to the album API: transport errors,
// non-2xx statuses and bodies that are not JSON.
var ErrUpstream = errors.New("album: upstream request failed")

type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("album: upstream http %d", e.StatusCode)
}

func (e *StatusError) Is(target error) bool { return target == ErrUpstream }

type Client struct {
	BaseURL string
	HTTP    *http.Client
	Timeout time.Duration
}

// Photos fetches BaseURL with query merged into its existing query string and
// returns the body unmodified.
func (c *Client) Photos(ctx context.Context, query url.Values) (json.RawMessage, error) {
	u, err := c.buildURL(query)
	if err != nil {
		return nil, err
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}
	if !json.Valid(b) {
		return nil, fmt.Errorf("%w: invalid json", ErrUpstream)
	}
	return json.RawMessage(b), nil
}

func (c *Client) client() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c *Client) buildURL(query url.Values) (string, error) {
	base := strings.TrimSpace(c.BaseURL)
	if base == "" {
		return "", fmt.Errorf("%w: album url not configured", ErrUpstream)
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: parse album url: %w", ErrUpstream, err)
	}
	q := u.Query()
	for k, vs := range query {
		q.Del(k)
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
