// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	apperrors "wanted-applier/internal/common/errors"
)

// TokenCookie is the cookie the board reads the session token from.
const TokenCookie = "WWW_ONEID_ACCESS_TOKEN"

// Client issues JSON requests against the board. The zero token sends
// unauthenticated requests; WithToken derives an authenticated copy that shares
// the underlying transport, so one Client serves every concurrent worker.
type Client struct {
	httpClient *http.Client
	token      string
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewClientWithHTTP wraps a caller-supplied *http.Client.
func NewClientWithHTTP(hc *http.Client) *Client {
	return &Client{httpClient: hc}
}

// WithToken returns a copy of c that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	return &Client{httpClient: c.httpClient, token: token}
}

func (c *Client) Get(ctx context.Context, rawURL string, out interface{}) error {
	return c.Do(ctx, http.MethodGet, rawURL, nil, out)
}

func (c *Client) Post(ctx context.Context, rawURL string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPost, rawURL, body, out)
}

func (c *Client) Put(ctx context.Context, rawURL string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPut, rawURL, body, out)
}

// Do sends one request. Any status other than 200, and any transport failure,
// comes back as *errors.RequestError; a 200 with an undecodable body is an
// *errors.InvariantError. out may be nil to discard the body.
func (c *Client) Do(ctx context.Context, method, rawURL string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s body: %w", method, rawURL, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, rawURL, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.AddCookie(&http.Cookie{Name: TokenCookie, Value: c.token})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewRequestError(method, rawURL, 0, err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewRequestError(method, rawURL, resp.StatusCode, err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		return apperrors.NewRequestError(method, rawURL, resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return apperrors.NewInvariantError("response body must be JSON", fmt.Sprintf("%s %s: %v", method, rawURL, err))
	}
	return nil
}

// Stamp prefixes the query of rawURL with a unix-seconds cache-busting key,
// the way the board's own web client does.
func Stamp(rawURL string, now time.Time) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	ts := strconv.FormatInt(now.Unix(), 10)
	if u.RawQuery == "" {
		u.RawQuery = ts
	} else {
		u.RawQuery = ts + "&" + u.RawQuery
	}
	return u.String()
}
