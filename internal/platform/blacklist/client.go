// Package blacklist queries an external identity blacklist over HTTP.
package blacklist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	portssvc "github.com/SscSPs/wallet_ledger/internal/core/ports/services"
)

// ErrUnexpectedStatus is returned for any response other than 200 or 404.
var ErrUnexpectedStatus = errors.New("unexpected blacklist response")

// Client implements IdentityChecker against GET {baseURL}/{identity}.
// A 200 means the identity is listed and a 404 means it is not.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a client whose requests give up after timeout.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

var _ portssvc.IdentityChecker = (*Client)(nil)

func (c *Client) IsBlacklisted(ctx context.Context, identity string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+url.PathEscape(identity), nil)
	if err != nil {
		return false, fmt.Errorf("build blacklist request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("blacklist request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("%w: status %d", ErrUnexpectedStatus, resp.StatusCode)
	}
}
