// Package feed loads the home sections the reader renders.
package feed

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/MrSnakeDoc/kompas/internal/utils"
)

// DefaultURL is the development feed endpoint
const DefaultURL = "http://localhost:3002/homesections"

// maxBodyBytes caps the response we are willing to decode
const maxBodyBytes = 8 << 20

// Source yields the current home sections
type Source interface {
	Fetch(ctx context.Context) ([]HomeSection, error)
	Name() string
}

// HTTPSource fetches home sections from a JSON endpoint
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource creates a source for rawURL with a per-request timeout
func NewHTTPSource(rawURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		url: rawURL,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: timeout,
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
				MaxIdleConns:    4,
				IdleConnTimeout: 90 * time.Second,
			},
		},
	}
}

// Name identifies the source in logs
func (s *HTTPSource) Name() string {
	return s.url
}

// Fetch GETs the endpoint and decodes the section list.
// Every failure is an *APIError.
func (s *HTTPSource) Fetch(ctx context.Context) ([]HomeSection, error) {
	u, err := url.Parse(s.url)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &APIError{Kind: KindInvalidURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, &APIError{Kind: KindInvalidURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &APIError{Kind: KindHTTPStatus, Err: err}
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Kind: KindHTTPStatus, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &APIError{Kind: KindHTTPStatus, StatusCode: resp.StatusCode, Err: err}
	}
	if len(body) == 0 {
		return nil, &APIError{Kind: KindNoData}
	}

	var sections []HomeSection
	if err := json.Unmarshal(body, &sections); err != nil {
		return nil, &APIError{Kind: KindDecoding, Err: fmt.Errorf("decode home sections: %w", err)}
	}
	return sections, nil
}
