package options

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Provider fetches the raw payload of a dynamic option source. The payload is
// decoded JSON: either the option sequence itself or an object holding it
// under the source's results path.
type Provider interface {
	Fetch(ctx context.Context, url string) (any, error)
}

// ProviderFunc adapts a function into a Provider.
type ProviderFunc func(ctx context.Context, url string) (any, error)

// Fetch delegates to the underlying function.
func (fn ProviderFunc) Fetch(ctx context.Context, url string) (any, error) {
	return fn(ctx, url)
}

// HTTPOption configures an HTTPProvider.
type HTTPOption func(*HTTPProvider)

// WithHTTPClient overrides the client used for requests.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(p *HTTPProvider) {
		if client != nil {
			p.client = client
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(p *HTTPProvider) {
		p.timeout = timeout
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) HTTPOption {
	return func(p *HTTPProvider) {
		if p.headers == nil {
			p.headers = make(http.Header)
		}
		p.headers.Add(key, value)
	}
}

// HTTPProvider fetches option payloads with GET requests and decodes JSON
// responses.
type HTTPProvider struct {
	client  *http.Client
	timeout time.Duration
	headers http.Header
}

// NewHTTPProvider constructs an HTTPProvider using http.DefaultClient unless
// overridden.
func NewHTTPProvider(options ...HTTPOption) *HTTPProvider {
	p := &HTTPProvider{client: http.DefaultClient, timeout: 10 * time.Second}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Fetch implements Provider.
func (p *HTTPProvider) Fetch(ctx context.Context, url string) (any, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("options: url is required")
	}

	reqCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("options: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for key, values := range p.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("options: fetch %s: %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("options: fetch %s: unexpected status %s", url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("options: read %s: %w", url, err)
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("options: decode %s: %w", url, err)
	}
	return payload, nil
}
