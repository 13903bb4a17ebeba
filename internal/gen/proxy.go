package gen

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ProxyClient re-fetches an external image so the browser can render and
// download it from the same origin.
type ProxyClient struct {
	Client *http.Client
}

func NewProxyClient(timeout time.Duration) *ProxyClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ProxyClient{Client: &http.Client{Timeout: timeout}}
}

type Proxied struct {
	Body        []byte
	ContentType string
}

// Fetch downloads the resource with browser-like headers under a bounded
// timeout. A non-success status or an empty body is an UpstreamError;
// timeout-shaped failures stay classifiable via IsTimeout.
func (c *ProxyClient) Fetch(ctx context.Context, rawURL string) (*Proxied, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUA)
	req.Header.Set("Accept", "image/webp,image/apng,image/*,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("proxy fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("proxy fetch: read body: %w", err)
	}
	if len(body) == 0 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: "received empty image data"}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	return &Proxied{Body: body, ContentType: contentType}, nil
}
