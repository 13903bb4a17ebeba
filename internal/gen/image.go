package gen

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// browserUA is sent on probe and proxy requests; the upstream image host
// rejects some non-browser user agents.
const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// ImageClient builds image locators for an upstream prompt-in-path image
// endpoint and picks between a sized/no-watermark variant and the bare
// default via HEAD probes.
type ImageClient struct {
	BaseURL      string
	ProxyPath    string
	Probe        *http.Client
	ProbeTimeout time.Duration
}

func NewImageClient(baseURL string, probeTimeout time.Duration) *ImageClient {
	if baseURL == "" {
		baseURL = "https://image.pollinations.ai"
	}
	if probeTimeout <= 0 {
		probeTimeout = 5 * time.Second
	}
	return &ImageClient{
		BaseURL:      baseURL,
		ProxyPath:    "/api/proxy-image",
		Probe:        &http.Client{},
		ProbeTimeout: probeTimeout,
	}
}

type ImageRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
}

func (r ImageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Prompt, validation.Required.Error("Prompt is required")),
	)
}

type ImageResult struct {
	ImageURL string `json:"imageUrl"`
	ProxyURL string `json:"proxyUrl"`
	Model    string `json:"model"`
	Prompt   string `json:"prompt"`
}

// NormalizePrompt collapses line breaks to spaces and trims the result.
func NormalizePrompt(prompt string) string {
	return strings.TrimSpace(strings.ReplaceAll(prompt, "\n", " "))
}

// Generate normalizes the prompt, probes the candidate locators in order and
// returns the first that answers, falling back to the primary when every
// probe fails. Probe failure is non-fatal: generation proceeds optimistically.
func (c *ImageClient) Generate(ctx context.Context, prompt, model string) (*ImageResult, error) {
	if err := (ImageRequest{Prompt: prompt, Model: model}).Validate(); err != nil {
		return nil, err
	}

	clean := NormalizePrompt(prompt)
	encoded := url.PathEscape(clean)

	primary := fmt.Sprintf("%s/prompt/%s?width=512&height=512&nologo=true", c.BaseURL, encoded)
	secondary := fmt.Sprintf("%s/prompt/%s", c.BaseURL, encoded)

	chosen := primary
	if !c.probe(ctx, primary) {
		slog.Debug("image primary locator failed probe, trying secondary", "prompt", clean)
		if c.probe(ctx, secondary) {
			chosen = secondary
		} else {
			slog.Debug("image probes all failed, keeping primary", "prompt", clean)
		}
	}

	if model == "" {
		model = defaultModel
	}
	return &ImageResult{
		ImageURL: chosen,
		ProxyURL: fmt.Sprintf("%s?url=%s", c.ProxyPath, url.QueryEscape(chosen)),
		Model:    model,
		Prompt:   clean,
	}, nil
}

// probe issues a bounded HEAD existence check. Any error counts as a miss.
func (c *ImageClient) probe(ctx context.Context, rawURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, c.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", browserUA)

	resp, err := c.Probe.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
