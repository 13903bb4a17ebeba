package gen

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const defaultModel = "default"

// TextClient generates chat replies against an upstream text endpoint that
// takes the prompt as a path segment and answers with a plain-text body.
type TextClient struct {
	BaseURL string
	Client  *http.Client
}

func NewTextClient(baseURL string, timeout time.Duration) *TextClient {
	if baseURL == "" {
		baseURL = "https://text.pollinations.ai"
	}
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &TextClient{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
	}
}

type TextRequest struct {
	Message string `json:"message"`
	Model   string `json:"model"`
}

func (r TextRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Message, validation.Required.Error("Message is required")),
	)
}

type TextResult struct {
	Response string `json:"response"`
	Model    string `json:"model"`
}

// Generate forwards the message upstream. The model identifier is
// pass-through metadata only; the provider ignores it.
func (c *TextClient) Generate(ctx context.Context, message, model string) (*TextResult, error) {
	if err := (TextRequest{Message: message, Model: model}).Validate(); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/%s", c.BaseURL, url.PathEscape(message))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("text generate: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("text generate: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	if model == "" {
		model = defaultModel
	}
	return &TextResult{Response: string(body), Model: model}, nil
}
