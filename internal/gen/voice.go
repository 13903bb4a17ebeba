package gen

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const DefaultVoice = "alloy"

// VoiceClient builds text-to-speech locators against the upstream text
// endpoint's audio model.
type VoiceClient struct {
	BaseURL      string
	DefaultVoice string
	Probe        *http.Client
	ProbeTimeout time.Duration
}

func NewVoiceClient(baseURL, defaultVoice string, probeTimeout time.Duration) *VoiceClient {
	if baseURL == "" {
		baseURL = "https://text.pollinations.ai"
	}
	if defaultVoice == "" {
		defaultVoice = DefaultVoice
	}
	if probeTimeout <= 0 {
		probeTimeout = 5 * time.Second
	}
	return &VoiceClient{
		BaseURL:      baseURL,
		DefaultVoice: defaultVoice,
		Probe:        &http.Client{},
		ProbeTimeout: probeTimeout,
	}
}

type VoiceRequest struct {
	Prompt string `json:"prompt"`
	Voice  string `json:"voice"`
}

func (r VoiceRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Prompt, validation.Required.Error("Prompt is required")),
	)
}

type VoiceResult struct {
	AudioURL string `json:"audioUrl"`
	Voice    string `json:"voice"`
}

// Generate constructs the audio locator. The existence probe is logged only;
// its outcome never gates the response.
func (c *VoiceClient) Generate(ctx context.Context, prompt, voice string) (*VoiceResult, error) {
	if err := (VoiceRequest{Prompt: prompt, Voice: voice}).Validate(); err != nil {
		return nil, err
	}
	if voice == "" {
		voice = c.DefaultVoice
	}

	audioURL := fmt.Sprintf("%s/%s?model=openai-audio&voice=%s",
		c.BaseURL, url.PathEscape(prompt), url.QueryEscape(voice))

	c.logProbe(ctx, audioURL)

	return &VoiceResult{AudioURL: audioURL, Voice: voice}, nil
}

func (c *VoiceClient) logProbe(ctx context.Context, rawURL string) {
	ctx, cancel := context.WithTimeout(ctx, c.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return
	}
	resp, err := c.Probe.Do(req)
	if err != nil {
		slog.Debug("voice locator probe failed", "err", err)
		return
	}
	resp.Body.Close()
	slog.Debug("voice locator probe", "status", resp.StatusCode)
}
