package gen

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

// probeServer answers HEAD probes: 200 for the sized primary variant when
// primaryOK, 200 for the bare secondary when secondaryOK.
func probeServer(t *testing.T, primaryOK, secondaryOK bool, calls *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method != http.MethodHead {
			t.Errorf("probe must use HEAD, got %s", r.Method)
		}
		isPrimary := r.URL.Query().Get("width") == "512"
		if (isPrimary && primaryOK) || (!isPrimary && secondaryOK) {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
}

func TestImageGenerate_NormalizesPromptAndBuildsPrimary(t *testing.T) {
	var calls atomic.Int64
	srv := probeServer(t, true, true, &calls)
	defer srv.Close()

	c := NewImageClient(srv.URL, time.Second)
	res, err := c.Generate(context.Background(), "a cat\nin a hat", "dall-e-3")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.Prompt != "a cat in a hat" {
		t.Fatalf("prompt = %q, want newline collapsed and trimmed", res.Prompt)
	}
	wantPrimary := fmt.Sprintf("%s/prompt/%s?width=512&height=512&nologo=true", srv.URL, url.PathEscape("a cat in a hat"))
	if res.ImageURL != wantPrimary {
		t.Fatalf("imageUrl = %q, want %q", res.ImageURL, wantPrimary)
	}
	wantProxy := "/api/proxy-image?url=" + url.QueryEscape(wantPrimary)
	if res.ProxyURL != wantProxy {
		t.Fatalf("proxyUrl = %q, want %q", res.ProxyURL, wantProxy)
	}
	if res.Model != "dall-e-3" {
		t.Fatalf("model = %q", res.Model)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single probe when primary answers, got %d", calls.Load())
	}
}

func TestImageGenerate_FallsBackToSecondary(t *testing.T) {
	var calls atomic.Int64
	srv := probeServer(t, false, true, &calls)
	defer srv.Close()

	c := NewImageClient(srv.URL, time.Second)
	res, err := c.Generate(context.Background(), "sunset", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	wantSecondary := srv.URL + "/prompt/sunset"
	if res.ImageURL != wantSecondary {
		t.Fatalf("imageUrl = %q, want secondary %q", res.ImageURL, wantSecondary)
	}
	if res.Model != "default" {
		t.Fatalf("model = %q, want default", res.Model)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected two probes, got %d", calls.Load())
	}
}

func TestImageGenerate_AllProbesFailKeepsPrimary(t *testing.T) {
	var calls atomic.Int64
	srv := probeServer(t, false, false, &calls)
	defer srv.Close()

	c := NewImageClient(srv.URL, time.Second)
	res, err := c.Generate(context.Background(), "sunset", "")
	if err != nil {
		t.Fatalf("probe failure must be non-fatal: %v", err)
	}
	wantPrimary := srv.URL + "/prompt/sunset?width=512&height=512&nologo=true"
	if res.ImageURL != wantPrimary {
		t.Fatalf("imageUrl = %q, want primary %q", res.ImageURL, wantPrimary)
	}
}

func TestImageGenerate_ProbeErrorIsNonFatal(t *testing.T) {
	// closed server: every probe errors at dial time
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	c := NewImageClient(base, 200*time.Millisecond)
	res, err := c.Generate(context.Background(), "sunset", "")
	if err != nil {
		t.Fatalf("probe error must be non-fatal: %v", err)
	}
	if res.ImageURL != base+"/prompt/sunset?width=512&height=512&nologo=true" {
		t.Fatalf("imageUrl = %q, want primary", res.ImageURL)
	}
}

func TestImageGenerate_EmptyPromptNeverProbes(t *testing.T) {
	var calls atomic.Int64
	srv := probeServer(t, true, true, &calls)
	defer srv.Close()

	_, err := NewImageClient(srv.URL, time.Second).Generate(context.Background(), "", "dall-e-3")
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected zero probes, got %d", calls.Load())
	}
}

func TestNormalizePrompt(t *testing.T) {
	cases := []struct{ in, want string }{
		{"a cat\nin a hat", "a cat in a hat"},
		{"  padded  ", "padded"},
		{"one\ntwo\nthree", "one two three"},
		{"\nleading and trailing\n", "leading and trailing"},
	}
	for _, tc := range cases {
		if got := NormalizePrompt(tc.in); got != tc.want {
			t.Fatalf("NormalizePrompt(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
