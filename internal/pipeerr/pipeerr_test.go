package pipeerr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestClassify_KnownMarkers(t *testing.T) {
	cases := []struct {
		raw  string
		want Category
	}{
		{"googleapi: Error 429: Resource has been exhausted (quota)", RateLimited},
		{"ddgs ratelimit hit for html backend", RateLimited},
		{"API_KEY_INVALID: provided api_key is not valid", Auth},
		{"googleapi: Error 403: Permission denied", Auth},
		{"context deadline exceeded", Timeout},
		{"Get \"https://example.com\": timeout awaiting response headers", Timeout},
		{"candidate was blocked due to SAFETY", SafetyBlocked},
		{"x509: certificate signed by unknown authority", TLS},
		{"tls: handshake failure", TLS},
		{"dial tcp: lookup api.telegram.org: no such host", Network},
		{"connection refused", Network},
		{"something entirely different went wrong", Generic},
	}

	for _, tc := range cases {
		got := Classify(StageSearch, errors.New(tc.raw))
		if got.Category != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.raw, got.Category, tc.want)
		}
	}
}

func TestClassify_NeverLeaksRawText(t *testing.T) {
	const secret = "bot7381-SECRET-TOKEN-abc123"

	// One raw error per category marker; the secret must vanish in all of them.
	raws := []string{
		"quota exceeded for key " + secret,
		"api_key " + secret + " rejected",
		"timeout while calling https://api.telegram.org/" + secret + "/sendMessage",
		"response blocked for request " + secret,
		"ssl verification failed for " + secret,
		"connection reset fetching " + secret,
		"weird failure involving " + secret,
	}

	for _, raw := range raws {
		got := Classify(StageDelivery, errors.New(raw))
		if strings.Contains(got.Error(), secret) {
			t.Errorf("classified message leaks secret: %q", got.Error())
		}
		if strings.Contains(got.Msg, secret) {
			t.Errorf("classified Msg leaks secret: %q", got.Msg)
		}
	}
}

func TestCategoryOf_ThroughWrapChain(t *testing.T) {
	inner := New(StageGeneration, RateLimited, "rate limit or quota exceeded")
	wrapped := fmt.Errorf("generation failed after 3 attempts: %w", inner)

	if got := CategoryOf(wrapped); got != RateLimited {
		t.Errorf("CategoryOf(wrapped) = %s, want %s", got, RateLimited)
	}
	if got := StageOf(wrapped); got != StageGeneration {
		t.Errorf("StageOf(wrapped) = %q, want %q", got, StageGeneration)
	}
}

func TestCategoryOf_ForeignError(t *testing.T) {
	if got := CategoryOf(errors.New("plain")); got != Generic {
		t.Errorf("CategoryOf(plain) = %s, want %s", got, Generic)
	}
	if got := StageOf(errors.New("plain")); got != "" {
		t.Errorf("StageOf(plain) = %q, want empty", got)
	}
}
