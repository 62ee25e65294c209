// Package pipeerr carries sanitized, categorized errors between pipeline
// stages. Provider error text is inspected exactly once, at the boundary
// where the failure happened, and replaced with a fixed message so that
// credentials or internal paths embedded in provider payloads never reach
// logs or the orchestrator.
package pipeerr

import (
	"errors"
	"fmt"
	"strings"
)

// Category is the coarse failure class a stage reports upward.
type Category int

const (
	Generic Category = iota
	RateLimited
	Auth
	Timeout
	SafetyBlocked
	Network
	TLS
	EmptyResult
)

func (c Category) String() string {
	switch c {
	case RateLimited:
		return "rate_limited"
	case Auth:
		return "auth"
	case Timeout:
		return "timeout"
	case SafetyBlocked:
		return "safety_blocked"
	case Network:
		return "network"
	case TLS:
		return "tls"
	case EmptyResult:
		return "empty_result"
	default:
		return "generic"
	}
}

// Stage names used across the pipeline.
const (
	StageSearch     = "search"
	StageGeneration = "generation"
	StageDelivery   = "telegram"
)

// Error is the only error type allowed to cross a stage boundary.
type Error struct {
	Stage    string
	Category Category
	Msg      string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Msg)
}

func New(stage string, cat Category, msg string) *Error {
	return &Error{Stage: stage, Category: cat, Msg: msg}
}

// CategoryOf extracts the category from err, walking wrap chains. Errors
// that never went through this package count as Generic.
func CategoryOf(err error) Category {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Category
	}
	return Generic
}

// StageOf extracts the originating stage name, or "" for foreign errors.
func StageOf(err error) string {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Stage
	}
	return ""
}

// Classify maps a raw provider error to a category with a fixed message.
// The raw text is matched against known markers and then discarded.
func Classify(stage string, err error) *Error {
	raw := strings.ToLower(err.Error())

	switch {
	case strings.Contains(raw, "ratelimit") || strings.Contains(raw, "quota") || strings.Contains(raw, "429"):
		return New(stage, RateLimited, "rate limit or quota exceeded")
	case strings.Contains(raw, "api_key") || strings.Contains(raw, "api key") ||
		strings.Contains(raw, "403") || strings.Contains(raw, "401") ||
		strings.Contains(raw, "permission") || strings.Contains(raw, "unauthorized"):
		return New(stage, Auth, "credentials are invalid or lack permission")
	case strings.Contains(raw, "timeout") || strings.Contains(raw, "deadline"):
		return New(stage, Timeout, "request timed out")
	case strings.Contains(raw, "safety") || strings.Contains(raw, "blocked"):
		return New(stage, SafetyBlocked, "response was blocked by safety filters")
	case strings.Contains(raw, "tls") || strings.Contains(raw, "ssl") || strings.Contains(raw, "certificate"):
		return New(stage, TLS, "certificate verification failed")
	case strings.Contains(raw, "connection") || strings.Contains(raw, "dns") || strings.Contains(raw, "no such host"):
		return New(stage, Network, "failed to reach the service")
	default:
		return New(stage, Generic, "unexpected failure")
	}
}
