package errors

import (
	"fmt"
	"testing"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NewNotFoundError("movie", "Inception"), 404},
		{"insufficient candidates", NewInsufficientCandidatesError(12, 7), 404},
		{"upstream", NewUpstreamError("metadata service returned 503", 503, nil), 503},
		{"upstream with cause", NewUpstreamError("unreachable", 502, nil).WithCause(fmt.Errorf("dial tcp")), 502},
		{"cache", NewCacheError("set failed", "set", "reviews:tt1", fmt.Errorf("conn reset")), 500},
		{"wrapped not found", fmt.Errorf("resolving bundle: %w", NewNotFoundError("movie", "Nope")), 404},
		{"plain error", fmt.Errorf("boom"), 500},
	}
	for _, tc := range cases {
		if got := StatusCode(tc.err); got != tc.want {
			t.Errorf("%s: StatusCode = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestTypeChecks(t *testing.T) {
	notFound := NewNotFoundError("movie", "Inception")
	if !IsNotFound(notFound) {
		t.Error("IsNotFound rejected NotFoundError")
	}
	if !IsNotFound(fmt.Errorf("wrapped: %w", notFound)) {
		t.Error("IsNotFound rejected wrapped NotFoundError")
	}
	if IsUpstream(notFound) || IsInsufficientCandidates(notFound) {
		t.Error("NotFoundError matched an unrelated check")
	}

	upstream := NewUpstreamError("bad gateway", 502, nil).WithCause(fmt.Errorf("dial tcp"))
	if !IsUpstream(upstream) {
		t.Error("IsUpstream rejected UpstreamError after WithCause")
	}

	if !IsInsufficientCandidates(NewInsufficientCandidatesError(12, 3)) {
		t.Error("IsInsufficientCandidates rejected InsufficientCandidatesError")
	}
}
