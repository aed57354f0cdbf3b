package review

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/davin/movierec-go/pkg/errors"
	"go.uber.org/zap"
)

type fakeClassifier struct {
	labels map[string]string
	err    error
	calls  int
}

func (f *fakeClassifier) Classify(_ context.Context, text string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if label, ok := f.labels[text]; ok {
		return label, nil
	}
	return LabelBad, nil
}

const reviewsHTML = `<html><body>
<div class="lister-item">
  <div class="text show-more__control">Great movie, loved it.</div>
</div>
<div class="lister-item">
  <div class="text show-more__control">Terrible pacing.</div>
</div>
<div class="lister-item">
  <div class="text show-more__control">Review three.</div>
</div>
<div class="lister-item">
  <div class="text show-more__control">Review four.</div>
</div>
<div class="lister-item">
  <div class="text show-more__control">Review five.</div>
</div>
<div class="lister-item">
  <div class="text show-more__control">Review six, past the cap.</div>
</div>
<div class="lister-item">
  <div class="text show-more__control">Review seven, past the cap.</div>
</div>
</body></html>`

func newReviewServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/title/tt1375666/reviews" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFetchReviews(t *testing.T) {
	server := newReviewServer(t, http.StatusOK, reviewsHTML)
	classifier := &fakeClassifier{labels: map[string]string{
		"Great movie, loved it.": LabelGood,
		"Terrible pacing.":       LabelBad,
	}}

	svc := NewServiceWithBaseURL(server.URL, classifier, nil, zap.NewNop())

	reviews, err := svc.FetchReviews(context.Background(), "tt1375666")
	if err != nil {
		t.Fatalf("FetchReviews returned error: %v", err)
	}

	if len(reviews) != 5 {
		t.Fatalf("got %d reviews, want 5 (capped)", len(reviews))
	}
	if reviews[0].Text != "Great movie, loved it." || reviews[0].Label != LabelGood {
		t.Errorf("first review = %+v", reviews[0])
	}
	if reviews[1].Label != LabelBad {
		t.Errorf("second review label = %q, want Bad", reviews[1].Label)
	}
	if classifier.calls != 5 {
		t.Errorf("classifier called %d times, want 5", classifier.calls)
	}
}

func TestFetchReviewsClassifierFailureDegrades(t *testing.T) {
	server := newReviewServer(t, http.StatusOK, reviewsHTML)
	classifier := &fakeClassifier{err: fmt.Errorf("provider down")}

	svc := NewServiceWithBaseURL(server.URL, classifier, nil, zap.NewNop())

	reviews, err := svc.FetchReviews(context.Background(), "tt1375666")
	if err != nil {
		t.Fatalf("FetchReviews returned error: %v", err)
	}
	if len(reviews) != 5 {
		t.Fatalf("got %d reviews, want 5", len(reviews))
	}
	for _, review := range reviews {
		if review.Label != "" {
			t.Fatalf("expected empty label on classifier failure, got %q", review.Label)
		}
	}
}

func TestFetchReviewsNoClassifier(t *testing.T) {
	server := newReviewServer(t, http.StatusOK, reviewsHTML)
	svc := NewServiceWithBaseURL(server.URL, nil, nil, zap.NewNop())

	reviews, err := svc.FetchReviews(context.Background(), "tt1375666")
	if err != nil {
		t.Fatalf("FetchReviews returned error: %v", err)
	}
	if len(reviews) != 5 {
		t.Fatalf("got %d reviews, want 5", len(reviews))
	}
}

func TestFetchReviewsUpstreamFailure(t *testing.T) {
	server := newReviewServer(t, http.StatusServiceUnavailable, "")
	svc := NewServiceWithBaseURL(server.URL, nil, nil, zap.NewNop())

	if _, err := svc.FetchReviews(context.Background(), "tt1375666"); !errors.IsUpstream(err) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
}

func TestNormalizeLabel(t *testing.T) {
	cases := []struct {
		answer string
		want   string
	}{
		{"Good", LabelGood},
		{"good.", LabelGood},
		{" The sentiment is Good", LabelGood},
		{"Bad", LabelBad},
		{"negative", LabelBad},
		{"", LabelBad},
	}
	for _, tc := range cases {
		if got := normalizeLabel(tc.answer); got != tc.want {
			t.Errorf("normalizeLabel(%q) = %q, want %q", tc.answer, got, tc.want)
		}
	}
}
