package predict

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEndpointPredictor_ScoresPerLine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != "text/csv" {
			t.Fatalf("Content-Type = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if got := string(body); got != "great movie\nterrible movie" {
			t.Fatalf("body = %q", got)
		}
		_, _ = io.WriteString(w, "0.91\n0.07\n")
	}))
	defer srv.Close()

	p := &EndpointPredictor{EndpointURL: srv.URL}
	scores, err := p.Predict(context.Background(), []string{"great movie", "terrible movie"})
	if err != nil {
		t.Fatalf("Predict error: %v", err)
	}
	if diff := cmp.Diff([]float64{0.91, 0.07}, scores); diff != "" {
		t.Fatalf("scores mismatch (-want +got):\n%s", diff)
	}
}

func TestEndpointPredictor_LabelScorePairs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "1,0.91\r\n0,0.07\r\n")
	}))
	defer srv.Close()

	p := &EndpointPredictor{EndpointURL: srv.URL}
	scores, err := p.Predict(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Predict error: %v", err)
	}
	if diff := cmp.Diff([]float64{0.91, 0.07}, scores); diff != "" {
		t.Fatalf("scores mismatch (-want +got):\n%s", diff)
	}
}

func TestEndpointPredictor_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "0.5\n")
	}))
	defer srv.Close()

	p := &EndpointPredictor{EndpointURL: srv.URL}
	_, err := p.Predict(context.Background(), []string{"a", "b"})
	if err == nil || !strings.Contains(err.Error(), "1 scores for 2 instances") {
		t.Fatalf("expected count mismatch error, got %v", err)
	}
}

func TestEndpointPredictor_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := &EndpointPredictor{EndpointURL: srv.URL}
	if _, err := p.Predict(context.Background(), []string{"a"}); err == nil {
		t.Fatalf("expected error for 503")
	}
}

func TestEndpointPredictor_BadScore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "not-a-number\n")
	}))
	defer srv.Close()

	p := &EndpointPredictor{EndpointURL: srv.URL}
	if _, err := p.Predict(context.Background(), []string{"a"}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestEndpointPredictor_EmptyBatch(t *testing.T) {
	p := &EndpointPredictor{EndpointURL: "http://unused.local"}
	scores, err := p.Predict(context.Background(), nil)
	if err != nil || scores != nil {
		t.Fatalf("empty batch should be a no-op, got %v, %v", scores, err)
	}
}

func TestConstantPredictor(t *testing.T) {
	p := &ConstantPredictor{Score: 0.5}
	scores, err := p.Predict(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Predict error: %v", err)
	}
	if diff := cmp.Diff([]float64{0.5, 0.5, 0.5}, scores); diff != "" {
		t.Fatalf("scores mismatch (-want +got):\n%s", diff)
	}
}
