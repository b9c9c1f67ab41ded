package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestGETParsesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Expected default header, got %q", r.Header.Get("Accept"))
		}
		w.Write([]byte(`{"value":42}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithHeader("Accept", "application/json"))
	resp, err := c.GET(context.Background(), "/data", nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var body struct {
		Value int `json:"value"`
	}
	if err := resp.ParseJSON(&body); err != nil {
		t.Fatalf("Expected parseable JSON, got %v", err)
	}
	if body.Value != 42 {
		t.Errorf("Expected 42, got %d", body.Value)
	}
}

func TestPOSTSendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Expected JSON content type, got %q", r.Header.Get("Content-Type"))
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.POST(context.Background(), "/orders", map[string]string{"side": "bid"}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
}

func TestNon2xxIsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.GET(context.Background(), "/", nil)
	if err == nil {
		t.Fatal("Expected error for 429")
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %d", statusErr.StatusCode)
	}
	if errors.Is(err, ErrUnavailable) {
		t.Error("Response-level errors must not carry ErrUnavailable")
	}
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.GET(context.Background(), "/", nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable, got %v", err)
	}
}

func TestRetryRecoversFromTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			// Drop the first connection mid-request.
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Fatal("Expected hijackable connection")
			}
			conn, _, _ := hj.Hijack()
			conn.Close()
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithRetry(5*time.Second))
	_, err := c.GET(context.Background(), "/", nil)
	if err != nil {
		t.Fatalf("Expected retry to recover, got %v", err)
	}
	if calls.Load() < 2 {
		t.Errorf("Expected at least 2 attempts, got %d", calls.Load())
	}
}

func TestRetryDoesNotRepeatStatusErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithRetry(5*time.Second))
	_, err := c.GET(context.Background(), "/", nil)
	if err == nil {
		t.Fatal("Expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("Expected exactly 1 attempt for a 400, got %d", calls.Load())
	}
}
