package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

func newRequest(t *testing.T, method, target string, body []byte) *http.Request {
	t.Helper()
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	return r
}

func TestForwardJSONRoundTrip(t *testing.T) {
	payload := map[string]any{"match_id": float64(7), "status": "pending", "tags": []any{"a", "b"}}

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in map[string]any
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("upstream decode: %v", err)
		}
		if !reflect.DeepEqual(in, payload) {
			t.Errorf("request body changed in transit: %v", in)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(in)
	}))
	defer upstream.Close()

	body, _ := json.Marshal(payload)
	req := newRequest(t, "POST", "/bookings/create?source=test", body)
	req.Header.Set("Content-Type", "application/json")

	res, err := New(time.Second, 5*time.Second).Forward(context.Background(), upstream.URL, "/bookings/create", req)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if res.Status != http.StatusCreated {
		t.Fatalf("status = %d, want 201", res.Status)
	}
	if !res.IsJSON() {
		t.Fatal("expected JSON result")
	}
	if !reflect.DeepEqual(res.JSON, payload) {
		t.Errorf("response body changed in transit: %v", res.JSON)
	}
}

func TestForwardPreservesHeadersAndQueryStripsHopHeaders(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("X-Custom"); got != "yes" {
			t.Errorf("X-Custom = %q", got)
		}
		if got := r.URL.RawQuery; got != "page=2&size=10" {
			t.Errorf("query = %q", got)
		}
		// the inbound Host header must not leak through
		if r.Host == "gateway.internal" {
			t.Error("inbound Host header was forwarded")
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer upstream.Close()

	req := newRequest(t, "GET", "/venues?page=2&size=10", nil)
	req.Host = "gateway.internal"
	req.Header.Set("Authorization", "Bearer tok-123")
	req.Header.Set("X-Custom", "yes")

	res, err := New(time.Second, 5*time.Second).Forward(context.Background(), upstream.URL, "/venues", req)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if res.Status != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", res.Status)
	}
}

func TestForwardWrapsMalformedUpstreamJSON(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("oops not json"))
	}))
	defer upstream.Close()

	req := newRequest(t, "GET", "/matches/1", nil)
	res, err := New(time.Second, 5*time.Second).Forward(context.Background(), upstream.URL, "/matches/1", req)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	want := map[string]any{"detail": "oops not json"}
	if !reflect.DeepEqual(res.JSON, want) {
		t.Errorf("JSON = %v, want %v", res.JSON, want)
	}
}

func TestForwardPassesThroughNonJSON(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{0x89, 0x50, 0x4e, 0x47})
	}))
	defer upstream.Close()

	req := newRequest(t, "GET", "/users/photo/1", nil)
	res, err := New(time.Second, 5*time.Second).Forward(context.Background(), upstream.URL, "/users/photo/1", req)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if res.IsJSON() {
		t.Fatal("binary response must not be treated as JSON")
	}
	if res.ContentType != "image/png" {
		t.Errorf("content type = %q", res.ContentType)
	}
	if !bytes.Equal(res.Body, []byte{0x89, 0x50, 0x4e, 0x47}) {
		t.Errorf("body altered: %v", res.Body)
	}
}

func TestForwardConnectionRefused(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close() // nothing listening anymore

	req := newRequest(t, "GET", "/matches/1", nil)
	_, err := New(time.Second, 2*time.Second).Forward(context.Background(), upstream.URL, "/matches/1", req)
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("err = %v, want ErrUpstreamUnavailable", err)
	}
}
