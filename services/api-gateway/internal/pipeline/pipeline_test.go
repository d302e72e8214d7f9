package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/satyampathakk/BOOKADATE/services/api-gateway/internal/authn"
	"github.com/satyampathakk/BOOKADATE/services/api-gateway/internal/proxy"
	"github.com/satyampathakk/BOOKADATE/services/api-gateway/internal/registry"
	"github.com/satyampathakk/BOOKADATE/services/api-gateway/internal/routes"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	calls  atomic.Int64
	claims *authn.Claims
	err    error
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (*authn.Claims, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	if f.claims != nil {
		return f.claims, nil
	}
	return &authn.Claims{SubjectID: "u-1", Email: "a@example.com", Valid: true}, nil
}

type upstream struct {
	*httptest.Server
	hits     atomic.Int64
	lastPath atomic.Value
}

func newUpstream(t *testing.T) *upstream {
	u := &upstream{}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.hits.Add(1)
		u.lastPath.Store(r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"path":    r.URL.Path,
			"user_id": r.Header.Get("X-User-Id"),
		})
	}))
	t.Cleanup(u.Server.Close)
	return u
}

func newGateway(t *testing.T, v authn.Verifier, urls map[string]string) http.Handler {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	p := New(registry.New(urls), routes.NewClassifier(), v, proxy.New(time.Second, 5*time.Second), log)
	return p.Router()
}

func do(h http.Handler, method, path string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthNeverProxiedNeverVerified(t *testing.T) {
	v := &fakeVerifier{}
	up := newUpstream(t)
	h := newGateway(t, v, map[string]string{registry.SvcUser: up.URL})

	w := do(h, "GET", "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"gateway":"healthy"`) {
		t.Errorf("body = %s", w.Body.String())
	}
	if v.calls.Load() != 0 || up.hits.Load() != 0 {
		t.Errorf("health must not touch verifier (%d) or upstream (%d)", v.calls.Load(), up.hits.Load())
	}
}

func TestPublicRouteSkipsVerifier(t *testing.T) {
	v := &fakeVerifier{}
	up := newUpstream(t)
	h := newGateway(t, v, map[string]string{registry.SvcUser: up.URL})

	w := do(h, "POST", "/auth/login", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if v.calls.Load() != 0 {
		t.Errorf("verifier called %d times for public route", v.calls.Load())
	}
	if up.hits.Load() != 1 {
		t.Errorf("upstream hits = %d, want 1", up.hits.Load())
	}
}

func TestProtectedWithoutTokenShortCircuits(t *testing.T) {
	v := &fakeVerifier{}
	up := newUpstream(t)
	h := newGateway(t, v, map[string]string{registry.SvcMatch: up.URL})

	w := do(h, "POST", "/matches/find", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Authorization required") {
		t.Errorf("body = %s", w.Body.String())
	}
	if up.hits.Load() != 0 {
		t.Error("request reached upstream despite missing token")
	}
}

func TestProtectedWithInvalidTokenShortCircuits(t *testing.T) {
	v := &fakeVerifier{err: &authn.DeniedError{Detail: "Invalid token"}}
	up := newUpstream(t)
	h := newGateway(t, v, map[string]string{registry.SvcMatch: up.URL})

	w := do(h, "POST", "/matches/find", map[string]string{"Authorization": "Bearer bad"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid token") {
		t.Errorf("body = %s", w.Body.String())
	}
	if up.hits.Load() != 0 {
		t.Error("request reached upstream despite rejected token")
	}
}

func TestVerifierOutageMapsTo503(t *testing.T) {
	v := &fakeVerifier{err: authn.ErrUpstreamUnavailable}
	up := newUpstream(t)
	h := newGateway(t, v, map[string]string{registry.SvcBooking: up.URL})

	w := do(h, "POST", "/bookings/create", map[string]string{"Authorization": "Bearer any"})
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	if up.hits.Load() != 0 {
		t.Error("request reached upstream during auth outage")
	}
}

func TestProtectedWithValidTokenForwardsIdentity(t *testing.T) {
	v := &fakeVerifier{}
	up := newUpstream(t)
	h := newGateway(t, v, map[string]string{registry.SvcMatch: up.URL})

	w := do(h, "GET", "/matches/user/u-1", map[string]string{"Authorization": "Bearer good"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if v.calls.Load() != 1 {
		t.Errorf("verifier calls = %d, want 1", v.calls.Load())
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["user_id"] != "u-1" {
		t.Errorf("upstream did not receive identity header: %v", body)
	}
}

func TestChatPrefixStripped(t *testing.T) {
	v := &fakeVerifier{}
	up := newUpstream(t)
	h := newGateway(t, v, map[string]string{registry.SvcChat: up.URL})

	w := do(h, "GET", "/chat/sessions/s-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := up.lastPath.Load(); got != "/sessions/s-1" {
		t.Errorf("upstream path = %v, want /sessions/s-1", got)
	}
}

func TestUpstreamDownMapsTo503(t *testing.T) {
	v := &fakeVerifier{}
	up := newUpstream(t)
	url := up.URL
	up.Server.Close()
	h := newGateway(t, v, map[string]string{registry.SvcVenue: url})

	w := do(h, "GET", "/venues/1", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Service unavailable") {
		t.Errorf("body = %s", w.Body.String())
	}
}
