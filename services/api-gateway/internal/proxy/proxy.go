package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

var ErrUpstreamUnavailable = errors.New("service unavailable")

// hop-scoped headers never forwarded to an upstream
var dropHeaders = map[string]bool{
	"Host":           true,
	"Content-Length": true,
}

// Result is the upstream's answer, ready to be written back. Exactly one of
// JSON / Body is meaningful: JSON is set when the upstream declared a JSON
// content type (re-serialized on write), Body carries everything else
// byte-for-byte.
type Result struct {
	Status      int
	ContentType string
	JSON        any
	Body        []byte
}

func (r *Result) IsJSON() bool { return r.JSON != nil }

// Proxy forwards requests to upstream services. Bodies are buffered in
// memory; payloads on this platform are small. No retries.
type Proxy struct {
	client *http.Client
}

func New(connectTimeout, timeout time.Duration) *Proxy {
	return NewWithClient(&http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
		},
	})
}

func NewWithClient(c *http.Client) *Proxy {
	return &Proxy{client: c}
}

// Client exposes the underlying HTTP client so the token verifier can share
// the same timeout configuration.
func (p *Proxy) Client() *http.Client { return p.client }

// Forward replays r against base+path, preserving method, query, body and
// all headers except the hop-scoped ones. Connection errors and timeouts
// surface as ErrUpstreamUnavailable.
func (p *Proxy) Forward(ctx context.Context, base, path string, r *http.Request) (*Result, error) {
	var body io.Reader
	if r.Body != nil {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		if len(b) > 0 {
			body = bytes.NewReader(b)
		}
	}

	target := base + path
	if q := r.URL.RawQuery; q != "" {
		target += "?" + q
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, err
	}
	for k, vals := range r.Header {
		if dropHeaders[http.CanonicalHeaderKey(k)] {
			continue
		}
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	res, err := p.client.Do(req)
	if err != nil {
		return nil, ErrUpstreamUnavailable
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, ErrUpstreamUnavailable
	}

	out := &Result{Status: res.StatusCode, ContentType: res.Header.Get("Content-Type")}
	if strings.Contains(out.ContentType, "application/json") {
		var parsed any
		if json.Unmarshal(raw, &parsed) == nil {
			out.JSON = parsed
		} else {
			// broken JSON from an upstream is wrapped, not fatal
			out.JSON = map[string]any{"detail": string(raw)}
		}
		return out, nil
	}
	out.Body = raw
	return out, nil
}
