package authn

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// ErrUpstreamUnavailable means the identity service could not be reached at
// all. The pipeline maps it to 503, as opposed to a plain rejection (401).
var ErrUpstreamUnavailable = errors.New("auth service unavailable")

// DeniedError carries the identity service's own rejection detail so the
// pipeline can relay it verbatim.
type DeniedError struct {
	Detail string
}

func (e *DeniedError) Error() string { return e.Detail }

// Claims are the identity fields returned by the user service for a valid
// bearer token. They are transient; the gateway never stores them.
type Claims struct {
	SubjectID string `json:"user_id"`
	Email     string `json:"email"`
	Valid     bool   `json:"token_valid"`
}

type Verifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

// HTTPVerifier validates tokens against the user service's
// /auth/verify-token endpoint. Every protected request re-verifies; there
// is no local cache.
type HTTPVerifier struct {
	client  *http.Client
	userURL string
}

func NewHTTPVerifier(client *http.Client, userURL string) *HTTPVerifier {
	return &HTTPVerifier{client: client, userURL: userURL}
}

func (v *HTTPVerifier) Verify(ctx context.Context, token string) (*Claims, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.userURL+"/auth/verify-token", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := v.client.Do(req)
	if err != nil {
		return nil, ErrUpstreamUnavailable
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode != http.StatusOK {
		detail := "Invalid token"
		var payload struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(body, &payload) == nil && payload.Detail != "" {
			detail = payload.Detail
		}
		return nil, &DeniedError{Detail: detail}
	}

	var claims Claims
	if err := json.Unmarshal(body, &claims); err != nil {
		return nil, &DeniedError{Detail: "Invalid token"}
	}
	return &claims, nil
}
