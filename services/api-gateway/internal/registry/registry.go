package registry

import (
	"errors"
	"fmt"

	"github.com/satyampathakk/BOOKADATE/pkg/config"
)

var ErrUnknownService = errors.New("unknown service")

// Logical upstream names used by the route table.
const (
	SvcUser    = "user"
	SvcMatch   = "match"
	SvcBooking = "booking"
	SvcVenue   = "venue"
	SvcChat    = "chat"
)

// Registry maps logical service names to base URLs. The table is fixed at
// process start; there is no discovery or health-based removal.
type Registry struct {
	urls map[string]string
}

func New(urls map[string]string) *Registry {
	m := make(map[string]string, len(urls))
	for k, v := range urls {
		m[k] = v
	}
	return &Registry{urls: m}
}

func FromConfig(cfg config.App) *Registry {
	return New(map[string]string{
		SvcUser:    cfg.UserSvcURL,
		SvcMatch:   cfg.MatchSvcURL,
		SvcBooking: cfg.BookingSvcURL,
		SvcVenue:   cfg.VenueSvcURL,
		SvcChat:    cfg.ChatSvcURL,
	})
}

func (r *Registry) Resolve(name string) (string, error) {
	u, ok := r.urls[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownService, name)
	}
	return u, nil
}
