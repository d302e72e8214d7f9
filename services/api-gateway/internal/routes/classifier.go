package routes

import (
	"net/http"
	"strings"
)

type Access int

const (
	Public Access = iota
	Protected
)

// Classifier decides whether a request must carry a valid bearer token
// before it is proxied. One policy object, independent of the route table,
// so it can be tested on its own.
type Classifier struct {
	publicPrefixes []string
	venuePrefix    string
	adminPrefix    string
}

// DefaultPublicPrefixes are the auth entry points, service health/docs and
// the chat session endpoints that must work before a user holds a token.
var DefaultPublicPrefixes = []string{
	"/auth/login",
	"/auth/signup",
	"/health",
	"/docs",
	"/openapi.json",
	"/chat/match",
	"/chat/sessions",
}

func NewClassifier() *Classifier {
	return &Classifier{
		publicPrefixes: DefaultPublicPrefixes,
		venuePrefix:    "/venues",
		adminPrefix:    "/admin",
	}
}

// Classify applies the rules in order, first match wins.
func (c *Classifier) Classify(method, path string) Access {
	for _, p := range c.publicPrefixes {
		if strings.HasPrefix(path, p) {
			return Public
		}
	}
	// read-only venue browsing is open; writes are not
	if strings.HasPrefix(path, c.venuePrefix) && method == http.MethodGet {
		return Public
	}
	if method == http.MethodOptions {
		return Public
	}
	// admin routes carry their own credentials in the request body and are
	// validated by the user service, not here
	if strings.HasPrefix(path, c.adminPrefix) {
		return Public
	}
	return Protected
}
