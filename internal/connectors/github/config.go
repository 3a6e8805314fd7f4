package github

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/reposcan/internal/core/domain"
)

const (
	// DefaultBaseURL is the REST endpoint of github.com.
	DefaultBaseURL = "https://api.github.com/"

	// DefaultGraphQLURL is the GraphQL endpoint of github.com.
	DefaultGraphQLURL = "https://api.github.com/graphql"
)

// Config holds the connection settings of a GitHub forge.
type Config struct {
	// BaseURL is the REST API root. For GitHub Enterprise use
	// https://<host>/api/v3/. Default: DefaultBaseURL.
	BaseURL string

	// GraphQLURL is the absolute GraphQL endpoint. For GitHub Enterprise use
	// https://<host>/api/graphql. Default: DefaultGraphQLURL.
	GraphQLURL string

	// Timeout bounds every HTTP request. Default: DefaultTimeout.
	Timeout time.Duration

	// RequestsPerSecond is the proactive throttle. Default: ProactiveRate.
	RequestsPerSecond float64
}

// withDefaults returns a copy of c with empty fields filled in.
func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(c.BaseURL, "/") {
		c.BaseURL += "/"
	}
	if c.GraphQLURL == "" {
		c.GraphQLURL = DefaultGraphQLURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = ProactiveRate
	}
	return c
}

// Validate checks that both endpoints are absolute URLs.
func (c Config) Validate() error {
	c = c.withDefaults()
	for name, raw := range map[string]string{"base url": c.BaseURL, "graphql url": c.GraphQLURL} {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%w: github %s: %w", domain.ErrInvalidInput, name, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: github %s %q is not absolute", domain.ErrInvalidInput, name, raw)
		}
	}
	return nil
}
