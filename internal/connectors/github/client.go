package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/reposcan/internal/core/domain"
	"github.com/custodia-labs/reposcan/internal/core/ports/driven"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Client wraps the go-github client with throttling and a GraphQL helper.
type Client struct {
	mu            sync.Mutex
	gh            *gh.Client
	cfg           Config
	tokenProvider driven.TokenProvider
	httpClient    *http.Client
	rateLimiter   *RateLimiter
}

// NewClient creates a GitHub API client. The token is fetched lazily on first use;
// a nil provider or an empty token sends unauthenticated requests.
func NewClient(cfg Config, tokenProvider driven.TokenProvider) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		cfg:           cfg,
		tokenProvider: tokenProvider,
		rateLimiter:   NewRateLimiter(cfg.RequestsPerSecond),
	}
}

// NewClientWithHTTPClient creates a GitHub client that sends every request
// through httpClient, which is responsible for any authentication.
func NewClientWithHTTPClient(cfg Config, httpClient *http.Client) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		cfg:         cfg,
		httpClient:  httpClient,
		rateLimiter: NewRateLimiter(cfg.RequestsPerSecond),
	}
}

// ensureClient initializes the go-github client if not already done.
// This is called lazily so we can get the token when needed.
func (c *Client) ensureClient(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gh != nil {
		return nil
	}

	httpClient := c.httpClient
	if httpClient == nil {
		token := ""
		if c.tokenProvider != nil {
			var err error
			if token, err = c.tokenProvider.GetToken(ctx); err != nil {
				return fmt.Errorf("get token: %w", err)
			}
		}
		if token != "" {
			ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
			httpClient = oauth2.NewClient(ctx, ts)
		} else {
			httpClient = &http.Client{}
		}
		httpClient.Timeout = c.cfg.Timeout
	}

	baseURL, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	client := gh.NewClient(httpClient)
	client.BaseURL = baseURL
	c.gh = client

	return nil
}

// RateLimit returns the current rate limit status.
func (c *Client) RateLimit(ctx context.Context) (*gh.RateLimits, error) {
	if err := c.ensureClient(ctx); err != nil {
		return nil, err
	}

	limits, resp, err := c.gh.RateLimit.Get(ctx)
	c.updateRateLimitFromResponse(resp, ResourceCore)
	if err != nil {
		return nil, c.wrapError(err, ResourceCore, "get rate limit")
	}
	for resource, r := range rateWindows(limits) {
		c.rateLimiter.set(resource, r)
	}
	return limits, nil
}

// rateWindows extracts the REST and GraphQL windows from a rate limit report.
func rateWindows(limits *gh.RateLimits) map[string]domain.Quota {
	windows := make(map[string]domain.Quota, 2)
	for resource, r := range map[string]*gh.Rate{ResourceCore: limits.GetCore(), ResourceGraphQL: limits.GetGraphQL()} {
		if r == nil {
			continue
		}
		windows[resource] = domain.Quota{Limit: r.Limit, Remaining: r.Remaining, ResetAt: r.Reset.Time}
	}
	return windows
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage     `json:"data"`
	Errors []GraphQLErrorEntry `json:"errors,omitempty"`
}

// graphql posts query to the GraphQL endpoint and decodes the data member into out.
// NOT_FOUND entries are dropped: GitHub reports unresolvable ids that way and
// returns null in their place. A RATE_LIMITED entry fails the call with a
// RateLimitError; any other error entry fails it with a GraphQLError.
func (c *Client) graphql(ctx context.Context, operation, query string, vars map[string]any, out any) error {
	if err := c.ensureClient(ctx); err != nil {
		return err
	}

	if err := c.rateLimiter.Wait(ctx, ResourceGraphQL); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := c.gh.NewRequest(http.MethodPost, c.cfg.GraphQLURL, graphqlRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}

	var body graphqlResponse
	resp, err := c.gh.Do(ctx, req, &body)
	c.updateRateLimitFromResponse(resp, ResourceGraphQL)
	if err != nil {
		return c.wrapError(err, ResourceGraphQL, operation)
	}

	var fatal []GraphQLErrorEntry
	for _, entry := range body.Errors {
		if entry.Type == GraphQLTypeRateLimited {
			q := c.rateLimiter.Snapshot(ResourceGraphQL)
			return fmt.Errorf("%s: %w", operation, &RateLimitError{
				ResetAt:   q.ResetAt,
				Remaining: q.Remaining,
				Limit:     q.Limit,
			})
		}
		if entry.Type != GraphQLTypeNotFound {
			fatal = append(fatal, entry)
		}
	}
	if len(fatal) > 0 {
		return fmt.Errorf("%s: %w", operation, &GraphQLError{Errors: fatal})
	}

	if len(body.Data) == 0 || string(body.Data) == "null" {
		return fmt.Errorf("%s: response has no data", operation)
	}
	if err := json.Unmarshal(body.Data, out); err != nil {
		return fmt.Errorf("%s: decode data: %w", operation, err)
	}
	return nil
}

// updateRateLimitFromResponse updates the rate limiter from GitHub response headers.
func (c *Client) updateRateLimitFromResponse(resp *gh.Response, resource string) {
	if resp == nil || resp.Response == nil {
		return
	}
	c.rateLimiter.UpdateFromResponse(resp.Response, resource)
}

// wrapError converts go-github errors to our error types. resource names the
// rate limit window the failed call drew on.
func (c *Client) wrapError(err error, resource, operation string) error {
	if err == nil {
		return nil
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		if rlErr := c.rateLimiter.CheckRateLimit(ghErr.Response, resource); rlErr != nil {
			return fmt.Errorf("%s: %w", operation, rlErr)
		}
		apiErr := &APIError{
			StatusCode: ghErr.Response.StatusCode,
			Message:    ghErr.Message,
		}
		if ghErr.Response.Request != nil {
			apiErr.URL = ghErr.Response.Request.URL.String()
		}
		return fmt.Errorf("%s: %w", operation, apiErr)
	}

	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return fmt.Errorf("%s: %w", operation, &RateLimitError{
			ResetAt:   rateLimitErr.Rate.Reset.Time,
			Remaining: rateLimitErr.Rate.Remaining,
			Limit:     rateLimitErr.Rate.Limit,
		})
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		q := c.rateLimiter.Snapshot(resource)
		resetAt := q.ResetAt
		if abuseErr.RetryAfter != nil {
			resetAt = time.Now().Add(*abuseErr.RetryAfter)
		}
		return fmt.Errorf("%s: %w", operation, &RateLimitError{
			ResetAt:   resetAt,
			Remaining: q.Remaining,
			Limit:     q.Limit,
		})
	}

	return fmt.Errorf("%s: %w", operation, err)
}
