package github

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/reposcan/internal/core/domain"
	"github.com/custodia-labs/reposcan/internal/core/ports/driven"
	"github.com/custodia-labs/reposcan/internal/core/ports/driving"
)

// Name is the forge identifier and default source key.
const Name = "github"

// Ensure Connector implements the interface.
var (
	_ driven.Forge          = (*Connector)(nil)
	_ driving.QuotaReporter = (*Connector)(nil)
)

// Connector crawls GitHub: REST enumeration by numeric id, GraphQL hydration
// and GraphQL content probes.
type Connector struct {
	client *Client
	mu     sync.Mutex
	closed bool
}

// New creates a new GitHub connector.
func New(cfg Config, tokenProvider driven.TokenProvider) *Connector {
	return &Connector{client: NewClient(cfg, tokenProvider)}
}

// NewWithClient creates a connector around an existing client.
func NewWithClient(client *Client) *Connector {
	return &Connector{client: client}
}

// Name returns the forge identifier.
func (c *Connector) Name() string {
	return Name
}

// Client returns the underlying API client.
func (c *Connector) Client() *Client {
	return c.client
}

// Validate checks that the API is reachable and the token, if any, is accepted.
func (c *Connector) Validate(ctx context.Context) error {
	if err := c.checkOpen(); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if _, err := c.client.RateLimit(ctx); err != nil {
		if IsUnauthorized(err) {
			return domain.ErrAuthInvalid
		}
		return fmt.Errorf("validate github: %w", err)
	}
	return nil
}

// Quotas returns the REST ("core") and GraphQL rate limit windows.
func (c *Connector) Quotas(ctx context.Context) (map[string]domain.Quota, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}

	limits, err := c.client.RateLimit(ctx)
	if err != nil {
		return nil, err
	}

	return rateWindows(limits), nil
}

// Close releases resources. Later calls fail with domain.ErrForgeClosed.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *Connector) checkOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrForgeClosed
	}
	return nil
}
