package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/reposcan/internal/core/domain"
)

// ListRepos returns the public repositories whose id is greater than after,
// in ascending id order. GitHub serves a fixed page of 100 summaries.
func (c *Connector) ListRepos(ctx context.Context, after int64) ([]domain.RepoSummary, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if err := c.client.ensureClient(ctx); err != nil {
		return nil, err
	}

	if err := c.client.rateLimiter.Wait(ctx, ResourceCore); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	repos, resp, err := c.client.gh.Repositories.ListAll(ctx, &gh.RepositoryListAllOptions{Since: after})
	c.client.updateRateLimitFromResponse(resp, ResourceCore)
	if err != nil {
		return nil, c.client.wrapError(err, ResourceCore, "list repositories")
	}

	summaries := make([]domain.RepoSummary, 0, len(repos))
	for _, repo := range repos {
		if repo == nil {
			continue
		}
		summaries = append(summaries, domain.RepoSummary{
			ID:     repo.GetID(),
			NodeID: repo.GetNodeID(),
			Fork:   repo.GetFork(),
		})
	}
	return summaries, nil
}
