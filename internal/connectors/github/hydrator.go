package github

import (
	"context"
	"fmt"

	"github.com/custodia-labs/reposcan/internal/core/domain"
)

const hydrateQuery = `query($ids: [ID!]!) {
  nodes(ids: $ids) {
    ... on Repository {
      id
      nameWithOwner
      isFork
      languages(first: 100) {
        nodes {
          name
        }
      }
    }
  }
}`

type graphLanguage struct {
	Name string `json:"name"`
}

type graphRepository struct {
	ID            string `json:"id"`
	NameWithOwner string `json:"nameWithOwner"`
	IsFork        bool   `json:"isFork"`
	Languages     struct {
		Nodes []*graphLanguage `json:"nodes"`
	} `json:"languages"`
}

type hydrateData struct {
	Nodes []*graphRepository `json:"nodes"`
}

// HydrateRepos loads name, fork flag and languages for up to
// domain.MaxHydrationBatch node ids in one GraphQL call. Ids that no longer
// resolve to a repository yield a nil slot.
func (c *Connector) HydrateRepos(ctx context.Context, ids []string) ([]*domain.Repository, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if len(ids) > domain.MaxHydrationBatch {
		return nil, fmt.Errorf("%w: %d ids", domain.ErrBatchTooLarge, len(ids))
	}
	if len(ids) == 0 {
		return []*domain.Repository{}, nil
	}

	var data hydrateData
	if err := c.client.graphql(ctx, "hydrate repositories", hydrateQuery, map[string]any{"ids": ids}, &data); err != nil {
		return nil, err
	}

	repos := make([]*domain.Repository, len(data.Nodes))
	for i, node := range data.Nodes {
		repos[i] = toRepository(node)
	}
	return repos, nil
}

func toRepository(node *graphRepository) *domain.Repository {
	// Non-repository nodes decode to an empty object.
	if node == nil || node.ID == "" {
		return nil
	}
	repo := &domain.Repository{
		NodeID:        node.ID,
		NameWithOwner: node.NameWithOwner,
		Fork:          node.IsFork,
		Languages:     make([]*domain.Language, len(node.Languages.Nodes)),
	}
	for i, lang := range node.Languages.Nodes {
		if lang != nil {
			repo.Languages[i] = &domain.Language{Name: lang.Name}
		}
	}
	return repo
}
