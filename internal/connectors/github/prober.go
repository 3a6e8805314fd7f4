package github

import (
	"context"
	"fmt"
)

const probeQuery = `query($id: ID!, $expression: String!) {
  node(id: $id) {
    ... on Repository {
      object(expression: $expression) {
        __typename
      }
    }
  }
}`

type probeData struct {
	Node *struct {
		Object *struct {
			Typename string `json:"__typename"`
		} `json:"object"`
	} `json:"node"`
}

// PathExists reports whether path exists on the default branch of the
// repository. Empty repositories and unresolvable ids report false.
func (c *Connector) PathExists(ctx context.Context, nodeID, path string) (bool, error) {
	if err := c.checkOpen(); err != nil {
		return false, err
	}

	vars := map[string]any{
		"id":         nodeID,
		"expression": "HEAD:" + path,
	}
	var data probeData
	if err := c.client.graphql(ctx, fmt.Sprintf("probe %s", path), probeQuery, vars, &data); err != nil {
		return false, err
	}
	return data.Node != nil && data.Node.Object != nil, nil
}
