// Package github implements the forge ports for GitHub and GitHub Enterprise.
//
// Three endpoints are used:
//
//   - Enumeration: GET /repositories?since=<id> returns the next 100 public
//     repositories in ascending id order. A shorter page ends the crawl.
//   - Hydration: a GraphQL nodes(ids:) query loads name, fork flag and
//     languages for up to 100 node ids in one call.
//   - Probing: a GraphQL object(expression:"HEAD:<path>") query reports whether
//     a file exists on the default branch.
//
// # Authentication
//
// A Personal Access Token is sent as a bearer token through an oauth2 static
// token source. Unauthenticated requests work for enumeration but GitHub
// rejects anonymous GraphQL calls, so a crawl requires a token.
//
// # Rate Limiting
//
// The client throttles proactively with a token bucket (default ~1.2 req/s)
// and reactively from X-RateLimit-Remaining and X-RateLimit-Reset: when fewer
// than MinBuffer requests remain it waits for the reset. Refusals surface as
// RateLimitError; nothing is retried.
//
// # Error Handling
//
// REST failures become APIError, rate limit refusals RateLimitError, and
// GraphQL error entries other than NOT_FOUND become GraphQLError. All of them
// are fatal to a crawl. NOT_FOUND entries only mark ids that no longer
// resolve, which GitHub also reports as null nodes.
package github
