package auth

import (
	"context"
	"strings"

	"github.com/custodia-labs/reposcan/internal/core/domain"
	"github.com/custodia-labs/reposcan/internal/core/ports/driven"
)

// Ensure PATProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*PATProvider)(nil)

// PATProvider provides a static Personal Access Token.
// PATs don't expire and don't require refresh.
type PATProvider struct {
	token string
}

// NewPATProvider creates a token provider for token.
func NewPATProvider(token string) *PATProvider {
	return &PATProvider{token: strings.TrimSpace(token)}
}

// GetToken returns the PAT, or domain.ErrAuthRequired when it is empty.
func (p *PATProvider) GetToken(_ context.Context) (string, error) {
	if p.token == "" {
		return "", domain.ErrAuthRequired
	}
	return p.token, nil
}

// AuthMethod returns AuthMethodPAT.
func (p *PATProvider) AuthMethod() domain.AuthMethod {
	return domain.AuthMethodPAT
}

// IsAuthenticated returns true if a token is set.
func (p *PATProvider) IsAuthenticated() bool {
	return p.token != ""
}

// NewTokenProvider returns a PATProvider for a non-empty token and a
// NullTokenProvider otherwise.
func NewTokenProvider(token string) driven.TokenProvider {
	if strings.TrimSpace(token) == "" {
		return NewNullTokenProvider()
	}
	return NewPATProvider(token)
}
