package github

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/reposcan/internal/core/domain"
)

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultGraphQLURL, cfg.GraphQLURL)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.InDelta(t, ProactiveRate, cfg.RequestsPerSecond, 0.0001)
}

func TestConfig_WithDefaults_AddsTrailingSlash(t *testing.T) {
	cfg := Config{BaseURL: "https://ghe.example.com/api/v3"}.withDefaults()

	assert.Equal(t, "https://ghe.example.com/api/v3/", cfg.BaseURL)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, Config{}.Validate())
	assert.NoError(t, Config{
		BaseURL:    "https://ghe.example.com/api/v3/",
		GraphQLURL: "https://ghe.example.com/api/graphql",
	}.Validate())

	assert.ErrorIs(t, Config{GraphQLURL: "/graphql"}.Validate(), domain.ErrInvalidInput)
	assert.ErrorIs(t, Config{BaseURL: "::bad"}.Validate(), domain.ErrInvalidInput)
}
