package instagram

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/AshishRam7/deploy-test-insta-bot/internal/domain"
)

// EnvTokenResolver serves access tokens from a static account-to-token
// mapping, parsed from the ACCOUNTS_JSON environment value. It is the
// no-database deployment mode.
type EnvTokenResolver struct {
	tokens map[string]string
}

var _ domain.TokenResolver = (*EnvTokenResolver)(nil)

// NewEnvTokenResolver parses a JSON object of account ID to access token.
func NewEnvTokenResolver(accountsJSON string) (*EnvTokenResolver, error) {
	tokens := make(map[string]string)
	if accountsJSON != "" {
		if err := json.Unmarshal([]byte(accountsJSON), &tokens); err != nil {
			return nil, fmt.Errorf("failed to parse accounts JSON: %w", err)
		}
	}
	return &EnvTokenResolver{tokens: tokens}, nil
}

func (r *EnvTokenResolver) AccessToken(_ context.Context, accountID string) (string, error) {
	token, ok := r.tokens[accountID]
	if !ok {
		return "", domain.ErrTokenNotFound
	}
	return token, nil
}

// Has reports whether the account is configured. The webhook handler uses
// it to drop events for accounts the bot does not manage.
func (r *EnvTokenResolver) Has(accountID string) bool {
	_, ok := r.tokens[accountID]
	return ok
}

// Len returns the number of configured accounts.
func (r *EnvTokenResolver) Len() int {
	return len(r.tokens)
}
