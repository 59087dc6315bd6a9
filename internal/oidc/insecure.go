package oidc

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lastutorials/pdfsplit/pkg/middleware"
)

// claimsToken exposes claims decoded from a JWT payload.
type claimsToken struct {
	claims jwt.MapClaims
}

func (t *claimsToken) Claims(v interface{}) error {
	out, ok := v.(*map[string]interface{})
	if !ok {
		return fmt.Errorf("unsupported claims target %T", v)
	}
	*out = map[string]interface{}(t.claims)
	return nil
}

// InsecureVerifier decodes token claims WITHOUT validating the signature.
// Only for local/integration runs under explicit opt-in (AUTH_ALLOW_INSECURE_TOKEN).
type InsecureVerifier struct{}

func NewInsecureVerifier() *InsecureVerifier { return &InsecureVerifier{} }

func (v *InsecureVerifier) Verify(_ context.Context, raw string) (middleware.Token, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return &claimsToken{claims: claims}, nil
}
