package oidc

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestIssuerURL(t *testing.T) {
	require.Equal(t, "https://kc.example/realms/docs", IssuerURL("https://kc.example/", "docs"))
	require.Equal(t, "https://kc.example/realms/docs", IssuerURL("https://kc.example/realms/docs", ""))
}

func TestInsecureVerifierDecodesClaims(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "tester", "email": "t@example.com"}).SignedString([]byte("whatever"))
	require.NoError(t, err)

	tok, err := NewInsecureVerifier().Verify(context.Background(), raw)
	require.NoError(t, err)
	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, "tester", claims["sub"])

	var wrong struct{}
	require.Error(t, tok.Claims(&wrong))
}

func TestInsecureVerifierRejectsGarbage(t *testing.T) {
	_, err := NewInsecureVerifier().Verify(context.Background(), "not-a-jwt")
	require.Error(t, err)
}

func TestNewVerifierFailsWithoutProvider(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewVerifier(ctx, "http://127.0.0.1:1/realms/none", "client")
	require.Error(t, err)
}
