package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTTokens_IssueAndVerify(t *testing.T) {
	tokens := NewJWTTokens("test-secret")

	signed, err := tokens.Issue(42, "alice", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	userID, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestJWTTokens_VerifyRejectsExpired(t *testing.T) {
	tokens := NewJWTTokens("test-secret")

	signed, err := tokens.Issue(42, "alice", -time.Minute)
	require.NoError(t, err)

	_, err = tokens.Verify(signed)
	require.Error(t, err)
}

func TestJWTTokens_VerifyRejectsWrongSecret(t *testing.T) {
	signed, err := NewJWTTokens("secret-a").Issue(42, "alice", time.Hour)
	require.NoError(t, err)

	_, err = NewJWTTokens("secret-b").Verify(signed)
	require.Error(t, err)
}

func TestJWTTokens_VerifyRejectsGarbage(t *testing.T) {
	tokens := NewJWTTokens("test-secret")
	_, err := tokens.Verify("not-a-jwt")
	require.Error(t, err)
}
