package services

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestParseAgentToken(t *testing.T) {
	auth := NewAuthService()

	t.Run("accepts a delivery agent token", func(t *testing.T) {
		exp := time.Now().Add(time.Hour)
		token := signedToken(t, jwt.MapClaims{
			"user_id":           "agent-42",
			"is_delivery_agent": true,
			"exp":               float64(exp.Unix()),
		})

		claims, err := auth.ParseAgentToken(token)
		require.NoError(t, err)
		assert.Equal(t, "agent-42", claims.AgentID)
		assert.True(t, claims.IsDeliveryAgent)
		assert.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())
	})

	t.Run("rejects a non-agent token", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{
			"user_id":           "customer-7",
			"is_delivery_agent": false,
		})

		_, err := auth.ParseAgentToken(token)
		assert.EqualError(t, err, "token does not belong to a delivery agent")
	})

	t.Run("rejects a token without an agent id", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{"is_delivery_agent": true})

		_, err := auth.ParseAgentToken(token)
		assert.EqualError(t, err, "agent id not found in token")
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{
			"user_id":           "agent-42",
			"is_delivery_agent": true,
			"exp":               float64(time.Now().Add(-time.Minute).Unix()),
		})

		_, err := auth.ParseAgentToken(token)
		assert.EqualError(t, err, "agent token expired")
	})

	t.Run("accepts a token without expiry", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{
			"user_id":           "agent-42",
			"is_delivery_agent": true,
		})

		claims, err := auth.ParseAgentToken(token)
		require.NoError(t, err)
		assert.True(t, claims.ExpiresAt.IsZero())
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := auth.ParseAgentToken("not-a-token")
		assert.Error(t, err)
	})
}
