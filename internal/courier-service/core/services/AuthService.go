package services

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt"
)

// AgentClaims is what the console needs from the issued bearer token.
type AgentClaims struct {
	AgentID         string
	IsDeliveryAgent bool
	ExpiresAt       time.Time
}

type AuthService struct{}

func NewAuthService() *AuthService {
	return &AuthService{}
}

// ParseAgentToken extracts identity claims from the token the agent logged
// in with. The backend verifies the signature on every request; the console
// only reads the claims, so no key is needed here.
func (a *AuthService) ParseAgentToken(tokenString string) (AgentClaims, error) {
	parser := jwt.Parser{}
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return AgentClaims{}, fmt.Errorf("parsing agent token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return AgentClaims{}, errors.New("invalid claims in agent token")
	}

	agentID, ok := claims["user_id"].(string)
	if !ok || agentID == "" {
		return AgentClaims{}, errors.New("agent id not found in token")
	}

	isAgent, _ := claims["is_delivery_agent"].(bool)

	result := AgentClaims{
		AgentID:         agentID,
		IsDeliveryAgent: isAgent,
	}
	if exp, ok := claims["exp"].(float64); ok {
		result.ExpiresAt = time.Unix(int64(exp), 0)
	}

	if !result.IsDeliveryAgent {
		return AgentClaims{}, errors.New("token does not belong to a delivery agent")
	}
	if !result.ExpiresAt.IsZero() && time.Now().After(result.ExpiresAt) {
		return AgentClaims{}, errors.New("agent token expired")
	}

	return result, nil
}
