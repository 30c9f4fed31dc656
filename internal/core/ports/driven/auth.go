package driven

import "github.com/custodia-labs/sercha-hubspot/internal/core/domain"

// AuthAdapter handles caller token cryptographic operations.
type AuthAdapter interface {
	GenerateToken(claims *domain.TokenClaims) (string, error)
	ParseToken(token string) (*domain.TokenClaims, error)
}
