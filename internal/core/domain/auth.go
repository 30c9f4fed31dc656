package domain

// AuthContext identifies the caller of an authenticated request
type AuthContext struct {
	UserID string `json:"user_id"`
	OrgID  string `json:"org_id"`
}

// CanActFor checks whether the caller may operate on the given identity pair
func (a *AuthContext) CanActFor(userID, orgID string) bool {
	return a.UserID == userID && a.OrgID == orgID
}

// TokenClaims represents the JWT token payload
type TokenClaims struct {
	UserID    string `json:"user_id"`
	OrgID     string `json:"org_id"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// ToAuthContext converts token claims to an auth context
func (c *TokenClaims) ToAuthContext() *AuthContext {
	return &AuthContext{
		UserID: c.UserID,
		OrgID:  c.OrgID,
	}
}
