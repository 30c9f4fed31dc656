package domain

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// StateTTL bounds how long an authorization request stays redeemable.
const StateTTL = 600 * time.Second

// nonceBytes is the entropy drawn for each authorization nonce.
const nonceBytes = 32

// AuthorizationState ties a pending authorization to the caller that started it.
// It travels through the provider redirect as the opaque state parameter and a
// copy is kept server-side for comparison on callback.
type AuthorizationState struct {
	Nonce  string `json:"state"`
	UserID string `json:"user_id"`
	OrgID  string `json:"org_id"`
}

// NewAuthorizationState creates a state with a fresh random nonce.
func NewAuthorizationState(userID, orgID string) (*AuthorizationState, error) {
	nonce, err := GenerateNonce()
	if err != nil {
		return nil, err
	}
	return &AuthorizationState{Nonce: nonce, UserID: userID, OrgID: orgID}, nil
}

// GenerateNonce returns 32 random bytes in unpadded base64url form.
func GenerateNonce() (string, error) {
	b := make([]byte, nonceBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Validate reports whether all three fields are present.
func (s *AuthorizationState) Validate() error {
	if s.Nonce == "" || s.UserID == "" || s.OrgID == "" {
		return ErrMalformedState
	}
	return nil
}

// MarshalJSONString returns the JSON form persisted in the store.
func (s *AuthorizationState) MarshalJSONString() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}
	return string(data), nil
}

// EncodeState serializes the state to JSON and then to padded base64url,
// producing the token sent through the redirect.
func EncodeState(s AuthorizationState) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}
	return base64.URLEncoding.EncodeToString(data), nil
}

// DecodeState reverses EncodeState. Padding is optional. Any decoding failure
// or missing field yields ErrMalformedState.
func DecodeState(token string) (*AuthorizationState, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(token, "="))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	return ParseStoredState(raw)
}

// ParseStoredState decodes the JSON form of a state.
func ParseStoredState(data []byte) (*AuthorizationState, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: invalid utf-8", ErrMalformedState)
	}
	var state *AuthorizationState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	if state == nil {
		return nil, ErrMalformedState
	}
	if err := state.Validate(); err != nil {
		return nil, err
	}
	return state, nil
}

// StateKey is the store key holding the pending state for an identity pair.
func StateKey(orgID, userID string) string {
	return "state:" + orgID + ":" + userID
}

// CredentialsKey is the store key holding credentials for an identity pair.
func CredentialsKey(orgID, userID string) string {
	return "credentials:" + orgID + ":" + userID
}
