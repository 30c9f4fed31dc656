package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultCredentialsTTL applies when the provider does not report expires_in.
const DefaultCredentialsTTL = 3600 * time.Second

// maxTTLSeconds is the largest expires_in representable as a time.Duration.
const maxTTLSeconds = math.MaxInt64 / int64(time.Second)

// Credential payload keys read by the connector. Everything else in the
// payload is carried through untouched.
const (
	CredentialAccessToken = "access_token"
	CredentialExpiresIn   = "expires_in"
	CredentialReceivedAt  = "received_at"
)

// Credentials is the token endpoint response exactly as the provider sent it,
// plus the server-assigned received_at timestamp.
type Credentials map[string]any

// ParseCredentials decodes a stored or client-supplied credentials payload.
// The payload must be a JSON object.
func ParseCredentials(data []byte) (Credentials, error) {
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}
	if creds == nil {
		return nil, ErrInvalidInput
	}
	return creds, nil
}

// MarshalJSONString returns the JSON form persisted in the store.
func (c Credentials) MarshalJSONString() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// AccessToken returns the bearer token, or "" when absent.
func (c Credentials) AccessToken() string {
	token, _ := c[CredentialAccessToken].(string)
	return token
}

// TTL returns how long the credentials should be kept: the provider's
// expires_in when it is a positive number, DefaultCredentialsTTL otherwise.
// Values too large for a Duration are clamped.
func (c Credentials) TTL() time.Duration {
	secs := numberValue(c[CredentialExpiresIn])
	if secs <= 0 {
		return DefaultCredentialsTTL
	}
	return time.Duration(min(secs, maxTTLSeconds)) * time.Second
}

// MarkReceived stamps the credentials with the time they were obtained.
func (c Credentials) MarkReceived(at time.Time) {
	c[CredentialReceivedAt] = at.Unix()
}

func numberValue(v any) int64 {
	switch n := v.(type) {
	case float64:
		if n >= math.MaxInt64 {
			return math.MaxInt64
		}
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}
