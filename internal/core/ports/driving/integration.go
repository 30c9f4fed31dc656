package driving

import (
	"context"

	"github.com/custodia-labs/sercha-hubspot/internal/core/domain"
)

// IntegrationService runs the HubSpot integration: OAuth authorization,
// one-shot credential hand-off and contact listing.
type IntegrationService interface {
	// Authorize starts an authorization flow for the caller.
	// The pending state is stored for CSRF validation during callback.
	Authorize(ctx context.Context, req AuthorizeRequest) (*AuthorizeResponse, error)

	// Callback completes the flow from the provider redirect and stores
	// the resulting credentials for the identity embedded in the state.
	Callback(ctx context.Context, req CallbackRequest) (*CallbackResponse, error)

	// Credentials claims the stored credentials. They are deleted on read.
	Credentials(ctx context.Context, req CredentialsRequest) (domain.Credentials, error)

	// Items lists the remote contacts reachable with the given credentials
	// payload, normalised to integration items.
	Items(ctx context.Context, credentialsJSON string) (*ItemsResponse, error)
}

// AuthorizeRequest represents a request to start an OAuth flow.
type AuthorizeRequest struct {
	UserID string `json:"user_id"`
	OrgID  string `json:"org_id"`
}

// AuthorizeResponse contains the authorization URL.
type AuthorizeResponse struct {
	// AuthorizationURL is the URL to open for the user.
	AuthorizationURL string `json:"authorization_url"`

	// ExpiresAt is when the pending state expires.
	ExpiresAt string `json:"expires_at"`
}

// CallbackRequest represents the OAuth callback from the provider.
type CallbackRequest struct {
	Code             string `json:"code"`
	State            string `json:"state"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// CallbackResponse identifies whose credentials were stored.
type CallbackResponse struct {
	UserID string `json:"user_id"`
	OrgID  string `json:"org_id"`
}

// CredentialsRequest identifies whose credentials to claim.
type CredentialsRequest struct {
	UserID string `json:"user_id"`
	OrgID  string `json:"org_id"`
}

// ItemsResponse is the normalised listing.
type ItemsResponse struct {
	Items []*domain.IntegrationItem `json:"items"`

	// Pages is the number of pages successfully fetched.
	Pages int `json:"pages"`

	// Truncated is set when the listing stopped early on a failed page or
	// on the page cap while more pages remained.
	Truncated bool `json:"truncated"`
}

// IntegrationError is a caller-facing failure. Message is safe to show to
// end users; details are only ever logged.
type IntegrationError struct {
	Code    string `json:"error"`
	Message string `json:"detail"`
}

func (e *IntegrationError) Error() string {
	return e.Code + ": " + e.Message
}

// Integration errors
var (
	ErrProviderDenied      = &IntegrationError{Code: "provider_denied", Message: "HubSpot authentication failed."}
	ErrMissingParameter    = &IntegrationError{Code: "missing_parameter", Message: "Missing required parameters."}
	ErrMalformedState      = &IntegrationError{Code: "malformed_state", Message: "Malformed state parameter received from HubSpot."}
	ErrStateNotFound       = &IntegrationError{Code: "state_not_found", Message: "HubSpot OAuth state not found or expired. Please try again."}
	ErrInternalState       = &IntegrationError{Code: "internal_state_error", Message: "Internal error processing OAuth state."}
	ErrStateMismatch       = &IntegrationError{Code: "state_mismatch", Message: "HubSpot OAuth state mismatch. Please try again."}
	ErrTokenExchangeFailed = &IntegrationError{Code: "token_exchange_failed", Message: "Failed to communicate with HubSpot for token exchange."}
	ErrTokenExchangeError  = &IntegrationError{Code: "token_exchange_error", Message: "An unexpected error occurred during token exchange."}
	ErrCredentialsNotFound = &IntegrationError{Code: "credentials_not_found", Message: "HubSpot credentials not found. Please re-authorize."}
	ErrCredentialsCorrupt  = &IntegrationError{Code: "credentials_corrupt", Message: "Error processing stored HubSpot credentials."}
	ErrMissingAccessToken  = &IntegrationError{Code: "missing_access_token", Message: "Missing access token in credentials."}
	ErrInvalidCredentials  = &IntegrationError{Code: "invalid_credentials", Message: "Invalid credentials format."}
)
