package driven

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sercha-hubspot/internal/core/domain"
)

// OAuthProvider is the authorization side of a third-party integration.
type OAuthProvider interface {
	// AuthorizationURL builds the provider URL the browser is sent to.
	// state is the encoded authorization state token.
	AuthorizationURL(state string) string

	// ExchangeCode trades an authorization code for credentials.
	// A non-2xx response from the token endpoint is reported as *TokenExchangeError;
	// any other failure is returned wrapped.
	ExchangeCode(ctx context.Context, code string) (domain.Credentials, error)
}

// TokenExchangeError reports a token endpoint that answered with a non-2xx status.
// Body is kept for operator diagnostics only.
type TokenExchangeError struct {
	StatusCode int
	Body       string
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("token endpoint returned status %d", e.StatusCode)
}

// ContactSource lists contacts page by page.
type ContactSource interface {
	// ListContacts fetches one page. after is the opaque cursor from the
	// previous page; empty for the first page.
	ListContacts(ctx context.Context, accessToken, after string) (*ContactPage, error)
}

// ContactPage is one page of the contact listing.
type ContactPage struct {
	Contacts []Contact

	// NextAfter is the cursor for the next page, empty on the last page.
	NextAfter string
}

// Contact is a raw contact record: the provider's id plus its property bag.
type Contact struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

// Property returns a property value, or "" when absent.
func (c Contact) Property(name string) string {
	if c.Properties == nil {
		return ""
	}
	return c.Properties[name]
}
