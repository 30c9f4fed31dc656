package hubspot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/sercha-hubspot/internal/core/domain"
	"github.com/custodia-labs/sercha-hubspot/internal/core/ports/driven"
)

// Ensure OAuthHandler implements the interface.
var _ driven.OAuthProvider = (*OAuthHandler)(nil)

// maxTokenResponseSize caps how much of a token response is read.
const maxTokenResponseSize = 1 << 20

// OAuthHandler handles OAuth operations for HubSpot.
type OAuthHandler struct {
	cfg        Config
	oauth      *oauth2.Config
	httpClient *http.Client
}

// NewOAuthHandler creates a new HubSpot OAuth handler.
func NewOAuthHandler(cfg Config) *OAuthHandler {
	cfg = cfg.withDefaults()
	return &OAuthHandler{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// AuthorizationURL constructs the HubSpot authorization URL carrying state.
func (h *OAuthHandler) AuthorizationURL(state string) string {
	return h.oauth.AuthCodeURL(state)
}

// ExchangeCode exchanges an authorization code for credentials. The token
// response is kept verbatim so that every field HubSpot returns reaches the
// caller.
func (h *OAuthHandler) ExchangeCode(ctx context.Context, code string) (domain.Credentials, error) {
	params := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {h.cfg.ClientID},
		"client_secret": {h.cfg.ClientSecret},
		"redirect_uri":  {h.cfg.RedirectURI},
		"code":          {code},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.cfg.TokenURL,
		strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &driven.TokenExchangeError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	creds, err := domain.ParseCredentials(body)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return creds, nil
}
