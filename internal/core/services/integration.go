package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-hubspot/internal/core/domain"
	"github.com/custodia-labs/sercha-hubspot/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-hubspot/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-hubspot/internal/normalisers"
)

// Ensure integrationService implements IntegrationService
var _ driving.IntegrationService = (*integrationService)(nil)

// DefaultMaxPages caps a single listing run.
const DefaultMaxPages = 10

// IntegrationServiceConfig holds dependencies for the integration service.
type IntegrationServiceConfig struct {
	// Store keeps pending states and credentials.
	Store driven.EphemeralStore

	// Provider builds authorization URLs and exchanges codes.
	Provider driven.OAuthProvider

	// Contacts lists remote records.
	Contacts driven.ContactSource

	// Normaliser maps records to items. Defaults to a ContactNormaliser on Logger.
	Normaliser *normalisers.ContactNormaliser

	// MaxPages caps pagination. Defaults to DefaultMaxPages.
	MaxPages int

	Logger *slog.Logger

	// Now is overridable for tests.
	Now func() time.Time
}

// integrationService implements the IntegrationService interface.
type integrationService struct {
	store      driven.EphemeralStore
	provider   driven.OAuthProvider
	contacts   driven.ContactSource
	normaliser *normalisers.ContactNormaliser
	maxPages   int
	logger     *slog.Logger
	now        func() time.Time
}

// NewIntegrationService creates a new integration service.
func NewIntegrationService(cfg IntegrationServiceConfig) driving.IntegrationService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	normaliser := cfg.Normaliser
	if normaliser == nil {
		normaliser = normalisers.NewContactNormaliser(logger)
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &integrationService{
		store:      cfg.Store,
		provider:   cfg.Provider,
		contacts:   cfg.Contacts,
		normaliser: normaliser,
		maxPages:   maxPages,
		logger:     logger.With("component", "integration"),
		now:        now,
	}
}

// Authorize stores a fresh state for the caller and returns the provider URL
// carrying its encoded form.
func (s *integrationService) Authorize(ctx context.Context, req driving.AuthorizeRequest) (*driving.AuthorizeResponse, error) {
	if req.UserID == "" || req.OrgID == "" {
		return nil, driving.ErrMissingParameter
	}

	state, err := domain.NewAuthorizationState(req.UserID, req.OrgID)
	if err != nil {
		return nil, err
	}

	stored, err := state.MarshalJSONString()
	if err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, domain.StateKey(req.OrgID, req.UserID), stored, domain.StateTTL); err != nil {
		return nil, fmt.Errorf("save oauth state: %w", err)
	}

	token, err := domain.EncodeState(*state)
	if err != nil {
		return nil, err
	}

	return &driving.AuthorizeResponse{
		AuthorizationURL: s.provider.AuthorizationURL(token),
		ExpiresAt:        s.now().Add(domain.StateTTL).UTC().Format(time.RFC3339),
	}, nil
}

// Callback validates the returned state against the stored one, exchanges the
// code and stores the credentials. The state is consumed on every path past
// the lookup.
func (s *integrationService) Callback(ctx context.Context, req driving.CallbackRequest) (*driving.CallbackResponse, error) {
	if req.Error != "" {
		s.logger.Warn("provider denied authorization",
			"error", req.Error,
			"error_description", req.ErrorDescription)
		return nil, driving.ErrProviderDenied
	}

	if req.Code == "" || req.State == "" {
		return nil, driving.ErrMissingParameter
	}

	incoming, err := domain.DecodeState(req.State)
	if err != nil {
		s.logger.Warn("malformed state in callback", "error", err)
		return nil, driving.ErrMalformedState
	}

	stateKey := domain.StateKey(incoming.OrgID, incoming.UserID)
	logger := s.logger.With("user_id", incoming.UserID, "org_id", incoming.OrgID)

	raw, err := s.store.Get(ctx, stateKey)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, driving.ErrStateNotFound
	case errors.Is(err, domain.ErrCorruptValue):
		return nil, s.discardState(ctx, logger, stateKey, err)
	case err != nil:
		return nil, fmt.Errorf("get oauth state: %w", err)
	}

	saved, err := domain.ParseStoredState([]byte(raw))
	if err != nil {
		return nil, s.discardState(ctx, logger, stateKey, err)
	}

	if subtle.ConstantTimeCompare([]byte(incoming.Nonce), []byte(saved.Nonce)) != 1 {
		s.deleteKey(ctx, logger, stateKey)
		logger.Warn("oauth state mismatch")
		return nil, driving.ErrStateMismatch
	}

	creds, err := s.provider.ExchangeCode(ctx, req.Code)
	if err != nil {
		s.deleteKey(ctx, logger, stateKey)
		var exchangeErr *driven.TokenExchangeError
		if errors.As(err, &exchangeErr) {
			logger.Error("token exchange rejected",
				"status", exchangeErr.StatusCode,
				"body", exchangeErr.Body)
			return nil, driving.ErrTokenExchangeFailed
		}
		logger.Error("token exchange failed", "error", err)
		return nil, driving.ErrTokenExchangeError
	}

	creds.MarkReceived(s.now())
	payload, err := creds.MarshalJSONString()
	if err != nil {
		s.deleteKey(ctx, logger, stateKey)
		logger.Error("token exchange returned unencodable payload", "error", err)
		return nil, driving.ErrTokenExchangeError
	}

	credsKey := domain.CredentialsKey(incoming.OrgID, incoming.UserID)
	if err := s.store.Set(ctx, credsKey, payload, creds.TTL()); err != nil {
		return nil, fmt.Errorf("save credentials: %w", err)
	}
	s.deleteKey(ctx, logger, stateKey)

	logger.Info("integration authorized", "ttl", creds.TTL())
	return &driving.CallbackResponse{
		UserID: incoming.UserID,
		OrgID:  incoming.OrgID,
	}, nil
}

// Credentials claims the stored credentials for an identity pair. The key is
// deleted on success and on corruption.
func (s *integrationService) Credentials(ctx context.Context, req driving.CredentialsRequest) (domain.Credentials, error) {
	if req.UserID == "" || req.OrgID == "" {
		return nil, driving.ErrMissingParameter
	}

	key := domain.CredentialsKey(req.OrgID, req.UserID)
	logger := s.logger.With("user_id", req.UserID, "org_id", req.OrgID)

	raw, err := s.store.Get(ctx, key)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, driving.ErrCredentialsNotFound
	case errors.Is(err, domain.ErrCorruptValue):
		return nil, s.discardCredentials(ctx, logger, key, err)
	case err != nil:
		return nil, fmt.Errorf("get credentials: %w", err)
	}

	if !utf8.ValidString(raw) {
		return nil, s.discardCredentials(ctx, logger, key, errors.New("invalid utf-8"))
	}
	creds, err := domain.ParseCredentials([]byte(raw))
	if err != nil {
		return nil, s.discardCredentials(ctx, logger, key, err)
	}

	if err := s.store.Delete(ctx, key); err != nil {
		return nil, fmt.Errorf("delete credentials: %w", err)
	}
	return creds, nil
}

// Items walks the contact listing with the access token from credentialsJSON.
// Once paging starts, failures end the walk and whatever was collected is
// returned.
func (s *integrationService) Items(ctx context.Context, credentialsJSON string) (*driving.ItemsResponse, error) {
	creds, err := domain.ParseCredentials([]byte(credentialsJSON))
	if err != nil {
		s.logger.Warn("could not decode credentials payload", "error", err)
		return nil, driving.ErrInvalidCredentials
	}
	token := creds.AccessToken()
	if token == "" {
		return nil, driving.ErrMissingAccessToken
	}

	var (
		contacts  []driven.Contact
		after     string
		pages     int
		truncated bool
	)
	for pages < s.maxPages {
		page, err := s.contacts.ListContacts(ctx, token, after)
		if err != nil {
			s.logger.Error("contact listing failed, returning partial results",
				"page", pages+1,
				"collected", len(contacts),
				"error", err)
			truncated = true
			break
		}
		pages++
		contacts = append(contacts, page.Contacts...)

		if page.NextAfter == "" {
			after = ""
			break
		}
		after = page.NextAfter
	}
	if after != "" && !truncated {
		s.logger.Warn("contact listing hit page cap", "pages", pages, "collected", len(contacts))
		truncated = true
	}

	items := s.normaliser.Normalise(contacts)
	s.logger.Info("contacts listed", "count", len(items), "pages", pages, "truncated", truncated)

	return &driving.ItemsResponse{
		Items:     items,
		Pages:     pages,
		Truncated: truncated,
	}, nil
}

// discardState purges an unreadable stored state.
func (s *integrationService) discardState(ctx context.Context, logger *slog.Logger, key string, cause error) error {
	logger.Error("could not decode stored oauth state", "key", key, "error", cause)
	s.deleteKey(ctx, logger, key)
	return driving.ErrInternalState
}

// discardCredentials purges unreadable stored credentials.
func (s *integrationService) discardCredentials(ctx context.Context, logger *slog.Logger, key string, cause error) error {
	logger.Error("could not decode stored credentials", "key", key, "error", cause)
	s.deleteKey(ctx, logger, key)
	return driving.ErrCredentialsCorrupt
}

// deleteKey removes a key on a rejection path. The rejection is what the
// caller sees, so a failed delete is only logged.
func (s *integrationService) deleteKey(ctx context.Context, logger *slog.Logger, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		logger.Error("failed to delete key", "key", key, "error", err)
	}
}
