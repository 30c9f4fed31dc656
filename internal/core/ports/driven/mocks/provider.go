package mocks

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/custodia-labs/sercha-hubspot/internal/core/domain"
	"github.com/custodia-labs/sercha-hubspot/internal/core/ports/driven"
)

var (
	_ driven.OAuthProvider = (*MockOAuthProvider)(nil)
	_ driven.ContactSource = (*MockContactSource)(nil)
)

// MockOAuthProvider is a mock implementation of OAuthProvider for testing
type MockOAuthProvider struct {
	mu sync.Mutex

	AuthURL    string
	ExchangeFn func(ctx context.Context, code string) (domain.Credentials, error)

	Codes []string
}

// NewMockOAuthProvider creates a provider whose exchange returns a fixed token.
func NewMockOAuthProvider() *MockOAuthProvider {
	return &MockOAuthProvider{
		AuthURL: "https://provider.test/oauth/authorize",
		ExchangeFn: func(ctx context.Context, code string) (domain.Credentials, error) {
			return domain.Credentials{
				"access_token":  "access-" + code,
				"refresh_token": "refresh-" + code,
				"token_type":    "bearer",
				"expires_in":    1800.0,
			}, nil
		},
	}
}

func (m *MockOAuthProvider) AuthorizationURL(state string) string {
	return m.AuthURL + "?" + url.Values{"state": {state}}.Encode()
}

func (m *MockOAuthProvider) ExchangeCode(ctx context.Context, code string) (domain.Credentials, error) {
	m.mu.Lock()
	m.Codes = append(m.Codes, code)
	m.mu.Unlock()
	if m.ExchangeFn == nil {
		return nil, errors.New("not implemented")
	}
	return m.ExchangeFn(ctx, code)
}

// ExchangeCount returns how many exchanges were attempted
func (m *MockOAuthProvider) ExchangeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Codes)
}

// MockContactSource serves a fixed sequence of pages.
// Pages are addressed by cursor: page i is requested with cursor Cursors[i].
type MockContactSource struct {
	mu sync.Mutex

	Pages []*driven.ContactPage

	// FailAt makes the request for the page at this index fail. -1 disables.
	FailAt  int
	FailErr error

	Tokens  []string
	Cursors []string
}

// NewMockContactSource creates a source that serves the given pages in order,
// chaining them with generated cursors.
func NewMockContactSource(pages ...[]driven.Contact) *MockContactSource {
	m := &MockContactSource{FailAt: -1, FailErr: errors.New("upstream unavailable")}
	for i, contacts := range pages {
		page := &driven.ContactPage{Contacts: contacts}
		if i < len(pages)-1 {
			page.NextAfter = cursorFor(i + 1)
		}
		m.Pages = append(m.Pages, page)
	}
	return m
}

func (m *MockContactSource) ListContacts(ctx context.Context, accessToken, after string) (*driven.ContactPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tokens = append(m.Tokens, accessToken)
	m.Cursors = append(m.Cursors, after)

	idx := 0
	if after != "" {
		idx = -1
		for i := range m.Pages {
			if cursorFor(i) == after {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, errors.New("unknown cursor")
		}
	}
	if idx == m.FailAt {
		return nil, m.FailErr
	}
	if idx >= len(m.Pages) {
		return &driven.ContactPage{}, nil
	}
	return m.Pages[idx], nil
}

// Calls returns how many pages were requested
func (m *MockContactSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Cursors)
}

func cursorFor(i int) string {
	return "cursor-" + string(rune('a'+i))
}
