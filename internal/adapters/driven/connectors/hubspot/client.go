package hubspot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/sercha-hubspot/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-hubspot/internal/normalisers"
)

// Ensure Client implements the interface.
var _ driven.ContactSource = (*Client)(nil)

const contactsPath = "/crm/v3/objects/contacts"

// Client provides HubSpot CRM API operations.
type Client struct {
	baseURL    string
	pageSize   int
	properties string
	httpClient *http.Client
}

// NewClient creates a new HubSpot API client.
func NewClient(cfg Config) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		baseURL:    cfg.APIBaseURL,
		pageSize:   cfg.PageSize,
		properties: strings.Join(normalisers.ContactProperties, ","),
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// contactsResponse is the body of a contacts listing page.
type contactsResponse struct {
	Results []struct {
		ID         string             `json:"id"`
		Properties map[string]*string `json:"properties"`
	} `json:"results"`
	Paging *struct {
		Next *struct {
			After string `json:"after"`
		} `json:"next"`
	} `json:"paging"`
}

// ListContacts fetches one page of contacts with the given bearer token.
func (c *Client) ListContacts(ctx context.Context, accessToken, after string) (*driven.ContactPage, error) {
	params := url.Values{
		"limit":      {strconv.Itoa(c.pageSize)},
		"properties": {c.properties},
	}
	if after != "" {
		params.Set("after", after)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+contactsPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.authorized(accessToken).Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("HubSpot API error %d: %s", resp.StatusCode, string(body))
	}

	var page contactsResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	result := &driven.ContactPage{
		Contacts: make([]driven.Contact, 0, len(page.Results)),
	}
	for _, r := range page.Results {
		contact := driven.Contact{ID: r.ID, Properties: make(map[string]string, len(r.Properties))}
		for name, value := range r.Properties {
			if value != nil {
				contact.Properties[name] = *value
			}
		}
		result.Contacts = append(result.Contacts, contact)
	}
	if page.Paging != nil && page.Paging.Next != nil {
		result.NextAfter = page.Paging.Next.After
	}
	return result, nil
}

// authorized returns a client that sends accessToken as a bearer token.
func (c *Client) authorized(accessToken string) *http.Client {
	return &http.Client{
		Timeout: c.httpClient.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}),
			Base:   c.httpClient.Transport,
		},
	}
}
