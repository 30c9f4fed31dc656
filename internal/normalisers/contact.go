package normalisers

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-hubspot/internal/core/domain"
	"github.com/custodia-labs/sercha-hubspot/internal/core/ports/driven"
)

// ContactIDPrefix namespaces contact IDs among items from other integrations.
const ContactIDPrefix = "hs_contact_"

// DefaultContactType is used when a contact has no lifecycle stage.
const DefaultContactType = "HubSpot Contact"

// Contact properties requested from the provider, in request order.
const (
	PropertyObjectID       = "hs_object_id"
	PropertyFirstName      = "firstname"
	PropertyLastName       = "lastname"
	PropertyEmail          = "email"
	PropertyCreateDate     = "createdate"
	PropertyLastModified   = "lastmodifieddate"
	PropertyLifecycleStage = "lifecyclestage"
)

// ContactProperties is the fixed property set fetched for every contact.
var ContactProperties = []string{
	PropertyObjectID,
	PropertyFirstName,
	PropertyLastName,
	PropertyEmail,
	PropertyCreateDate,
	PropertyLastModified,
	PropertyLifecycleStage,
}

// timestamp layouts accepted for date properties, most specific first.
// Values without a zone are taken as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// ContactNormaliser maps raw contacts to integration items.
type ContactNormaliser struct {
	logger *slog.Logger
}

// NewContactNormaliser creates a normaliser. A nil logger uses slog.Default().
func NewContactNormaliser(logger *slog.Logger) *ContactNormaliser {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContactNormaliser{logger: logger}
}

// Normalise converts a batch, preserving order.
func (n *ContactNormaliser) Normalise(contacts []driven.Contact) []*domain.IntegrationItem {
	items := make([]*domain.IntegrationItem, 0, len(contacts))
	for _, c := range contacts {
		items = append(items, n.NormaliseOne(c))
	}
	return items
}

// NormaliseOne converts a single contact. Bad dates are dropped, never fatal.
func (n *ContactNormaliser) NormaliseOne(c driven.Contact) *domain.IntegrationItem {
	contactID := c.Property(PropertyObjectID)

	item := &domain.IntegrationItem{
		Type:      DefaultContactType,
		Name:      contactName(c, contactID),
		Directory: false,
	}
	if contactID != "" {
		id := ContactIDPrefix + contactID
		item.ID = &id
	}
	if stage := c.Property(PropertyLifecycleStage); stage != "" {
		item.Type = stage
	}
	item.CreationTime = n.parseDate(c.Property(PropertyCreateDate), contactID)
	item.LastModifiedTime = n.parseDate(c.Property(PropertyLastModified), contactID)

	return item
}

// contactName prefers "first last", then email, then a placeholder.
func contactName(c driven.Contact, contactID string) string {
	var parts []string
	for _, p := range []string{c.Property(PropertyFirstName), c.Property(PropertyLastName)} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	if email := c.Property(PropertyEmail); email != "" {
		return email
	}
	if contactID == "" {
		contactID = "N/A"
	}
	return fmt.Sprintf("Contact %s", contactID)
}

func (n *ContactNormaliser) parseDate(value, contactID string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := ParseTimestamp(value)
	if err != nil {
		n.logger.Warn("unparsable contact date", "contact_id", contactID, "value", value)
		return nil
	}
	return &t
}

// ParseTimestamp parses a provider timestamp and normalises it to UTC.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
