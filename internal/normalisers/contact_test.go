package normalisers

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/custodia-labs/sercha-hubspot/internal/core/ports/driven"
)

func contact(props map[string]string) driven.Contact {
	return driven.Contact{ID: props[PropertyObjectID], Properties: props}
}

func TestNormaliseOne_FullContact(t *testing.T) {
	n := NewContactNormaliser(nil)
	item := n.NormaliseOne(contact(map[string]string{
		PropertyObjectID:       "101",
		PropertyFirstName:      "Ada",
		PropertyLastName:       "Lovelace",
		PropertyEmail:          "ada@example.com",
		PropertyCreateDate:     "2024-01-15T10:00:00.123Z",
		PropertyLastModified:   "2024-02-01T12:30:00+02:00",
		PropertyLifecycleStage: "customer",
	}))

	if item.ID == nil || *item.ID != "hs_contact_101" {
		t.Errorf("expected id hs_contact_101, got %v", item.ID)
	}
	if item.Name != "Ada Lovelace" {
		t.Errorf("expected name 'Ada Lovelace', got %q", item.Name)
	}
	if item.Type != "customer" {
		t.Errorf("expected type 'customer', got %q", item.Type)
	}
	if item.Directory {
		t.Error("expected directory false")
	}

	wantCreated := time.Date(2024, 1, 15, 10, 0, 0, 123000000, time.UTC)
	if item.CreationTime == nil || !item.CreationTime.Equal(wantCreated) {
		t.Errorf("expected creation %v, got %v", wantCreated, item.CreationTime)
	}
	if item.CreationTime.Location() != time.UTC {
		t.Errorf("expected UTC creation time, got %v", item.CreationTime.Location())
	}

	wantModified := time.Date(2024, 2, 1, 10, 30, 0, 0, time.UTC)
	if item.LastModifiedTime == nil || !item.LastModifiedTime.Equal(wantModified) {
		t.Errorf("expected modified %v, got %v", wantModified, item.LastModifiedTime)
	}
	if item.LastModifiedTime.Location() != time.UTC {
		t.Errorf("expected UTC modified time, got %v", item.LastModifiedTime.Location())
	}
}

func TestNormaliseOne_Name(t *testing.T) {
	tests := []struct {
		name  string
		props map[string]string
		want  string
	}{
		{"first only", map[string]string{PropertyFirstName: "Ada"}, "Ada"},
		{"last only", map[string]string{PropertyLastName: "Lovelace"}, "Lovelace"},
		{"trims parts", map[string]string{PropertyFirstName: "  Ada ", PropertyLastName: " Lovelace  "}, "Ada Lovelace"},
		{"blank parts fall back to email", map[string]string{PropertyFirstName: "   ", PropertyLastName: "", PropertyEmail: "ada@example.com"}, "ada@example.com"},
		{"empty everything uses id", map[string]string{PropertyObjectID: "42", PropertyFirstName: "", PropertyLastName: "", PropertyEmail: ""}, "Contact 42"},
		{"no id", map[string]string{}, "Contact N/A"},
	}

	n := NewContactNormaliser(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.NormaliseOne(contact(tt.props)).Name
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNormaliseOne_Defaults(t *testing.T) {
	n := NewContactNormaliser(nil)
	item := n.NormaliseOne(driven.Contact{})

	if item.ID != nil {
		t.Errorf("expected nil id, got %q", *item.ID)
	}
	if item.Type != DefaultContactType {
		t.Errorf("expected default type, got %q", item.Type)
	}
	if item.CreationTime != nil || item.LastModifiedTime != nil {
		t.Error("expected absent dates")
	}
}

func TestNormaliseOne_BadDateIsNotFatal(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	n := NewContactNormaliser(logger)

	item := n.NormaliseOne(contact(map[string]string{
		PropertyObjectID:     "7",
		PropertyFirstName:    "Grace",
		PropertyCreateDate:   "yesterday",
		PropertyLastModified: "2024-03-01T00:00:00Z",
	}))

	if item.CreationTime != nil {
		t.Errorf("expected nil creation time, got %v", item.CreationTime)
	}
	if item.LastModifiedTime == nil {
		t.Error("expected last modified time to survive a bad creation date")
	}
	if item.Name != "Grace" {
		t.Errorf("expected record to be normalised, got name %q", item.Name)
	}
	if !strings.Contains(buf.String(), "unparsable contact date") {
		t.Errorf("expected a warning to be logged, got %q", buf.String())
	}
}

func TestNormalise_PreservesOrder(t *testing.T) {
	n := NewContactNormaliser(nil)
	items := n.Normalise([]driven.Contact{
		contact(map[string]string{PropertyObjectID: "3"}),
		contact(map[string]string{PropertyObjectID: "1"}),
		contact(map[string]string{PropertyObjectID: "2"}),
	})

	want := []string{"hs_contact_3", "hs_contact_1", "hs_contact_2"}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i, id := range want {
		if *items[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, *items[i].ID)
		}
	}
}

func TestNormalise_Empty(t *testing.T) {
	items := NewContactNormaliser(nil).Normalise(nil)
	if items == nil || len(items) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", items)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-15T10:00:00Z", time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)},
		{"2024-01-15T10:00:00.5Z", time.Date(2024, 1, 15, 10, 0, 0, 500000000, time.UTC)},
		{"2024-01-15T10:00:00-05:00", time.Date(2024, 1, 15, 15, 0, 0, 0, time.UTC)},
		{"2024-01-15T10:00:00", time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)},
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.in, tt.want, got)
		}
	}

	if _, err := ParseTimestamp("15/01/2024"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
