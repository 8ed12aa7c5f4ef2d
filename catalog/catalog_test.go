package catalog

import (
	"testing"

	"eon-notify/data"
)

func TestLookupKnownTypes(t *testing.T) {
	cases := []struct {
		eventType string
		priority  string
		category  string
	}{
		{data.COACH_EXAM_RESULT_REGISTERED, data.PRIORITY_HIGH, data.CATEGORY_EXAM},
		{data.COACH_TEST_RESULT_REGISTERED, data.PRIORITY_MEDIUM, data.CATEGORY_TEST},
		{data.ADMIN_PAYMENT_RECEIVED, data.PRIORITY_HIGH, data.CATEGORY_PAYMENT},
		{data.SYSTEM_MAINTENANCE, data.PRIORITY_URGENT, data.CATEGORY_SYSTEM},
		{data.USER_PHOTO_UPDATED, data.PRIORITY_LOW, data.CATEGORY_SYSTEM},
	}
	for _, tc := range cases {
		entry, ok := Lookup(tc.eventType)
		if !ok {
			t.Errorf("Lookup(%q) missing", tc.eventType)
			continue
		}
		if entry.Priority != tc.priority {
			t.Errorf("Lookup(%q).Priority = %q, want %q", tc.eventType, entry.Priority, tc.priority)
		}
		if entry.Category != tc.category {
			t.Errorf("Lookup(%q).Category = %q, want %q", tc.eventType, entry.Category, tc.category)
		}
	}
}

func TestLookupUnknownType(t *testing.T) {
	if _, ok := Lookup("does:not:exist"); ok {
		t.Fatal("expected unknown event type to miss")
	}
}

func TestEntriesAreComplete(t *testing.T) {
	for _, eventType := range EventTypes() {
		entry, _ := Lookup(eventType)
		if entry.Priority == "" {
			t.Errorf("%q has no priority", eventType)
		}
		if entry.Category == "" {
			t.Errorf("%q has no category", eventType)
		}
		if entry.Icon == "" {
			t.Errorf("%q has no icon", eventType)
		}
	}
}
