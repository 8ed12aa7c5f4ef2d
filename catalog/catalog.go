// Package catalog is the static classification table for domain events.
// Every event type the pipeline is allowed to persist must have an entry
// here; the notification store drops anything it cannot look up.
package catalog

import "eon-notify/data"

var entries = map[string]data.CatalogEntry{
	data.ADMIN_USER_REGISTERED: {
		Priority:         data.PRIORITY_MEDIUM,
		Category:         data.CATEGORY_SYSTEM,
		Icon:             "user-plus",
		Color:            "#2563eb",
		RedirectTemplate: "/admin/users/{userId}",
		ActionLabel:      "View user",
	},
	data.ADMIN_SUBSCRIPTION_CREATED: {
		Priority:         data.PRIORITY_MEDIUM,
		Category:         data.CATEGORY_SUBSCRIPTION,
		Icon:             "credit-card",
		Color:            "#7c3aed",
		RedirectTemplate: "/admin/subscriptions/{subscriptionId}",
		ActionLabel:      "View subscription",
	},
	data.ADMIN_PAYMENT_RECEIVED: {
		Priority:         data.PRIORITY_HIGH,
		Category:         data.CATEGORY_PAYMENT,
		Icon:             "banknote",
		Color:            "#16a34a",
		RedirectTemplate: "/admin/payments/{paymentId}",
		ActionLabel:      "View payment",
	},
	data.STUDENT_TEST_RESULT_REGISTERED: {
		Priority:         data.PRIORITY_MEDIUM,
		Category:         data.CATEGORY_TEST,
		Icon:             "activity",
		Color:            "#0891b2",
		RedirectTemplate: "/coach/students/{userId}/tests",
		ActionLabel:      "View result",
	},
	data.STUDENT_EXAM_ENROLLED: {
		Priority:         data.PRIORITY_MEDIUM,
		Category:         data.CATEGORY_EXAM,
		Icon:             "calendar-check",
		Color:            "#ca8a04",
		RedirectTemplate: "/coach/students/{userId}/exams",
		ActionLabel:      "View enrollment",
	},
	data.STUDENT_SUBSCRIPTION_PURCHASED: {
		Priority:         data.PRIORITY_HIGH,
		Category:         data.CATEGORY_SUBSCRIPTION,
		Icon:             "credit-card",
		Color:            "#7c3aed",
		RedirectTemplate: "/coach/students/{userId}",
		ActionLabel:      "View student",
	},
	data.COACH_EXAM_RESULT_REGISTERED: {
		Priority:         data.PRIORITY_HIGH,
		Category:         data.CATEGORY_EXAM,
		Icon:             "trophy",
		Color:            "#ca8a04",
		RedirectTemplate: "/student/exams/{examId}",
		ActionLabel:      "Open result",
	},
	data.COACH_TEST_RESULT_REGISTERED: {
		Priority:         data.PRIORITY_MEDIUM,
		Category:         data.CATEGORY_TEST,
		Icon:             "activity",
		Color:            "#0891b2",
		RedirectTemplate: "/student/tests/{testId}",
		ActionLabel:      "Open result",
	},
	data.COACH_TRAINING_PLAN_ASSIGNED: {
		Priority:         data.PRIORITY_HIGH,
		Category:         data.CATEGORY_OTHER,
		Icon:             "clipboard-list",
		Color:            "#2563eb",
		RedirectTemplate: "/student/plans/{planId}",
		ActionLabel:      "Open plan",
	},
	data.SYSTEM_MAINTENANCE: {
		Priority: data.PRIORITY_URGENT,
		Category: data.CATEGORY_SYSTEM,
		Icon:     "wrench",
		Color:    "#dc2626",
	},
	data.USER_PHOTO_UPDATED: {
		Priority: data.PRIORITY_LOW,
		Category: data.CATEGORY_SYSTEM,
		Icon:     "image",
		Color:    "#6b7280",
	},
}

// Lookup returns the catalog entry for an event type. The second return is
// false for unknown types; callers are expected to drop those events.
func Lookup(eventType string) (data.CatalogEntry, bool) {
	entry, ok := entries[eventType]
	return entry, ok
}

// EventTypes returns every event type the catalog knows about.
func EventTypes() []string {
	types := make([]string, 0, len(entries))
	for t := range entries {
		types = append(types, t)
	}
	return types
}
