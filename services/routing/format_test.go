package routingService

import (
	"strings"
	"testing"

	"eon-notify/data"
)

func TestFormatEventDegradesGracefully(t *testing.T) {
	cases := []struct {
		name      string
		evt       data.DomainEvent
		wantTitle string
		wantIn    string
	}{
		{
			name: "exam result with full payload",
			evt: data.DomainEvent{
				EventType: data.COACH_EXAM_RESULT_REGISTERED,
				Payload: map[string]any{
					"coachName":   "Ana",
					"examName":    "10K Run",
					"timeSeconds": float64(3000),
					"overallRank": float64(4),
				},
			},
			wantTitle: "Ana registered an exam result",
			wantIn:    "overall rank 4",
		},
		{
			name:      "exam result with empty payload",
			evt:       data.DomainEvent{EventType: data.COACH_EXAM_RESULT_REGISTERED, Payload: map[string]any{}},
			wantTitle: "Your coach registered an exam result",
			wantIn:    "your exam",
		},
		{
			name:      "exam result with nil payload",
			evt:       data.DomainEvent{EventType: data.COACH_EXAM_RESULT_REGISTERED},
			wantTitle: "Your coach registered an exam result",
			wantIn:    "your exam",
		},
		{
			name: "payment with amount",
			evt: data.DomainEvent{
				EventType: data.ADMIN_PAYMENT_RECEIVED,
				Payload:   map[string]any{"userName": "Leo", "amount": "R$ 120,00"},
			},
			wantTitle: "Payment received",
			wantIn:    "R$ 120,00",
		},
		{
			name:      "maintenance fallback message",
			evt:       data.DomainEvent{EventType: data.SYSTEM_MAINTENANCE, Payload: map[string]any{}},
			wantTitle: "Scheduled maintenance",
			wantIn:    "unavailable",
		},
		{
			name:      "unknown event type",
			evt:       data.DomainEvent{EventType: "mystery:event"},
			wantTitle: "New notification",
			wantIn:    "new notification",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			title, message := formatEvent(tc.evt)
			if title != tc.wantTitle {
				t.Errorf("title = %q, want %q", title, tc.wantTitle)
			}
			if !strings.Contains(message, tc.wantIn) {
				t.Errorf("message = %q, want substring %q", message, tc.wantIn)
			}
		})
	}
}

func TestExpandTemplate(t *testing.T) {
	payload := map[string]any{"examId": "e42", "userId": "u1", "count": float64(3)}

	if got := expandTemplate("/student/exams/{examId}", payload); got != "/student/exams/e42" {
		t.Errorf("got %q", got)
	}
	// placeholders without a string value stay untouched
	if got := expandTemplate("/x/{count}/{missing}", payload); got != "/x/{count}/{missing}" {
		t.Errorf("got %q", got)
	}
	if got := expandTemplate("", payload); got != "" {
		t.Errorf("got %q", got)
	}
	if got := expandTemplate("/static", nil); got != "/static" {
		t.Errorf("got %q", got)
	}
}
