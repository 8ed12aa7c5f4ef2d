package routingService

import (
	"fmt"
	"strings"

	"eon-notify/data"
	"eon-notify/utils"
)

// formatEvent builds the stored title/message pair for an event. A payload
// missing an expected field degrades to a generic message; formatting never
// fails.
func formatEvent(evt data.DomainEvent) (title, message string) {
	p := evt.Payload
	switch evt.EventType {

	case data.COACH_EXAM_RESULT_REGISTERED:
		coachName := data.PayloadString(p, "coachName")
		examName := data.PayloadString(p, "examName")
		if coachName == "" {
			title = "Your coach registered an exam result"
		} else {
			title = fmt.Sprintf("%s registered an exam result", coachName)
		}
		if examName == "" {
			examName = "your exam"
		}
		if seconds, ok := data.PayloadInt(p, "timeSeconds"); ok {
			message = fmt.Sprintf("%s — time %s", examName, utils.FormatDuration(seconds))
			if rank, ok := data.PayloadInt(p, "overallRank"); ok {
				message += fmt.Sprintf(", overall rank %d", rank)
			}
		} else {
			message = fmt.Sprintf("A new result for %s is available.", examName)
		}

	case data.COACH_TEST_RESULT_REGISTERED:
		coachName := data.PayloadString(p, "coachName")
		testName := data.PayloadString(p, "testName")
		if coachName == "" {
			title = "Your coach registered a test result"
		} else {
			title = fmt.Sprintf("%s registered a test result", coachName)
		}
		if testName == "" {
			testName = "your test"
		}
		if value := data.PayloadString(p, "value"); value != "" {
			message = fmt.Sprintf("%s — result %s", testName, value)
		} else {
			message = fmt.Sprintf("A new result for %s is available.", testName)
		}

	case data.COACH_TRAINING_PLAN_ASSIGNED:
		coachName := data.PayloadString(p, "coachName")
		planName := data.PayloadString(p, "planName")
		if coachName == "" {
			title = "Your coach assigned you a training plan"
		} else {
			title = fmt.Sprintf("%s assigned you a training plan", coachName)
		}
		if planName == "" {
			message = "A new training plan is waiting for you."
		} else {
			message = fmt.Sprintf("Plan %s is now active.", planName)
		}

	case data.STUDENT_TEST_RESULT_REGISTERED:
		studentName := orGeneric(data.PayloadString(p, "studentName"), "A student")
		testName := data.PayloadString(p, "testName")
		title = fmt.Sprintf("%s registered a test result", studentName)
		if testName == "" {
			message = "A new self-reported test result is available."
		} else {
			message = fmt.Sprintf("%s reported a result for %s.", studentName, testName)
		}

	case data.STUDENT_EXAM_ENROLLED:
		studentName := orGeneric(data.PayloadString(p, "studentName"), "A student")
		examName := data.PayloadString(p, "examName")
		title = fmt.Sprintf("%s enrolled in an exam", studentName)
		if examName == "" {
			message = "A new exam enrollment was registered."
		} else {
			message = fmt.Sprintf("%s enrolled in %s.", studentName, examName)
		}

	case data.STUDENT_SUBSCRIPTION_PURCHASED:
		studentName := orGeneric(data.PayloadString(p, "studentName"), "A student")
		planName := data.PayloadString(p, "planName")
		title = fmt.Sprintf("%s purchased a subscription", studentName)
		if planName == "" {
			message = "A new subscription is active."
		} else {
			message = fmt.Sprintf("%s subscribed to %s.", studentName, planName)
		}

	case data.ADMIN_USER_REGISTERED:
		title = "New user registered"
		name := orGeneric(data.PayloadString(p, "userName"), "A new user")
		if email := data.PayloadString(p, "email"); email != "" {
			message = fmt.Sprintf("%s (%s) joined the platform.", name, email)
		} else {
			message = fmt.Sprintf("%s joined the platform.", name)
		}

	case data.ADMIN_SUBSCRIPTION_CREATED:
		title = "New subscription created"
		name := orGeneric(data.PayloadString(p, "userName"), "A user")
		if planName := data.PayloadString(p, "planName"); planName != "" {
			message = fmt.Sprintf("%s subscribed to %s.", name, planName)
		} else {
			message = fmt.Sprintf("%s created a subscription.", name)
		}

	case data.ADMIN_PAYMENT_RECEIVED:
		title = "Payment received"
		name := orGeneric(data.PayloadString(p, "userName"), "A user")
		if amount := data.PayloadString(p, "amount"); amount != "" {
			message = fmt.Sprintf("Payment of %s received from %s.", amount, name)
		} else {
			message = fmt.Sprintf("A payment from %s was received.", name)
		}

	case data.SYSTEM_MAINTENANCE:
		title = "Scheduled maintenance"
		message = orGeneric(data.PayloadString(p, "message"), "The platform will be briefly unavailable for maintenance.")

	default:
		title = "New notification"
		message = "You have a new notification."
	}
	return title, message
}

// expandTemplate substitutes {field} placeholders in a redirect template
// with payload values. Placeholders without a payload value are left as-is;
// an empty template yields an empty URL.
func expandTemplate(template string, payload map[string]any) string {
	if template == "" || payload == nil {
		return template
	}
	out := template
	for key, value := range payload {
		s, ok := value.(string)
		if !ok {
			continue
		}
		out = strings.ReplaceAll(out, "{"+key+"}", s)
	}
	return out
}

func orGeneric(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
