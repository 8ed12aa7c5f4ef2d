// Package routingService turns raw domain events into persisted
// notifications and toasts, one router per role. A router is active only
// while the current session's role matches; it filters each event by
// recipient identity, formats a human-readable title/message, always
// persists relevant events, and fires a toast only when the user's
// notification settings allow it.
package routingService

import (
	"errors"
	"strings"

	"eon-notify/catalog"
	"eon-notify/connection"
	"eon-notify/data"
	"eon-notify/logger"
	notificationService "eon-notify/services/notification"
	settingsService "eon-notify/services/settings"
	"eon-notify/toast"
)

// SubscriptionSet returns the event types a role listens to. Broadcast
// system events are included for every role.
func SubscriptionSet(role string) []string {
	switch role {
	case data.ROLE_STUDENT:
		return []string{
			data.COACH_EXAM_RESULT_REGISTERED,
			data.COACH_TEST_RESULT_REGISTERED,
			data.COACH_TRAINING_PLAN_ASSIGNED,
			data.SYSTEM_MAINTENANCE,
		}
	case data.ROLE_COACH:
		return []string{
			data.STUDENT_TEST_RESULT_REGISTERED,
			data.STUDENT_EXAM_ENROLLED,
			data.STUDENT_SUBSCRIPTION_PURCHASED,
			data.SYSTEM_MAINTENANCE,
		}
	case data.ROLE_ADMIN:
		return []string{
			data.ADMIN_USER_REGISTERED,
			data.ADMIN_SUBSCRIPTION_CREATED,
			data.ADMIN_PAYMENT_RECEIVED,
			data.SYSTEM_MAINTENANCE,
		}
	default:
		return nil
	}
}

// RoleRouter wires one session's role to the connection manager. Start
// subscribes the role's event set; Stop removes the subscriptions again.
// Each delivered event instance reaches handle exactly once.
type RoleRouter struct {
	manager       *connection.Manager
	notifications notificationService.NotificationService
	settings      settingsService.SettingsService
	toaster       toast.Toaster

	session data.Session
	subIds  map[string]int
}

func NewRoleRouter(manager *connection.Manager, notifications notificationService.NotificationService, settings settingsService.SettingsService, toaster toast.Toaster) (*RoleRouter, error) {
	if manager == nil || notifications == nil || settings == nil {
		return nil, errors.New("manager, notification service and settings service are required")
	}
	return &RoleRouter{
		manager:       manager,
		notifications: notifications,
		settings:      settings,
		toaster:       toaster,
		subIds:        map[string]int{},
	}, nil
}

// Start activates the router for the session's role. Starting an already
// started router re-subscribes for the new session.
func (r *RoleRouter) Start(session data.Session) error {
	eventTypes := SubscriptionSet(session.Role)
	if eventTypes == nil {
		return errors.New("unknown role: " + session.Role)
	}
	r.Stop()
	r.session = session
	for _, eventType := range eventTypes {
		r.subIds[eventType] = r.manager.Subscribe(eventType, r.handle)
	}
	logger.Log.Info(logger.LogPayload{
		Component: "Role Router",
		Operation: "Start",
		Message:   "Routing " + session.Role + " events for userId: " + session.UserID,
		UserId:    session.UserID,
	})
	return nil
}

// Stop deactivates the router.
func (r *RoleRouter) Stop() {
	for eventType, id := range r.subIds {
		r.manager.Unsubscribe(eventType, id)
		delete(r.subIds, eventType)
	}
}

func (r *RoleRouter) handle(evt data.DomainEvent) {
	if !r.relevant(evt) {
		return
	}

	title, message := formatEvent(evt)
	entry, ok := catalog.Lookup(evt.EventType)
	if !ok {
		// The subscription set is catalog-driven, so this should not
		// happen; ignore rather than guess at classification.
		logger.Log.Warn(logger.LogPayload{
			Component: "Role Router",
			Operation: "Handle",
			Message:   "Event type missing from catalog, ignoring",
			EventType: evt.EventType,
			UserId:    r.session.UserID,
		})
		return
	}

	err := r.notifications.Add(data.NotificationDraft{
		EventType: evt.EventType,
		Title:     title,
		Message:   message,
		Data:      evt.Payload,
		ActionURL: expandTemplate(entry.RedirectTemplate, evt.Payload),
	})
	if err != nil {
		logger.Log.Error(logger.LogPayload{
			Component: "Role Router",
			Operation: "Handle",
			Message:   "Failed to store notification",
			Error:     err,
			EventType: evt.EventType,
			UserId:    r.session.UserID,
		})
	}

	r.maybeToast(evt, entry, title, message)
}

// relevant applies the recipient filter: coach-authored events target the
// student in payload.userId, student-authored events target the coach in
// payload.coachId, and admin/system events are role-targeted broadcasts.
func (r *RoleRouter) relevant(evt data.DomainEvent) bool {
	switch {
	case strings.HasPrefix(evt.EventType, "coach:"):
		return data.PayloadString(evt.Payload, "userId") == r.session.UserID
	case strings.HasPrefix(evt.EventType, "student:"):
		return data.PayloadString(evt.Payload, "coachId") == r.session.UserID
	default:
		return true
	}
}

// maybeToast fires the ephemeral toast when settings allow it. Persistence
// already happened; muting toasts never mutes the notification center.
func (r *RoleRouter) maybeToast(evt data.DomainEvent, entry data.CatalogEntry, title, message string) {
	if r.toaster == nil {
		return
	}
	settings, err := r.settings.FindByUser(r.session.UserID)
	if err != nil {
		logger.Log.Warn(logger.LogPayload{
			Component: "Role Router",
			Operation: "MaybeToast",
			Message:   "Failed to load settings, defaulting to enabled for userId: " + r.session.UserID,
			Error:     err,
			UserId:    r.session.UserID,
		})
		settings = settingsService.DefaultSettings()
	}
	if !settings.EventTypeEnabled(evt.EventType) {
		return
	}

	r.toaster.Show(toast.Toast{
		Title:       title,
		Description: message,
		Duration:    toast.DurationFor(entry.Priority),
		Important:   toast.Important(entry.Priority),
		ActionURL:   expandTemplate(entry.RedirectTemplate, evt.Payload),
		ActionLabel: entry.ActionLabel,
	})
}
