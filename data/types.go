package data

import (
	"encoding/json"
	"time"
)

// Session is the identity the host application authenticated. It is treated
// as read-only here; changes to it drive connect/disconnect and store
// namespace swaps.
type Session struct {
	UserID    string `validate:"required" json:"userId"`
	Role      string `validate:"required,oneof=FITNESS_STUDENT FITNESS_COACH ADMIN" json:"role"`
	AuthToken string `validate:"required" json:"authToken"`
}

// Valid reports whether the session carries enough identity to open a
// channel. Role is checked by the routers, not here.
func (s Session) Valid() bool {
	return s.UserID != "" && s.AuthToken != ""
}

// Frame is the wire envelope for both directions of the websocket channel.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// DomainEvent is a decoded inbound event. Ephemeral: it exists only in
// memory as a signal, never persisted as-is.
type DomainEvent struct {
	EventType string         `json:"eventType"`
	Payload   map[string]any `json:"payload"`
	Timestamp string         `json:"timestamp"`
}

// CatalogEntry classifies one event type. Immutable, loaded at process
// start from the event catalog.
type CatalogEntry struct {
	Priority         string `json:"priority"`
	Category         string `json:"category"`
	Icon             string `json:"icon"`
	Color            string `json:"color"`
	RedirectTemplate string `json:"redirectTemplate,omitempty"`
	ActionLabel      string `json:"actionLabel,omitempty"`
}

// NotificationDraft is what a role router hands to the store. The store
// fills in identity, classification and timestamps.
type NotificationDraft struct {
	EventType string         `validate:"required" json:"eventType"`
	Title     string         `validate:"required" json:"title"`
	Message   string         `validate:"required" json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	ActionURL string         `json:"actionUrl,omitempty"`
}

// StoredNotification is the persisted per-user record. Created exclusively
// by the notification store, mutated only through its read-state operations.
type StoredNotification struct {
	Id          string         `json:"id"`
	UserID      string         `json:"userId"`
	UserRole    string         `json:"userRole"`
	Type        string         `json:"type"`
	EventType   string         `json:"eventType"`
	Title       string         `json:"title"`
	Message     string         `json:"message"`
	Data        map[string]any `json:"data,omitempty"`
	IsRead      bool           `json:"isRead"`
	ReadAt      *time.Time     `json:"readAt,omitempty"`
	Priority    string         `json:"priority"`
	Category    string         `json:"category"`
	CreatedAt   time.Time      `json:"createdAt"`
	ActionURL   string         `json:"actionUrl,omitempty"`
	ActionLabel string         `json:"actionLabel,omitempty"`
}

// NotificationFilter narrows a store query. All supplied predicates are
// ANDed; nil/empty fields are ignored.
type NotificationFilter struct {
	IsRead    *bool      `json:"isRead,omitempty"`
	Category  string     `json:"category,omitempty"`
	Priority  string     `json:"priority,omitempty"`
	EventType string     `json:"eventType,omitempty"`
	DateFrom  *time.Time `json:"dateFrom,omitempty"`
	DateTo    *time.Time `json:"dateTo,omitempty"`
}

// NotificationStats is derived from the stored collection on every read,
// never cached independently.
type NotificationStats struct {
	Total       int            `json:"total"`
	Unread      int            `json:"unread"`
	ByCategory  map[string]int `json:"byCategory"`
	ByPriority  map[string]int `json:"byPriority"`
	RecentCount int            `json:"recentCount"`
}

// ConnectionStatus is the reactive connection-health value surfaced to
// consumers instead of thrown errors.
type ConnectionStatus struct {
	IsConnected          bool       `json:"isConnected"`
	LastConnectedAt      *time.Time `json:"lastConnectedAt,omitempty"`
	LastDisconnectedAt   *time.Time `json:"lastDisconnectedAt,omitempty"`
	ReconnectAttempts    int        `json:"reconnectAttempts"`
	MaxReconnectAttempts int        `json:"maxReconnectAttempts"`
}

// NotificationSettings is the external preferences collaborator. It gates
// toast delivery only; persistence is never gated by it.
type NotificationSettings struct {
	Enabled        bool            `json:"enabled"`
	SoundEnabled   bool            `json:"soundEnabled"`
	DesktopEnabled bool            `json:"desktopEnabled"`
	EmailEnabled   bool            `json:"emailEnabled"`
	RoleSettings   map[string]bool `json:"roleSettings,omitempty"`
}

// EventTypeEnabled reports whether toasts for the given event type are
// allowed. Absent keys default to enabled, so a partially configured
// settings map never silences new event types.
func (s NotificationSettings) EventTypeEnabled(eventType string) bool {
	if !s.Enabled {
		return false
	}
	if s.RoleSettings == nil {
		return true
	}
	enabled, ok := s.RoleSettings[eventType]
	if !ok {
		return true
	}
	return enabled
}

// EventHubNotificationEnvelope is the message shape consumed from the Event
// Hub source in server-colocated deployments.
type EventHubNotificationEnvelope struct {
	EventType string         `validate:"required" json:"eventType"`
	Payload   map[string]any `validate:"required" json:"payload"`
	Timestamp string         `json:"timestamp"`
}
