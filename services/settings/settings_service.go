package settingsService

import (
	"errors"
	"sync"

	"eon-notify/data"
	"eon-notify/logger"

	"github.com/go-playground/validator/v10"
)

// SettingsService exposes the external notification-preferences
// collaborator. The routers read it to gate toast delivery; persistence is
// never gated by it.
type SettingsService interface {
	// FindByUser returns the user's notification settings, or default
	// (all enabled) settings when none have been stored.
	FindByUser(userId string) (data.NotificationSettings, error)
	// Update replaces the user's settings.
	Update(userId string, settings data.NotificationSettings) error
}

// DefaultSettings is what a user gets before they have saved preferences.
func DefaultSettings() data.NotificationSettings {
	return data.NotificationSettings{
		Enabled:        true,
		SoundEnabled:   true,
		DesktopEnabled: true,
		EmailEnabled:   false,
	}
}

// SettingsServiceImpl is an in-memory implementation. The host application
// typically substitutes one backed by its own preferences API.
type SettingsServiceImpl struct {
	Validate *validator.Validate

	mu       sync.RWMutex
	settings map[string]data.NotificationSettings
}

func NewSettingsServiceImpl(validate *validator.Validate) (SettingsService, error) {
	if validate == nil {
		return nil, errors.New("validator instance cannot be nil")
	}
	return &SettingsServiceImpl{
		Validate: validate,
		settings: map[string]data.NotificationSettings{},
	}, nil
}

func (t *SettingsServiceImpl) FindByUser(userId string) (data.NotificationSettings, error) {
	t.mu.RLock()
	stored, ok := t.settings[userId]
	t.mu.RUnlock()
	if !ok {
		logger.Log.Debug(logger.LogPayload{
			Component: "Settings Service",
			Operation: "FindByUser",
			Message:   "No stored settings, using defaults for userId: " + userId,
			UserId:    userId,
		})
		return DefaultSettings(), nil
	}
	return stored, nil
}

func (t *SettingsServiceImpl) Update(userId string, settings data.NotificationSettings) error {
	if userId == "" {
		return errors.New("userId cannot be empty")
	}
	t.mu.Lock()
	t.settings[userId] = settings
	t.mu.Unlock()
	logger.Log.Info(logger.LogPayload{
		Component: "Settings Service",
		Operation: "Update",
		Message:   "Updated notification settings for userId: " + userId,
		UserId:    userId,
	})
	return nil
}
