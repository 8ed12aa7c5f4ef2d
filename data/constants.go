package data

// Application constants
const SERVICE_NAME = "eon-notify"
const PRODUCTION_ENV = "production"
const DEFAULT_ORIGINS = "http://127.0.0.1:3000,http://localhost:3000"

// User roles as carried in the session supplied by the host application.
const (
	ROLE_STUDENT = "FITNESS_STUDENT"
	ROLE_COACH   = "FITNESS_COACH"
	ROLE_ADMIN   = "ADMIN"
)

// Domain event types delivered on the event channel, organized in three
// directions: system -> role, student-authored actions visible to their
// coach, and coach-authored actions visible to their student.
const (
	// System -> admin
	ADMIN_USER_REGISTERED      = "admin:user:registered"
	ADMIN_SUBSCRIPTION_CREATED = "admin:subscription:created"
	ADMIN_PAYMENT_RECEIVED     = "admin:payment:received"

	// Student -> coach
	STUDENT_TEST_RESULT_REGISTERED = "student:test-result:registered"
	STUDENT_EXAM_ENROLLED          = "student:exam:enrolled"
	STUDENT_SUBSCRIPTION_PURCHASED = "student:subscription:purchased"

	// Coach -> student
	COACH_EXAM_RESULT_REGISTERED = "coach:exam-result:registered"
	COACH_TEST_RESULT_REGISTERED = "coach:test-result:registered"
	COACH_TRAINING_PLAN_ASSIGNED = "coach:training-plan:assigned"

	// Broadcast / resource events
	SYSTEM_MAINTENANCE = "system:maintenance"
	USER_PHOTO_UPDATED = "user:photo:updated"
)

// Client -> server wire events
const (
	JOIN_ROOM     = "joinRoom"
	REFRESH_PHOTO = "refreshPhoto"
)

// Stored notification source type. Every record created by this pipeline
// originates from the websocket channel.
const NOTIFICATION_TYPE_WEBSOCKET = "websocket"

// Notification priorities
const (
	PRIORITY_LOW    = "low"
	PRIORITY_MEDIUM = "medium"
	PRIORITY_HIGH   = "high"
	PRIORITY_URGENT = "urgent"
)

// Notification categories
const (
	CATEGORY_EXAM         = "exam"
	CATEGORY_TEST         = "test"
	CATEGORY_SUBSCRIPTION = "subscription"
	CATEGORY_PAYMENT      = "payment"
	CATEGORY_SYSTEM       = "system"
	CATEGORY_OTHER        = "other"
)

// Storage backends for the notification repository
const (
	STORAGE_FILE  = "file"
	STORAGE_REDIS = "redis"
	STORAGE_MONGO = "mongo"
)

const (
	LOG_METHOD_FILE  = "file"
	LOG_METHOD_AZURE = "azure"
)

// Log Levels
const (
	DEBUG = "debug"
	INFO  = "info"
	WARN  = "warn"
	ERROR = "error"
)

const CORRELATION_ID = "correlationId"
