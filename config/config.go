package config

import (
	"os"
	"strconv"
)

type Config struct {
	Environment                   string
	Port                          string
	EventChannelURL               string
	MaxReconnectAttempts          int
	ReconnectFloorMs              int
	ReconnectCeilingMs            int
	StorageBackend                string
	StorageDir                    string
	MaxNotifications              int
	RetentionDays                 int
	RedisHost                     string
	RedisPort                     int
	RedisUsername                 string
	RedisPassword                 string
	RedisTLS                      bool
	MongoHost                     string
	MongoPort                     int
	MongoDBName                   string
	MongoUserName                 string
	MongoPassword                 string
	EventHubNameSpaceConString    string
	EventHubNotificationEventName string
	AllowedOrigins                string
	LogLevel                      string
	LogMethod                     string
	LogFilePath                   string
	MaxLogFileSize                int
	AppInsightsInstrumentationKey string
}

func LoadConfig() *Config {
	return &Config{
		Environment:                   GetEnv("ENV", "development"),
		Port:                          GetEnv("PORT", "8082"),
		EventChannelURL:               GetEnv("EVENT_CHANNEL_URL", "ws://localhost:8080/ws"),
		MaxReconnectAttempts:          GetEnvInt("MAX_RECONNECT_ATTEMPTS", 5),
		ReconnectFloorMs:              GetEnvInt("RECONNECT_FLOOR_MS", 1000),
		ReconnectCeilingMs:            GetEnvInt("RECONNECT_CEILING_MS", 5000),
		StorageBackend:                GetEnv("STORAGE_BACKEND", "file"),
		StorageDir:                    GetEnv("STORAGE_DIR", "./storage"),
		MaxNotifications:              GetEnvInt("MAX_NOTIFICATIONS", 1000),
		RetentionDays:                 GetEnvInt("RETENTION_DAYS", 30),
		RedisHost:                     GetEnv("REDIS_HOST", "localhost"),
		RedisPort:                     GetEnvInt("REDIS_PORT", 6379),
		RedisUsername:                 GetEnv("REDIS_USERNAME", "default"),
		RedisPassword:                 GetEnv("REDIS_PASSWORD", ""),
		RedisTLS:                      GetEnvBool("REDIS_TLS", false),
		MongoHost:                     GetEnv("MONGO_HOST", "localhost"),
		MongoPort:                     GetEnvInt("MONGO_PORT", 27017),
		MongoDBName:                   GetEnv("MONGO_DB_NAME", "eon_notify"),
		MongoUserName:                 GetEnv("MONGO_USER_NAME", ""),
		MongoPassword:                 GetEnv("MONGO_PASSWORD", ""),
		EventHubNameSpaceConString:    GetEnv("EVENT_HUB_NAMESPACE_CON_STRING", ""),
		EventHubNotificationEventName: GetEnv("EVENT_HUB_NOTIFICATION_EVENT_NAME", ""),
		AllowedOrigins:                GetEnv("ALLOWED_ORIGINS", "*"),
		LogLevel:                      GetEnv("LOG_LEVEL", ""),
		LogMethod:                     GetEnv("LOG_METHOD", "file"),
		LogFilePath:                   GetEnv("LOG_FILE_PATH", "./logs/app.log"),
		MaxLogFileSize:                GetEnvInt("MAX_LOG_FILE_SIZE", 10485760),
		AppInsightsInstrumentationKey: GetEnv("APP_INSIGHTS_INSTRUMENTATION_KEY", ""),
	}
}

func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func GetEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func GetEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
