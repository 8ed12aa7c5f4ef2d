package logger

import (
	"bytes"
	"os"
	"time"

	"eon-notify/config"
	"eon-notify/data"

	ai "github.com/microsoft/ApplicationInsights-Go/appinsights"
	"github.com/microsoft/ApplicationInsights-Go/appinsights/contracts"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Log *Logger

// TestSink holds a buffer and a logger for testing.
type TestSink struct {
	Buffer *bytes.Buffer
	Logger *Logger
}

type Logger struct {
	zapLogger *zap.Logger
	aiClient  ai.TelemetryClient
	useAzure  bool
	minLevel  zapcore.Level
}

// LogPayload is the structured schema shared by every log line, so local
// file logs and cloud logs stay queryable with the same fields.
type LogPayload struct {
	Component     string    // e.g. "Connection Manager"
	Operation     string    // e.g. "Connect"
	Message       string    // human-readable message
	CorrelationId string    // trace ID for distributed tracing
	UserId        string    // optional
	EventType     string    // optional, the domain event being handled
	Error         error     // optional
	Timestamp     time.Time // auto-populated
}

func Init() {
	Log = NewLogger()
}

// NewLogger initializes a Logger based on the environment.
//
// Behavior:
//   - If LOG_METHOD is "azure" and a valid Application Insights
//     instrumentation key is provided, log lines are sent to Azure
//     Application Insights as trace telemetry with the payload fields
//     attached as custom properties.
//   - Otherwise structured JSON logs are written to a rotating local file
//     (lumberjack: 5 backups, 30 day retention, compressed) and teed to
//     stdout through a console encoder.
func NewLogger() *Logger {
	cfg := config.LoadConfig()
	minLevel := getLogLevel()

	if cfg.LogMethod == data.LOG_METHOD_AZURE && cfg.AppInsightsInstrumentationKey != "" {
		client := ai.NewTelemetryClient(cfg.AppInsightsInstrumentationKey)
		return &Logger{aiClient: client, useAzure: true, minLevel: minLevel}
	}

	fileWriter := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.LogFilePath,
		MaxSize:    cfg.MaxLogFileSize,
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	})
	consoleWriter := zapcore.AddSync(os.Stdout)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), fileWriter, minLevel),
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), consoleWriter, minLevel),
	)

	return &Logger{zapLogger: zap.New(core), useAzure: false, minLevel: minLevel}
}

// NewTestSink returns a logger writing JSON lines into an in-memory buffer,
// for assertions in tests.
func NewTestSink(level zapcore.Level) *TestSink {
	buf := &bytes.Buffer{}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(buf), level)

	return &TestSink{
		Buffer: buf,
		Logger: &Logger{zapLogger: zap.New(core), useAzure: false, minLevel: level},
	}
}

// Debug logs a debug-level message with a structured payload.
func (l *Logger) Debug(payload LogPayload) { l.log(zapcore.DebugLevel, ai.Verbose, payload) }

// Info logs an informational-level message with a structured payload.
func (l *Logger) Info(payload LogPayload) { l.log(zapcore.InfoLevel, ai.Information, payload) }

// Warn logs a warning-level message with a structured payload.
func (l *Logger) Warn(payload LogPayload) { l.log(zapcore.WarnLevel, ai.Warning, payload) }

// Error logs an error-level message with a structured payload.
func (l *Logger) Error(payload LogPayload) { l.log(zapcore.ErrorLevel, ai.Error, payload) }

// log routes a payload either to Application Insights or to the zap cores,
// keeping the same field schema on both sinks.
func (l *Logger) log(level zapcore.Level, severity contracts.SeverityLevel, payload LogPayload) {
	if level < l.minLevel {
		return
	}
	payload.Timestamp = time.Now()

	if l.useAzure {
		trace := ai.NewTraceTelemetry(payload.Message, severity)
		trace.Properties["service"] = data.SERVICE_NAME
		trace.Properties["component"] = payload.Component
		trace.Properties["operation"] = payload.Operation
		trace.Properties["correlationId"] = payload.CorrelationId
		trace.Properties["userId"] = payload.UserId
		trace.Properties["eventType"] = payload.EventType
		if payload.Error != nil {
			trace.Properties["error"] = payload.Error.Error()
		}
		l.aiClient.Track(trace)
		return
	}

	fields := []zap.Field{
		zap.String("service", data.SERVICE_NAME),
		zap.String("component", payload.Component),
		zap.String("operation", payload.Operation),
		zap.String("correlationId", payload.CorrelationId),
		zap.String("userId", payload.UserId),
		zap.String("eventType", payload.EventType),
		zap.Time("timestamp", payload.Timestamp),
	}
	if payload.Error != nil {
		fields = append(fields, zap.Error(payload.Error))
	}

	switch level {
	case zapcore.DebugLevel:
		l.zapLogger.Debug(payload.Message, fields...)
	case zapcore.InfoLevel:
		l.zapLogger.Info(payload.Message, fields...)
	case zapcore.WarnLevel:
		l.zapLogger.Warn(payload.Message, fields...)
	default:
		l.zapLogger.Error(payload.Message, fields...)
	}
}

// Get log level from config
func getLogLevel() zapcore.Level {
	switch config.LoadConfig().LogLevel {
	case data.DEBUG:
		return zapcore.DebugLevel
	case data.INFO:
		return zapcore.InfoLevel
	case data.WARN:
		return zapcore.WarnLevel
	case data.ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Flush ensures logs are written before shutdown
func (l *Logger) Flush() {
	if l.useAzure {
		l.aiClient.Channel().Flush()
		return
	}
	_ = l.zapLogger.Sync()
}
