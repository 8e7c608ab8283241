package logger

import (
	"os"

	"cake-tracker/internal/domain"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 日志字段名，服务内统一使用
const (
	FieldIncidentID    = "incident_id"
	FieldPersonName    = "person_name"
	FieldCakeDelivered = "cake_delivered"
	FieldEventType     = "event_type"
)

// NewLogger builds the process logger.
// level: debug | info | warn | error (default info)
// format: json (production, ISO8601 "timestamp") | console
func NewLogger(level string, format string, serviceName string) (*zap.Logger, error) {
	atom := zap.NewAtomicLevelAt(parseLevel(level))

	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}
	if format == "console" {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = atom

	l, err := config.Build()
	if err != nil {
		return nil, err
	}

	fields := make([]zap.Field, 0, 2)
	if serviceName != "" {
		fields = append(fields, zap.String("service_name", serviceName))
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		fields = append(fields, zap.String("hostname", host))
	}
	return l.With(fields...), nil
}

// Incident 事件日志字段：id、姓名、是否已送蛋糕
func Incident(inc domain.Incident) []zap.Field {
	return []zap.Field{
		zap.String(FieldIncidentID, inc.ID),
		zap.String(FieldPersonName, inc.PersonName),
		zap.Bool(FieldCakeDelivered, inc.CakeDelivered),
	}
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
