package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a new structured logger
func NewLogger(serviceName, level string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.InitialFields = map[string]interface{}{
		"service": serviceName,
	}
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, err
		}
		config.Level = lvl
	}

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return logger, nil
}

// WithDelivery returns a logger tagged with the broker delivery identifiers
func WithDelivery(logger *zap.Logger, deliveryTag uint64, messageID string) *zap.Logger {
	fields := []zap.Field{zap.Uint64("delivery_tag", deliveryTag)}
	if messageID != "" {
		fields = append(fields, zap.String("message_id", messageID))
	}
	return logger.With(fields...)
}

// WithUserID returns a logger with user_id field
func WithUserID(logger *zap.Logger, userID string) *zap.Logger {
	return logger.With(zap.String("user_id", userID))
}
