package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	FieldApp = "app"
	// FieldOracle is the structured log field key for the scoring oracle backend.
	FieldOracle = "oracle"
	// FieldModel is the structured log field key for the oracle model identifier.
	FieldModel = "oracle_model"
	// FieldRequestID carries the search request id through every log line of a request.
	FieldRequestID  = "request_id"
	FieldProviderID = "provider_id"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger, defaulting to
// a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// OracleFields describes the oracle backend and model. Empty values are skipped.
func OracleFields(oracle, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldOracle, Value: oracle},
		StringField{Key: FieldModel, Value: model},
	)
}

func WithOracle(logger *zap.Logger, oracle, model string) *zap.Logger {
	return WithFields(logger, OracleFields(oracle, model)...)
}

// WithRequest tags every entry with the search request id.
func WithRequest(logger *zap.Logger, requestID string) *zap.Logger {
	return WithFields(logger, StringFields(StringField{Key: FieldRequestID, Value: requestID})...)
}

// OrNop returns logger, or a no-op logger when it is nil.
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
