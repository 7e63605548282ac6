package logging

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"

	DefaultLevel = "warn"

	unknownFormatErrorFormat = "unknown logging format %q"
	unknownLevelErrorFormat  = "unknown logging level %q: %w"
)

// New builds a logger writing to writer. Blank level and format fall back to
// warn and console.
func New(level string, format string, writer io.Writer) (*zap.Logger, error) {
	parsedLevel, levelErr := parseLevel(level)
	if levelErr != nil {
		return nil, levelErr
	}

	encoderConfiguration := zap.NewProductionEncoderConfig()
	encoderConfiguration.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatConsole:
		encoderConfiguration.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfiguration)
	case FormatJSON:
		encoder = zapcore.NewJSONEncoder(encoderConfiguration)
	default:
		return nil, fmt.Errorf(unknownFormatErrorFormat, format)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(writer), zap.NewAtomicLevelAt(parsedLevel))
	return zap.New(core), nil
}

func parseLevel(level string) (zapcore.Level, error) {
	trimmed := strings.TrimSpace(level)
	if trimmed == "" {
		trimmed = DefaultLevel
	}
	parsed, err := zapcore.ParseLevel(strings.ToLower(trimmed))
	if err != nil {
		return zapcore.InvalidLevel, fmt.Errorf(unknownLevelErrorFormat, level, err)
	}
	return parsed, nil
}
