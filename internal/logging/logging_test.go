package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/temirov/patcher/internal/logging"
)

func TestNew_FiltersByLevel(t *testing.T) {
	testCases := []struct {
		name        string
		level       string
		expectDebug bool
		expectWarn  bool
	}{
		{name: "blank defaults to warn", level: "", expectDebug: false, expectWarn: true},
		{name: "debug shows everything", level: "debug", expectDebug: true, expectWarn: true},
		{name: "error hides warnings", level: "ERROR", expectDebug: false, expectWarn: false},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			var buffer bytes.Buffer
			logger, err := logging.New(testCase.level, logging.FormatConsole, &buffer)
			if err != nil {
				t.Fatalf("new logger: %v", err)
			}
			logger.Debug("debug message")
			logger.Warn("warn message")
			_ = logger.Sync()

			output := buffer.String()
			if strings.Contains(output, "debug message") != testCase.expectDebug {
				t.Fatalf("debug visibility mismatch in %q", output)
			}
			if strings.Contains(output, "warn message") != testCase.expectWarn {
				t.Fatalf("warn visibility mismatch in %q", output)
			}
		})
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buffer bytes.Buffer
	logger, err := logging.New("info", logging.FormatJSON, &buffer)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("stage finished")
	_ = logger.Sync()

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buffer.Bytes()), &record); err != nil {
		t.Fatalf("decode %q: %v", buffer.String(), err)
	}
	if record["msg"] != "stage finished" {
		t.Fatalf("unexpected record %v", record)
	}
}

func TestNew_RejectsUnknownSettings(t *testing.T) {
	if _, err := logging.New("loud", logging.FormatConsole, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if _, err := logging.New("info", "xml", &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
