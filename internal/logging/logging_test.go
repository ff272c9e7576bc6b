package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level string
		want  logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"info", logrus.InfoLevel},
		{"WARN", logrus.WarnLevel},
		{" error ", logrus.ErrorLevel},
	}
	for _, tt := range tests {
		logger, err := New(tt.level, FormatText, WithOutput(&bytes.Buffer{}))
		if err != nil {
			t.Fatalf("New(%q) error = %v", tt.level, err)
		}
		if logger.GetLevel() != tt.want {
			t.Errorf("New(%q) level = %v, want %v", tt.level, logger.GetLevel(), tt.want)
		}
	}

	if _, err := New("loud", FormatText); err == nil {
		t.Error("New with invalid level should fail")
	}
}

func TestNewFormats(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("info", FormatJSON, WithOutput(&buf))
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	logger.WithField("doc", "a.json").Info("applied")

	line := buf.String()
	if got := gjson.Get(line, "doc").String(); got != "a.json" {
		t.Errorf("doc field = %q in %s", got, line)
	}
	if got := gjson.Get(line, "msg").String(); got != "applied" {
		t.Errorf("msg field = %q in %s", got, line)
	}

	buf.Reset()
	logger, err = New("info", FormatText, WithOutput(&buf))
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	logger.WithField("doc", "a.json").Info("applied")
	if !strings.Contains(buf.String(), "doc=a.json") {
		t.Errorf("text output = %q", buf.String())
	}

	_, err = New("info", "xml")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("New with xml format error = %v, want ErrUnknownFormat", err)
	}
}

func TestErrorOutput(t *testing.T) {
	var out, errOut bytes.Buffer
	logger, err := New("debug", FormatText, WithOutput(&out), WithErrorOutput(&errOut))
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	logger.Debug("step applied")
	logger.Warn("step failed")

	if !strings.Contains(out.String(), "step applied") || strings.Contains(out.String(), "step failed") {
		t.Errorf("main output = %q", out.String())
	}
	if !strings.Contains(errOut.String(), "step failed") || strings.Contains(errOut.String(), "step applied") {
		t.Errorf("error output = %q", errOut.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("warn", FormatText, WithOutput(&buf))
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buf.String())
	}
}
