package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func parseEntries(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("failed to parse log line as JSON: %v\nLine: %s", err, line)
		}
		out = append(out, entry)
	}
	return out
}

func TestLogger_BaseFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf).With(F("service", "rolegate"))

	logger.Info(context.Background(), "login", F("username", "admin"))

	entries := parseEntries(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e["service"] != "rolegate" || e["username"] != "admin" {
		t.Errorf("missing fields: %v", e)
	}
	if e["level"] != "info" || e["msg"] != "login" {
		t.Errorf("level/msg = %v/%v", e["level"], e["msg"])
	}
	if _, ok := e["timestamp"].(string); !ok {
		t.Error("timestamp missing")
	}
}

func TestLogger_WithDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := NewLoggerWithWriter("info", &buf)
	_ = parent.With(F("child", true))

	parent.Info(context.Background(), "parent")
	if e := parseEntries(t, &buf)[0]; e["child"] != nil {
		t.Errorf("parent picked up child field: %v", e)
	}
}

func TestLogger_SensitiveFieldsRedacted(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("debug", &buf).With(F("JWT_SECRET", "base-secret"))

	logger.Info(context.Background(), "attempt",
		F("password", "admin123"),
		F("token", "eyJhbGciOi"),
		F("Authorization", "Bearer eyJhbGciOi"),
		F("username", "admin"),
	)

	out := buf.String()
	for _, leaked := range []string{"admin123", "eyJhbGciOi", "base-secret"} {
		if strings.Contains(out, leaked) {
			t.Errorf("log output leaked %q: %s", leaked, out)
		}
	}
	e := parseEntries(t, &buf)[0]
	if e["password"] != "[REDACTED]" || e["Authorization"] != "[REDACTED]" {
		t.Errorf("redaction missing: %v", e)
	}
	if e["username"] != "admin" {
		t.Errorf("username = %v, want admin", e["username"])
	}
}

func TestLogger_ErrorValuesRendered(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerWithWriter("info", &buf).Error(context.Background(), "failed", F("error", errors.New("boom")))

	if e := parseEntries(t, &buf)[0]; e["error"] != "boom" {
		t.Errorf("error = %v, want boom", e["error"])
	}
}

func TestLogger_ReservedKeysWin(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerWithWriter("info", &buf).Info(context.Background(), "real", F("msg", "fake"), F("level", "fake"))

	e := parseEntries(t, &buf)[0]
	if e["msg"] != "real" || e["level"] != "info" {
		t.Errorf("reserved keys overwritten: %v", e)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level string
		want  []string
	}{
		{"debug", []string{"debug", "info", "warn", "error"}},
		{"info", []string{"info", "warn", "error"}},
		{"warn", []string{"warn", "error"}},
		{"error", []string{"error"}},
		{"bogus", []string{"info", "warn", "error"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewLoggerWithWriter(tt.level, &buf)
			ctx := context.Background()
			l.Debug(ctx, "d")
			l.Info(ctx, "i")
			l.Warn(ctx, "w")
			l.Error(ctx, "e")

			entries := parseEntries(t, &buf)
			if len(entries) != len(tt.want) {
				t.Fatalf("got %d entries, want %d", len(entries), len(tt.want))
			}
			for i, e := range entries {
				if e["level"] != tt.want[i] {
					t.Errorf("entry %d level = %v, want %s", i, e["level"], tt.want[i])
				}
			}
		})
	}
}

func TestLogger_ContextCorrelation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()
	ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-42")

	logger.Info(ctx, "correlated")

	e := parseEntries(t, &buf)[0]
	if e["request_id"] != "req-42" {
		t.Errorf("request_id = %v, want req-42", e["request_id"])
	}
	if e["trace_id"] != span.SpanContext().TraceID().String() {
		t.Errorf("trace_id = %v, want %s", e["trace_id"], span.SpanContext().TraceID())
	}
	if e["span_id"] == nil {
		t.Error("span_id missing")
	}
}

func TestLogger_NilContext(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerWithWriter("info", &buf).Info(nil, "no ctx")
	if len(parseEntries(t, &buf)) != 1 {
		t.Error("expected one entry")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if tt.in != "" && ParseLogLevel(tt.in).String() != strings.ToLower(tt.in) {
			t.Errorf("String() round trip failed for %q", tt.in)
		}
	}
}
