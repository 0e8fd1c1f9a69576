package observability

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// recordingHandler keeps every record it sees so tests can look at
// what reached a fan-out leg.
type recordingHandler struct {
	level   slog.Level
	err     error
	records []slog.Record
}

func (h *recordingHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *recordingHandler) Handle(_ context.Context, rec slog.Record) error {
	h.records = append(h.records, rec)
	return h.err
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"Error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"bananas": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLogLevel(in); got != want {
			t.Fatalf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestMultiHandlerFansOutAndKeepsFirstError(t *testing.T) {
	boom := errors.New("boom")
	a := &recordingHandler{level: slog.LevelInfo, err: boom}
	b := &recordingHandler{level: slog.LevelInfo, err: errors.New("later")}
	m := &multiHandler{handlers: []slog.Handler{a, b}}

	rec := slog.NewRecord(time.Now(), slog.LevelInfo, "hello", 0)
	if err := m.Handle(context.Background(), rec); !errors.Is(err, boom) {
		t.Fatalf("expected the first error back, got %v", err)
	}
	if len(a.records) != 1 || len(b.records) != 1 {
		t.Fatalf("expected both legs handled once, got %d and %d", len(a.records), len(b.records))
	}
}

func TestMultiHandlerEnabledWhenAnyChildIs(t *testing.T) {
	quiet := &recordingHandler{level: slog.LevelError}
	chatty := &recordingHandler{level: slog.LevelDebug}
	m := &multiHandler{handlers: []slog.Handler{quiet, chatty}}

	if !m.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("expected enabled while one child accepts info")
	}
	m = &multiHandler{handlers: []slog.Handler{quiet}}
	if m.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("expected disabled when no child accepts info")
	}
}

func TestTraceContextHandlerAttachesSpanIDs(t *testing.T) {
	sink := &recordingHandler{level: slog.LevelDebug}
	h := &traceContextHandler{next: sink}

	traceID := trace.TraceID{0x01}
	spanID := trace.SpanID{0x02}
	ctx := trace.ContextWithSpanContext(context.Background(),
		trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID}))

	rec := slog.NewRecord(time.Now(), slog.LevelInfo, "traced", 0)
	if err := h.Handle(ctx, rec); err != nil {
		t.Fatalf("handle: %v", err)
	}

	got := map[string]string{}
	sink.records[0].Attrs(func(a slog.Attr) bool {
		got[a.Key] = a.Value.String()
		return true
	})
	if got["trace_id"] != traceID.String() || got["span_id"] != spanID.String() {
		t.Fatalf("expected trace attrs, got %v", got)
	}

	// without an active span nothing is added
	sink.records = nil
	rec = slog.NewRecord(time.Now(), slog.LevelInfo, "untraced", 0)
	if err := h.Handle(context.Background(), rec); err != nil {
		t.Fatalf("handle: %v", err)
	}
	sink.records[0].Attrs(func(a slog.Attr) bool {
		if a.Key == "trace_id" || a.Key == "span_id" {
			t.Fatalf("unexpected trace attr %s on a span-less record", a.Key)
		}
		return true
	})
}

func TestWebhookHandlerPostsWarningsOnly(t *testing.T) {
	posted := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode webhook payload: %v", err)
		}
		posted <- body["content"]
	}))
	defer srv.Close()

	h := newWebhookHandler(srv.URL)
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info records must not reach the webhook")
	}
	if !h.Enabled(context.Background(), slog.LevelWarn) {
		t.Fatal("warn records must reach the webhook")
	}

	rec := slog.NewRecord(time.Now(), slog.LevelWarn, "banned an ip", 0)
	rec.AddAttrs(slog.String("ip", "203.0.113.9"))
	if err := h.Handle(context.Background(), rec); err != nil {
		t.Fatalf("handle: %v", err)
	}

	select {
	case content := <-posted:
		if !strings.Contains(content, "banned an ip") || !strings.Contains(content, "203.0.113.9") {
			t.Fatalf("unexpected webhook content %q", content)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was never called")
	}
}

func TestNewLoggerWiresTheChain(t *testing.T) {
	logger := NewLogger("warn", "")
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("expected info filtered out at warn level")
	}
	if !logger.Enabled(context.Background(), slog.LevelWarn) {
		t.Fatal("expected warn to pass")
	}
}
