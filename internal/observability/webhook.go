package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// webhookHandler mirrors warn-and-above records to a chat webhook so
// staff see bans and bypass attempts without tailing logs. Delivery
// is fire-and-forget; a dead webhook never slows a request down.
type webhookHandler struct {
	url    string
	client *http.Client
	attrs  []slog.Attr
}

func newWebhookHandler(url string) *webhookHandler {
	return &webhookHandler{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (w *webhookHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelWarn
}

func (w *webhookHandler) Handle(_ context.Context, rec slog.Record) error {
	var b bytes.Buffer
	prefix := "⚠"
	if rec.Level >= slog.LevelError {
		prefix = "❌"
	}
	fmt.Fprintf(&b, "%s **%s**", prefix, rec.Message)
	for _, a := range w.attrs {
		fmt.Fprintf(&b, " %s=`%v`", a.Key, a.Value)
	}
	rec.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=`%v`", a.Key, a.Value)
		return true
	})

	payload, err := json.Marshal(map[string]string{"content": b.String()})
	if err != nil {
		return err
	}
	go func() {
		resp, err := w.client.Post(w.url, "application/json", bytes.NewReader(payload))
		if err != nil {
			return
		}
		_ = resp.Body.Close()
	}()
	return nil
}

func (w *webhookHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *w
	next.attrs = append(append([]slog.Attr(nil), w.attrs...), attrs...)
	return &next
}

func (w *webhookHandler) WithGroup(string) slog.Handler { return w }
