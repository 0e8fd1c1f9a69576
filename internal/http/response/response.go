// Package response writes the JSON envelopes every endpoint shares.
// Bodies always carry a status field: "success", "error" or "pending".
package response

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

type envelope struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Success writes a bare success envelope.
func Success(w http.ResponseWriter, status int) {
	write(w, status, envelope{Status: "success"})
}

// SuccessData merges extra fields into a success envelope.
func SuccessData(w http.ResponseWriter, status int, data map[string]any) {
	body := map[string]any{"status": "success"}
	for k, v := range data {
		body[k] = v
	}
	write(w, status, body)
}

// Error writes an error envelope with a short machine-readable reason.
func Error(w http.ResponseWriter, status int, reason string) {
	write(w, status, envelope{Status: "error", Error: reason})
}

// Pending tells the client the operation was accepted but needs a
// confirmation step before it takes effect.
func Pending(w http.ResponseWriter) {
	write(w, http.StatusAccepted, envelope{Status: "pending"})
}

// RateLimited writes the cooldown rejection with a Retry-After hint.
func RateLimited(w http.ResponseWriter, retryAfter time.Duration) {
	secs := int(retryAfter.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	write(w, http.StatusTooManyRequests, envelope{Status: "error", Error: "too many requests"})
}

// Banned is sent to clients that kept hammering through cooldowns.
func Banned(w http.ResponseWriter) {
	write(w, http.StatusTeapot, map[string]string{"status": "GTFO"})
}

// JSON writes an arbitrary payload, for endpoints that return domain
// data rather than an envelope.
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, data)
}

func write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
