// Package inbound exposes the HTTP surface provider webhooks are delivered
// to. The handler verifies the shared secret, decodes the payload, and hands
// it to the webhook processor; all event-level outcomes stay inside the
// processor's result.
package inbound

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-crm-messaging/core"
	"github.com/goliatone/go-crm-messaging/webhooks"
)

const defaultMaxBodyBytes = 1 << 20

// PayloadProcessor consumes a decoded webhook payload. *webhooks.Processor
// satisfies it.
type PayloadProcessor interface {
	Process(ctx context.Context, payload webhooks.Payload) (webhooks.Outcome, error)
}

var _ PayloadProcessor = (*webhooks.Processor)(nil)

type Config struct {
	Processor PayloadProcessor
	// Secret, when set, requires requests to carry it as a bearer token.
	Secret string
	Logger core.Logger
	// MaxBodyBytes caps the request body size. Defaults to 1 MiB.
	MaxBodyBytes int64
}

// WebhookHandler is the http.Handler mounted at the provider's callback URL.
type WebhookHandler struct {
	processor    PayloadProcessor
	secret       string
	logger       core.Logger
	maxBodyBytes int64
}

func NewWebhookHandler(cfg Config) (*WebhookHandler, error) {
	if cfg.Processor == nil {
		return nil, fmt.Errorf("inbound: processor is required")
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	return &WebhookHandler{
		processor:    cfg.Processor,
		secret:       strings.TrimSpace(cfg.Secret),
		logger:       cfg.Logger,
		maxBodyBytes: maxBody,
	}, nil
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.processor == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"ok":    false,
			"error": "webhook handler is not configured",
		})
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{
			"ok":    false,
			"error": "method not allowed",
		})
		return
	}
	if !h.authorized(r) {
		h.logWarn("webhook request rejected", "reason", "invalid bearer token", "remote_addr", r.RemoteAddr)
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"ok":    false,
			"error": "unauthorized",
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	defer r.Body.Close()

	var payload webhooks.Payload
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&payload); err != nil {
		h.logWarn("webhook payload rejected", "error", err.Error())
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"ok":    false,
			"error": "invalid payload",
		})
		return
	}

	outcome, err := h.processor.Process(r.Context(), payload)
	if err != nil {
		h.logError("webhook processing failed",
			"error", err.Error(),
			"payload", loggedPayload(payload),
		)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"ok":    false,
			"error": core.MapError(err).Message,
		})
		return
	}
	if !outcome.Success {
		h.logError("webhook payload not processed",
			"payload", loggedPayload(payload),
			"failures", failureSummary(outcome),
		)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"ok": false,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *WebhookHandler) authorized(r *http.Request) bool {
	if h.secret == "" {
		return true
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(h.secret)) == 1
}

const maxLoggedPayloadBytes = 4096

// loggedPayload renders the decoded payload for failure logs, truncated so a
// large media payload cannot flood them.
func loggedPayload(payload webhooks.Payload) string {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%+v", payload)
	}
	if len(raw) > maxLoggedPayloadBytes {
		raw = raw[:maxLoggedPayloadBytes]
	}
	return string(raw)
}

// failureSummary collects the failed events' messages so the cause sits next
// to the payload in the log line.
func failureSummary(outcome webhooks.Outcome) string {
	var parts []string
	for _, section := range outcome.Sections {
		for _, event := range section.Events {
			if event.Status != webhooks.EventFailed {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s/%s: %s", section.Type, event.MessageID, event.Error))
		}
	}
	return strings.Join(parts, "; ")
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (h *WebhookHandler) logWarn(msg string, args ...any) {
	if h.logger == nil {
		return
	}
	h.logger.Warn(msg, args...)
}

func (h *WebhookHandler) logError(msg string, args ...any) {
	if h.logger == nil {
		return
	}
	h.logger.Error(msg, args...)
}
