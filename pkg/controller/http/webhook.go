package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/k-hirata/quill/pkg/domain/interfaces"
	"github.com/k-hirata/quill/pkg/domain/model"
)

// WebhookHandler handles GitHub webhooks
type WebhookHandler struct {
	secret    string
	webhookUC interfaces.WebhookUseCase
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(secret string, webhookUC interfaces.WebhookUseCase) *WebhookHandler {
	return &WebhookHandler{
		secret:    secret,
		webhookUC: webhookUC,
	}
}

// webhookResponse is the JSON body returned for every dispatched delivery.
// Handled failures are still HTTP 200; only faults outside the dispatcher
// become 5xx.
type webhookResponse struct {
	Status     string `json:"status"`
	EventType  string `json:"event_type"`
	Repository string `json:"repository"`
	Processed  bool   `json:"processed"`
}

// Handle processes webhook requests
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	// Read payload
	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error("Failed to read request body", "error", err)
		writeError(w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if len(body) == 0 {
		writeError(w, goerr.New("empty request body"), http.StatusBadRequest)
		return
	}

	eventType := r.Header.Get("X-GitHub-Event")
	if eventType == "" {
		writeError(w, goerr.New("missing X-GitHub-Event header"), http.StatusBadRequest)
		return
	}

	// Verify signature
	if h.secret != "" {
		signature := r.Header.Get("X-Hub-Signature-256")
		if !h.verifySignature(body, signature) {
			logger.Warn("Invalid webhook signature")
			writeError(w, goerr.New("invalid signature"), http.StatusUnauthorized)
			return
		}
	}

	// Parse event using GitHub SDK
	payload, err := github.ParseWebHook(eventType, body)
	if err != nil {
		logger.Error("Failed to parse webhook payload", "error", err)
		writeError(w, goerr.Wrap(err, "invalid JSON payload"), http.StatusBadRequest)
		return
	}

	event := model.NewWebhookEvent(r.Header.Get("X-GitHub-Delivery"), eventType, payload, body)

	logger.Info("Received webhook event",
		"id", event.ID,
		"type", event.Type,
		"repository", event.Repository,
	)

	// Dispatch; the use case never returns an error, only a result
	result := h.webhookUC.HandleEvent(ctx, event)

	status := "success"
	if !result.Success {
		status = "failed"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(&webhookResponse{
		Status:     status,
		EventType:  string(event.Type),
		Repository: event.Repository,
		Processed:  result.Success,
	}); err != nil {
		logger.Error("Failed to encode webhook response", "error", err)
	}
}

// verifySignature verifies the webhook signature
func (h *WebhookHandler) verifySignature(payload []byte, signature string) bool {
	if signature == "" {
		return false
	}

	// Remove "sha256=" prefix if present
	signature = strings.TrimPrefix(signature, "sha256=")

	// Calculate HMAC-SHA256
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(payload)
	expectedMAC := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expectedMAC))
}
