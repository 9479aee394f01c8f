package http_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"

	controller "github.com/k-hirata/quill/pkg/controller/http"
	"github.com/k-hirata/quill/pkg/domain/model"
)

// webhookUseCaseStub records dispatched events and returns a fixed result
type webhookUseCaseStub struct {
	result *model.HandlingResult
	events []*model.WebhookEvent
}

func (s *webhookUseCaseStub) HandleEvent(ctx context.Context, event *model.WebhookEvent) *model.HandlingResult {
	s.events = append(s.events, event)
	if s.result != nil {
		return s.result
	}
	return &model.HandlingResult{Success: true}
}

func generateSignature(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func pullRequestPayload() []byte {
	return []byte(`{
		"action": "opened",
		"repository": {
			"full_name": "acme/widgets",
			"name": "widgets",
			"owner": {"login": "acme"}
		},
		"sender": {"login": "octocat"},
		"pull_request": {"number": 42}
	}`)
}

func newWebhookRequest(payload []byte) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/hooks/github", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", "pull_request")
	req.Header.Set("X-GitHub-Delivery", "test-delivery-id")
	return req
}

func TestWebhookHandler(t *testing.T) {
	const secret = "test-secret"

	t.Run("accepts delivery with valid signature", func(t *testing.T) {
		uc := &webhookUseCaseStub{}
		handler := controller.NewWebhookHandler(secret, uc)

		payload := pullRequestPayload()
		req := newWebhookRequest(payload)
		req.Header.Set("X-Hub-Signature-256", generateSignature(secret, payload))

		rec := httptest.NewRecorder()
		handler.Handle(rec, req)

		gt.Equal(t, rec.Code, http.StatusOK)
		gt.Equal(t, len(uc.events), 1)
		gt.Equal(t, uc.events[0].ID, "test-delivery-id")
		gt.Equal(t, uc.events[0].Type, model.EventTypePullRequest)
		gt.Equal(t, uc.events[0].Repository, "acme/widgets")

		var resp map[string]any
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		gt.Equal(t, resp["status"], "success")
		gt.Equal(t, resp["event_type"], "pull_request")
		gt.Equal(t, resp["repository"], "acme/widgets")
		gt.Equal(t, resp["processed"], true)
	})

	t.Run("rejects delivery with invalid signature", func(t *testing.T) {
		uc := &webhookUseCaseStub{}
		handler := controller.NewWebhookHandler(secret, uc)

		req := newWebhookRequest(pullRequestPayload())
		req.Header.Set("X-Hub-Signature-256", "sha256=deadbeef")

		rec := httptest.NewRecorder()
		handler.Handle(rec, req)

		gt.Equal(t, rec.Code, http.StatusUnauthorized)
		gt.Equal(t, len(uc.events), 0)
	})

	t.Run("rejects delivery without signature when secret is set", func(t *testing.T) {
		uc := &webhookUseCaseStub{}
		handler := controller.NewWebhookHandler(secret, uc)

		rec := httptest.NewRecorder()
		handler.Handle(rec, newWebhookRequest(pullRequestPayload()))

		gt.Equal(t, rec.Code, http.StatusUnauthorized)
		gt.Equal(t, len(uc.events), 0)
	})

	t.Run("skips verification when no secret is configured", func(t *testing.T) {
		uc := &webhookUseCaseStub{}
		handler := controller.NewWebhookHandler("", uc)

		rec := httptest.NewRecorder()
		handler.Handle(rec, newWebhookRequest(pullRequestPayload()))

		gt.Equal(t, rec.Code, http.StatusOK)
		gt.Equal(t, len(uc.events), 1)
	})

	t.Run("rejects delivery without event header", func(t *testing.T) {
		uc := &webhookUseCaseStub{}
		handler := controller.NewWebhookHandler("", uc)

		req := newWebhookRequest(pullRequestPayload())
		req.Header.Del("X-GitHub-Event")

		rec := httptest.NewRecorder()
		handler.Handle(rec, req)

		gt.Equal(t, rec.Code, http.StatusBadRequest)
		gt.Equal(t, len(uc.events), 0)
	})

	t.Run("rejects delivery with empty body", func(t *testing.T) {
		uc := &webhookUseCaseStub{}
		handler := controller.NewWebhookHandler("", uc)

		rec := httptest.NewRecorder()
		handler.Handle(rec, newWebhookRequest(nil))

		gt.Equal(t, rec.Code, http.StatusBadRequest)
		gt.Equal(t, len(uc.events), 0)
	})

	t.Run("rejects delivery with malformed JSON", func(t *testing.T) {
		uc := &webhookUseCaseStub{}
		handler := controller.NewWebhookHandler("", uc)

		rec := httptest.NewRecorder()
		handler.Handle(rec, newWebhookRequest([]byte("{not json")))

		gt.Equal(t, rec.Code, http.StatusBadRequest)
		gt.Equal(t, len(uc.events), 0)
	})

	t.Run("handled failure is still HTTP 200", func(t *testing.T) {
		uc := &webhookUseCaseStub{result: &model.HandlingResult{Success: false}}
		handler := controller.NewWebhookHandler("", uc)

		rec := httptest.NewRecorder()
		handler.Handle(rec, newWebhookRequest(pullRequestPayload()))

		gt.Equal(t, rec.Code, http.StatusOK)

		var resp map[string]any
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		gt.Equal(t, resp["status"], "failed")
		gt.Equal(t, resp["processed"], false)
	})

	t.Run("generates delivery ID when header is missing", func(t *testing.T) {
		uc := &webhookUseCaseStub{}
		handler := controller.NewWebhookHandler("", uc)

		req := newWebhookRequest(pullRequestPayload())
		req.Header.Del("X-GitHub-Delivery")

		rec := httptest.NewRecorder()
		handler.Handle(rec, req)

		gt.Equal(t, rec.Code, http.StatusOK)
		gt.Equal(t, len(uc.events), 1)
		gt.V(t, uc.events[0].ID).NotEqual("")
	})
}

func TestWebhookIntegration(t *testing.T) {
	const secret = "integration-secret"

	uc := &webhookUseCaseStub{}
	server := gt.R1(controller.NewServer(
		context.Background(),
		uc,
		controller.WithWebhookSecret(secret),
	)).NoError(t)

	ts := httptest.NewServer(server.Handler)
	defer ts.Close()

	payload := pullRequestPayload()
	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/hooks/github", ts.URL), bytes.NewReader(payload))
	gt.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", "pull_request")
	req.Header.Set("X-GitHub-Delivery", "integration-delivery")
	req.Header.Set("X-Hub-Signature-256", generateSignature(secret, payload))

	resp, err := http.DefaultClient.Do(req)
	gt.NoError(t, err)
	defer resp.Body.Close()

	gt.Equal(t, resp.StatusCode, http.StatusOK)
	gt.Equal(t, len(uc.events), 1)
	gt.Equal(t, uc.events[0].PullRequest.Number, 42)
}
