package interfaces

import (
	"context"

	"github.com/k-hirata/quill/pkg/domain/model"
)

// WebhookUseCase defines the interface for webhook event dispatching
type WebhookUseCase interface {
	// HandleEvent dispatches a webhook event to its handling policy. It
	// never returns an error: any failure inside a policy is logged and
	// reported as an unsuccessful result.
	HandleEvent(ctx context.Context, event *model.WebhookEvent) *model.HandlingResult
}
