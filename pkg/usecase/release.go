package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/k-hirata/quill/pkg/domain/model"
)

// handleRelease generates release notes for a published release. The notes
// are only logged; the release description is not updated.
func (uc *webhookUseCase) handleRelease(ctx context.Context, event *model.WebhookEvent) error {
	logger := ctxlog.From(ctx)

	if event.Action != "published" {
		logger.Debug("Skipping release action", "action", event.Action)
		return nil
	}

	release := event.Release
	if release == nil {
		return goerr.New("missing release payload", goerr.V("repository", event.Repository))
	}

	logger.Info("Processing release",
		"repository", event.Repository,
		"tag", release.TagName,
	)

	notes, err := uc.generate(ctx, releaseSystemPrompt, uc.releaseTmpl, map[string]string{
		"TagName": release.TagName,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to generate release notes", goerr.V("tag", release.TagName))
	}

	logger.Info("Generated release notes",
		"repository", event.Repository,
		"tag", release.TagName,
		"length", len(notes),
	)

	return nil
}
