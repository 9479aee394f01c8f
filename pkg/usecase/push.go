package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/k-hirata/quill/pkg/domain/model"
	"github.com/k-hirata/quill/pkg/utils/async"
)

const defaultBranchRef = "refs/heads/main"

// maxDocFiles caps how many source files get documentation generated per push.
const maxDocFiles = 5

// sourceExtensions is the whitelist of source files considered for
// documentation generation.
var sourceExtensions = []string{".py", ".js", ".java", ".go"}

// handlePush regenerates documentation when doc files change on the default
// branch. The generated text is only logged; nothing is written back to the
// repository. The policy is best-effort: collaborator failures are logged but
// never fail the delivery.
func (uc *webhookUseCase) handlePush(ctx context.Context, event *model.WebhookEvent) error {
	logger := ctxlog.From(ctx)

	push := event.Push
	if push == nil {
		return goerr.New("missing push payload", goerr.V("repository", event.Repository))
	}

	if push.Ref != defaultBranchRef {
		logger.Debug("Skipping push to non-default branch", "ref", push.Ref)
		return nil
	}

	logger.Info("Processing push",
		"repository", event.Repository,
		"commits", len(push.Commits),
	)

	if !push.TouchesDocumentation() {
		logger.Debug("No documentation files touched", "repository", event.Repository)
		return nil
	}

	listCtx, cancel := uc.remoteCtx(ctx)
	defer cancel()
	files, err := uc.githubClient.ListRepositoryFiles(listCtx, push.Owner, push.Repo, sourceExtensions)
	if err != nil {
		logger.Error("Failed to list repository files", "error", err, "repository", event.Repository)
		return nil
	}

	if len(files) > maxDocFiles {
		files = files[:maxDocFiles]
	}

	errs := async.ForEach(ctx, files, func(ctx context.Context, file *model.RepositoryFile) error {
		docs, err := uc.generate(ctx, docsSystemPrompt, uc.docsTmpl, map[string]string{
			"Path":    file.Path,
			"Content": file.Content,
		})
		if err != nil {
			return goerr.Wrap(err, "failed to generate documentation", goerr.V("path", file.Path))
		}

		// Generated docs are not published anywhere yet, only logged.
		ctxlog.From(ctx).Info("Generated documentation",
			"path", file.Path,
			"length", len(docs),
		)
		return nil
	})

	for _, err := range errs {
		logger.Error("Documentation generation failed", "error", err)
	}

	return nil
}
