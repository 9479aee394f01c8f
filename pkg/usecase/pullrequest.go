package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/k-hirata/quill/pkg/domain/model"
)

// handlePullRequest reviews a pull request: fetch the diff, generate an
// analysis, post it back as a review comment. Each step depends on the
// previous one succeeding; an empty diff fails without posting anything.
func (uc *webhookUseCase) handlePullRequest(ctx context.Context, event *model.WebhookEvent) error {
	logger := ctxlog.From(ctx)

	if event.Action != "opened" && event.Action != "synchronize" {
		logger.Debug("Skipping pull request action", "action", event.Action)
		return nil
	}

	pr := event.PullRequest
	if pr == nil {
		return goerr.New("missing pull request payload", goerr.V("repository", event.Repository))
	}

	logger.Info("Processing pull request",
		"owner", pr.Owner,
		"repo", pr.Repo,
		"number", pr.Number,
	)

	diffCtx, cancel := uc.remoteCtx(ctx)
	defer cancel()
	diff, err := uc.githubClient.GetPullRequestDiff(diffCtx, pr.Owner, pr.Repo, pr.Number)
	if err != nil {
		return goerr.Wrap(err, "failed to fetch pull request diff")
	}
	if diff == "" {
		return goerr.New("empty pull request diff",
			goerr.V("repository", event.Repository),
			goerr.V("number", pr.Number),
		)
	}

	analysis, err := uc.generate(ctx, reviewSystemPrompt, uc.reviewTmpl, map[string]string{
		"FileLabel": fmt.Sprintf("PR #%d", pr.Number),
		"Diff":      diff,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to generate review")
	}

	postCtx, cancel := uc.remoteCtx(ctx)
	defer cancel()
	if err := uc.githubClient.PostReviewComment(postCtx, pr.Owner, pr.Repo, pr.Number, formatReviewComment(analysis)); err != nil {
		return goerr.Wrap(err, "failed to post review comment")
	}

	logger.Info("Posted review comment",
		"owner", pr.Owner,
		"repo", pr.Repo,
		"number", pr.Number,
	)

	return nil
}

// formatReviewComment wraps the generated analysis in the review banner and
// disclaimer footer
func formatReviewComment(analysis string) string {
	var sb strings.Builder

	sb.WriteString("## 🤖 AI Code Review by Gemini\n\n")
	sb.WriteString(analysis)
	sb.WriteString("\n\n---\n")
	sb.WriteString("*This review was automatically generated by Gemini AI. Please verify all suggestions before implementing.*\n")

	return sb.String()
}
