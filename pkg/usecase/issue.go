package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/k-hirata/quill/pkg/domain/model"
)

// handleIssue triages a newly opened issue: generate a classification from the
// title and body, post it back as an issue comment.
func (uc *webhookUseCase) handleIssue(ctx context.Context, event *model.WebhookEvent) error {
	logger := ctxlog.From(ctx)

	if event.Action != "opened" {
		logger.Debug("Skipping issue action", "action", event.Action)
		return nil
	}

	issue := event.Issue
	if issue == nil {
		return goerr.New("missing issue payload", goerr.V("repository", event.Repository))
	}

	logger.Info("Processing issue",
		"owner", issue.Owner,
		"repo", issue.Repo,
		"number", issue.Number,
	)

	analysis, err := uc.generate(ctx, issueSystemPrompt, uc.issueTmpl, map[string]string{
		"Title": issue.Title,
		"Body":  issue.Body,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to generate issue analysis")
	}

	postCtx, cancel := uc.remoteCtx(ctx)
	defer cancel()
	if err := uc.githubClient.CreateIssueComment(postCtx, issue.Owner, issue.Repo, issue.Number, formatIssueComment(analysis)); err != nil {
		return goerr.Wrap(err, "failed to post issue comment")
	}

	logger.Info("Posted issue comment",
		"owner", issue.Owner,
		"repo", issue.Repo,
		"number", issue.Number,
	)

	return nil
}

// formatIssueComment wraps the generated analysis in the issue banner and
// disclaimer footer
func formatIssueComment(analysis string) string {
	var sb strings.Builder

	sb.WriteString("## 🤖 AI Issue Analysis\n\n")
	sb.WriteString(analysis)
	sb.WriteString("\n\n---\n")
	sb.WriteString("*This analysis was automatically generated by Gemini AI.*\n")

	return sb.String()
}
