package interfaces

import (
	"context"

	"github.com/k-hirata/quill/pkg/domain/model"
)

// GitHubClient defines the operations the handling policies need from the
// GitHub API. Implementations must honor ctx deadlines on every call.
type GitHubClient interface {
	// GetPullRequestDiff fetches the unified diff text of a pull request.
	GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error)

	// PostReviewComment posts body as a COMMENT review on a pull request.
	PostReviewComment(ctx context.Context, owner, repo string, number int, body string) error

	// CreateIssueComment creates a comment on an issue.
	CreateIssueComment(ctx context.Context, owner, repo string, number int, body string) error

	// ListRepositoryFiles fetches the repository's top-level files whose
	// names end with one of the given extensions, including their content.
	ListRepositoryFiles(ctx context.Context, owner, repo string, extensions []string) ([]*model.RepositoryFile, error)
}
