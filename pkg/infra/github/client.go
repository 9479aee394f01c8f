package github

import (
	"context"
	"strings"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"

	"github.com/k-hirata/quill/pkg/domain/interfaces"
	"github.com/k-hirata/quill/pkg/domain/model"
)

type client struct {
	githubClient *github.Client
}

// NewClient creates a GitHub client authenticated with a personal access token
func NewClient(token string) interfaces.GitHubClient {
	return &client{
		githubClient: github.NewClient(nil).WithAuthToken(token),
	}
}

// GetPullRequestDiff fetches the unified diff text of a pull request
func (c *client) GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	diff, _, err := c.githubClient.PullRequests.GetRaw(ctx, owner, repo, number, github.RawOptions{
		Type: github.Diff,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to get pull request diff",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
			goerr.V("number", number),
		)
	}

	return diff, nil
}

// PostReviewComment posts body as a COMMENT review on a pull request
func (c *client) PostReviewComment(ctx context.Context, owner, repo string, number int, body string) error {
	review := &github.PullRequestReviewRequest{
		Body:  github.Ptr(body),
		Event: github.Ptr("COMMENT"),
	}

	if _, _, err := c.githubClient.PullRequests.CreateReview(ctx, owner, repo, number, review); err != nil {
		return goerr.Wrap(err, "failed to create pull request review",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
			goerr.V("number", number),
		)
	}

	return nil
}

// CreateIssueComment creates a comment on an issue
func (c *client) CreateIssueComment(ctx context.Context, owner, repo string, number int, body string) error {
	comment := &github.IssueComment{
		Body: github.Ptr(body),
	}

	if _, _, err := c.githubClient.Issues.CreateComment(ctx, owner, repo, number, comment); err != nil {
		return goerr.Wrap(err, "failed to create issue comment",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
			goerr.V("number", number),
		)
	}

	return nil
}

// ListRepositoryFiles fetches the repository's top-level files matching the
// given extensions, including their decoded content
func (c *client) ListRepositoryFiles(ctx context.Context, owner, repo string, extensions []string) ([]*model.RepositoryFile, error) {
	_, entries, _, err := c.githubClient.Repositories.GetContents(ctx, owner, repo, "", nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list repository contents",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
		)
	}

	var files []*model.RepositoryFile
	for _, entry := range entries {
		if entry.GetType() != "file" || !hasExtension(entry.GetName(), extensions) {
			continue
		}

		fileContent, _, _, err := c.githubClient.Repositories.GetContents(ctx, owner, repo, entry.GetPath(), nil)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get file content",
				goerr.V("owner", owner),
				goerr.V("repo", repo),
				goerr.V("path", entry.GetPath()),
			)
		}
		if fileContent == nil {
			continue
		}

		content, err := fileContent.GetContent()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to decode file content",
				goerr.V("path", entry.GetPath()),
			)
		}

		files = append(files, &model.RepositoryFile{
			Path:    entry.GetPath(),
			Content: content,
			Size:    entry.GetSize(),
		})
	}

	return files, nil
}

func hasExtension(name string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	for _, ext := range extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
