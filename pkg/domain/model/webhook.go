package model

import (
	"strings"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/google/uuid"
)

// WebhookEventType represents the type of webhook event received
type WebhookEventType string

const (
	EventTypePullRequest WebhookEventType = "pull_request"
	EventTypeIssues      WebhookEventType = "issues"
	EventTypePush        WebhookEventType = "push"
	EventTypeRelease     WebhookEventType = "release"
)

// docSuffixes are the file suffixes treated as documentation in push events.
var docSuffixes = []string{".md", ".rst", ".txt"}

// WebhookEvent represents a webhook event received from GitHub. It is
// immutable once constructed and owned by the dispatcher for the duration of
// one delivery. At most one of the per-kind info fields is populated,
// matching Type; all of them are nil for event types the dispatcher ignores.
type WebhookEvent struct {
	ID         string           // Retrieved from X-GitHub-Delivery header
	Type       WebhookEventType // Retrieved from X-GitHub-Event header
	Action     string           // Event action (e.g., opened, published)
	Repository string           // Repository "owner/name", may be empty
	Sender     string           // Sender username
	ReceivedAt time.Time        // Time when the event was received
	RawPayload []byte           // Raw JSON payload

	PullRequest *PullRequestInfo
	Issue       *IssueInfo
	Push        *PushInfo
	Release     *ReleaseInfo
}

// PullRequestInfo holds the fields a pull_request event handler needs.
type PullRequestInfo struct {
	Owner  string
	Repo   string
	Number int
}

// IssueInfo holds the fields an issues event handler needs. Body is never
// null; an absent body becomes the empty string at construction.
type IssueInfo struct {
	Owner  string
	Repo   string
	Number int
	Title  string
	Body   string
}

// CommitInfo lists the paths touched by one commit of a push event.
type CommitInfo struct {
	Added    []string
	Modified []string
}

// PushInfo holds the fields a push event handler needs.
type PushInfo struct {
	Owner   string
	Repo    string
	Ref     string
	Commits []CommitInfo
}

// TouchesDocumentation reports whether any commit of the push added or
// modified a documentation-suffixed file (.md, .rst, .txt).
func (p *PushInfo) TouchesDocumentation() bool {
	for _, commit := range p.Commits {
		paths := make([]string, 0, len(commit.Modified)+len(commit.Added))
		paths = append(paths, commit.Modified...)
		paths = append(paths, commit.Added...)
		for _, path := range paths {
			for _, suffix := range docSuffixes {
				if strings.HasSuffix(path, suffix) {
					return true
				}
			}
		}
	}
	return false
}

// ReleaseInfo holds the fields a release event handler needs.
type ReleaseInfo struct {
	Owner   string
	Repo    string
	TagName string
	Name    string
}

// NewWebhookEvent normalizes a parsed webhook payload into a WebhookEvent.
// Absent fields are resolved to their defaults (empty string, empty slice)
// here, once, so handlers never deal with missing payload fields. The payload
// argument is the value returned by github.ParseWebHook.
func NewWebhookEvent(deliveryID, eventType string, payload any, raw []byte) *WebhookEvent {
	if deliveryID == "" {
		deliveryID = uuid.NewString()
	}

	event := &WebhookEvent{
		ID:         deliveryID,
		Type:       WebhookEventType(eventType),
		ReceivedAt: time.Now(),
		RawPayload: raw,
	}

	switch e := payload.(type) {
	case *github.PullRequestEvent:
		event.Action = e.GetAction()
		event.Repository = e.GetRepo().GetFullName()
		event.Sender = e.GetSender().GetLogin()
		event.PullRequest = &PullRequestInfo{
			Owner:  e.GetRepo().GetOwner().GetLogin(),
			Repo:   e.GetRepo().GetName(),
			Number: e.GetPullRequest().GetNumber(),
		}

	case *github.IssuesEvent:
		event.Action = e.GetAction()
		event.Repository = e.GetRepo().GetFullName()
		event.Sender = e.GetSender().GetLogin()
		event.Issue = &IssueInfo{
			Owner:  e.GetRepo().GetOwner().GetLogin(),
			Repo:   e.GetRepo().GetName(),
			Number: e.GetIssue().GetNumber(),
			Title:  e.GetIssue().GetTitle(),
			Body:   e.GetIssue().GetBody(),
		}

	case *github.PushEvent:
		event.Repository = e.GetRepo().GetFullName()
		event.Sender = e.GetSender().GetLogin()
		push := &PushInfo{
			Owner: e.GetRepo().GetOwner().GetLogin(),
			Repo:  e.GetRepo().GetName(),
			Ref:   e.GetRef(),
		}
		for _, c := range e.Commits {
			push.Commits = append(push.Commits, CommitInfo{
				Added:    c.Added,
				Modified: c.Modified,
			})
		}
		event.Push = push

	case *github.ReleaseEvent:
		event.Action = e.GetAction()
		event.Repository = e.GetRepo().GetFullName()
		event.Sender = e.GetSender().GetLogin()
		event.Release = &ReleaseInfo{
			Owner:   e.GetRepo().GetOwner().GetLogin(),
			Repo:    e.GetRepo().GetName(),
			TagName: e.GetRelease().GetTagName(),
			Name:    e.GetRelease().GetName(),
		}
	}

	return event
}
