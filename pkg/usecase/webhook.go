package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"runtime/debug"
	"text/template"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/k-hirata/quill/pkg/domain/interfaces"
	"github.com/k-hirata/quill/pkg/domain/model"
)

//go:embed prompts/review_system.md
var reviewSystemPrompt string

//go:embed prompts/review_user.md
var reviewUserTemplate string

//go:embed prompts/issue_system.md
var issueSystemPrompt string

//go:embed prompts/issue_user.md
var issueUserTemplate string

//go:embed prompts/docs_system.md
var docsSystemPrompt string

//go:embed prompts/docs_user.md
var docsUserTemplate string

//go:embed prompts/release_system.md
var releaseSystemPrompt string

//go:embed prompts/release_user.md
var releaseUserTemplate string

const defaultCallTimeout = 60 * time.Second

type webhookUseCase struct {
	llmClient    gollem.LLMClient
	githubClient interfaces.GitHubClient
	callTimeout  time.Duration

	reviewTmpl  *template.Template
	issueTmpl   *template.Template
	docsTmpl    *template.Template
	releaseTmpl *template.Template
}

// Option is a functional option for the webhook use case
type Option func(*webhookUseCase)

// WithCallTimeout sets the deadline applied to each outbound collaborator call
func WithCallTimeout(d time.Duration) Option {
	return func(uc *webhookUseCase) {
		uc.callTimeout = d
	}
}

// NewWebhook creates a new instance of WebhookUseCase. Both collaborators are
// injected; the use case holds no other state and is safe for concurrent
// deliveries.
func NewWebhook(llmClient gollem.LLMClient, githubClient interfaces.GitHubClient, opts ...Option) (interfaces.WebhookUseCase, error) {
	uc := &webhookUseCase{
		llmClient:    llmClient,
		githubClient: githubClient,
		callTimeout:  defaultCallTimeout,
	}

	for _, opt := range opts {
		opt(uc)
	}

	templates := []struct {
		name string
		text string
		dst  **template.Template
	}{
		{"review", reviewUserTemplate, &uc.reviewTmpl},
		{"issue", issueUserTemplate, &uc.issueTmpl},
		{"docs", docsUserTemplate, &uc.docsTmpl},
		{"release", releaseUserTemplate, &uc.releaseTmpl},
	}
	for _, t := range templates {
		tmpl, err := template.New(t.name).Parse(t.text)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to parse prompt template", goerr.V("template", t.name))
		}
		*t.dst = tmpl
	}

	return uc, nil
}

// HandleEvent dispatches a webhook event to its handling policy. Unmatched
// event types succeed trivially. Any error or panic from a policy is caught
// here and converted into a failed result; nothing propagates to the caller.
func (uc *webhookUseCase) HandleEvent(ctx context.Context, event *model.WebhookEvent) (result *model.HandlingResult) {
	logger := ctxlog.From(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic while handling webhook event",
				"recover", r,
				"stack", string(debug.Stack()),
				"event_type", event.Type,
				"repository", event.Repository,
			)
			result = &model.HandlingResult{Success: false}
		}
	}()

	logger.Info("Dispatching webhook event",
		"id", event.ID,
		"type", event.Type,
		"action", event.Action,
		"repository", event.Repository,
		"sender", event.Sender,
	)

	var err error
	switch event.Type {
	case model.EventTypePullRequest:
		err = uc.handlePullRequest(ctx, event)
	case model.EventTypeIssues:
		err = uc.handleIssue(ctx, event)
	case model.EventTypePush:
		err = uc.handlePush(ctx, event)
	case model.EventTypeRelease:
		err = uc.handleRelease(ctx, event)
	default:
		logger.Info("Ignoring unsupported event type", "event_type", event.Type)
		return &model.HandlingResult{Success: true}
	}

	if err != nil {
		logger.Error("Failed to handle webhook event",
			"error", err,
			"id", event.ID,
			"type", event.Type,
			"repository", event.Repository,
		)
		sentry.CaptureException(err)
		return &model.HandlingResult{Success: false}
	}

	return &model.HandlingResult{Success: true}
}

// generate renders the user prompt template and requests one text generation
// from the LLM under the configured call deadline. Any failure means no
// content was produced.
func (uc *webhookUseCase) generate(ctx context.Context, systemPrompt string, userTmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := userTmpl.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to execute user prompt template")
	}

	callCtx, cancel := context.WithTimeout(ctx, uc.callTimeout)
	defer cancel()

	session, err := uc.llmClient.NewSession(callCtx,
		gollem.WithSessionSystemPrompt(systemPrompt),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(callCtx, gollem.Text(buf.String()))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate LLM content")
	}
	if len(resp.Texts) == 0 {
		return "", goerr.New("no response from LLM")
	}

	return resp.Texts[0], nil
}

// remoteCtx bounds one outbound GitHub call with the configured deadline.
func (uc *webhookUseCase) remoteCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, uc.callTimeout)
}
