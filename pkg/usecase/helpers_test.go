package usecase_test

import (
	"context"
	"sync"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/mock"

	"github.com/k-hirata/quill/pkg/domain/model"
)

// githubClientStub is a recording test double for interfaces.GitHubClient
type githubClientStub struct {
	mu sync.Mutex

	diff       string
	diffErr    error
	diffFunc   func(owner, repo string, number int) (string, error)
	files      []*model.RepositoryFile
	filesErr   error
	reviewErr  error
	commentErr error

	diffCalls int
	listCalls int
	listExts  [][]string
	reviews   []postedComment
	comments  []postedComment
}

type postedComment struct {
	owner  string
	repo   string
	number int
	body   string
}

func (s *githubClientStub) GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diffCalls++
	if s.diffFunc != nil {
		return s.diffFunc(owner, repo, number)
	}
	return s.diff, s.diffErr
}

func (s *githubClientStub) PostReviewComment(ctx context.Context, owner, repo string, number int, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reviewErr != nil {
		return s.reviewErr
	}
	s.reviews = append(s.reviews, postedComment{owner, repo, number, body})
	return nil
}

func (s *githubClientStub) CreateIssueComment(ctx context.Context, owner, repo string, number int, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.commentErr != nil {
		return s.commentErr
	}
	s.comments = append(s.comments, postedComment{owner, repo, number, body})
	return nil
}

func (s *githubClientStub) ListRepositoryFiles(ctx context.Context, owner, repo string, extensions []string) ([]*model.RepositoryFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	s.listExts = append(s.listExts, extensions)
	return s.files, s.filesErr
}

// llmRecorder captures the prompts sent to the mocked LLM client
type llmRecorder struct {
	mu      sync.Mutex
	prompts []string
}

func (r *llmRecorder) add(input ...gollem.Input) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, in := range input {
		if text, ok := in.(gollem.Text); ok {
			r.prompts = append(r.prompts, string(text))
		}
	}
}

func (r *llmRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.prompts...)
}

// newLLMMock returns a mocked LLM client whose generations are produced by
// respond, and a recorder holding every prompt it received.
func newLLMMock(respond func(prompt string) (string, error)) (*mock.LLMClientMock, *llmRecorder) {
	recorder := &llmRecorder{}

	client := &mock.LLMClientMock{
		NewSessionFunc: func(ctx context.Context, opts ...gollem.SessionOption) (gollem.Session, error) {
			return &mock.SessionMock{
				GenerateFunc: func(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
					recorder.add(input...)

					prompt := ""
					if len(input) > 0 {
						if text, ok := input[0].(gollem.Text); ok {
							prompt = string(text)
						}
					}

					text, err := respond(prompt)
					if err != nil {
						return nil, err
					}
					return &gollem.Response{Texts: []string{text}}, nil
				},
			}, nil
		},
	}

	return client, recorder
}
