package usecase_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/k-hirata/quill/pkg/domain/model"
	"github.com/k-hirata/quill/pkg/usecase"
)

func TestHandleEventDispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("unsupported event types succeed without collaborator calls", func(t *testing.T) {
		ghClient := &githubClientStub{}
		llmClient, recorder := newLLMMock(func(prompt string) (string, error) {
			return "unused", nil
		})

		uc := gt.R1(usecase.NewWebhook(llmClient, ghClient)).NoError(t)

		for _, eventType := range []model.WebhookEventType{"watch", "star", "fork", "deployment"} {
			result := uc.HandleEvent(ctx, &model.WebhookEvent{
				ID:         "delivery-x",
				Type:       eventType,
				Repository: "acme/widgets",
			})
			gt.Equal(t, result.Success, true)
		}

		gt.Equal(t, ghClient.diffCalls, 0)
		gt.Equal(t, ghClient.listCalls, 0)
		gt.Equal(t, len(recorder.all()), 0)
		gt.Equal(t, len(ghClient.reviews), 0)
		gt.Equal(t, len(ghClient.comments), 0)
	})

	t.Run("panicking handler yields a failed result", func(t *testing.T) {
		ghClient := &githubClientStub{diff: "+ change"}
		llmClient, _ := newLLMMock(func(prompt string) (string, error) {
			panic("unexpected provider state")
		})

		uc := gt.R1(usecase.NewWebhook(llmClient, ghClient)).NoError(t)

		result := uc.HandleEvent(ctx, newPullRequestEvent("opened"))
		gt.V(t, result).NotNil()
		gt.Equal(t, result.Success, false)
	})

	t.Run("concurrent deliveries do not cross repositories", func(t *testing.T) {
		ghClient := &githubClientStub{
			diffFunc: func(owner, repo string, number int) (string, error) {
				return fmt.Sprintf("+ change in %s/%s", owner, repo), nil
			},
		}
		llmClient, _ := newLLMMock(func(prompt string) (string, error) {
			// Echo the prompt so each review carries its own diff
			return prompt, nil
		})

		uc := gt.R1(usecase.NewWebhook(llmClient, ghClient)).NoError(t)

		events := []*model.WebhookEvent{
			{
				ID:          "delivery-a",
				Type:        model.EventTypePullRequest,
				Action:      "opened",
				Repository:  "acme/widgets",
				PullRequest: &model.PullRequestInfo{Owner: "acme", Repo: "widgets", Number: 1},
			},
			{
				ID:          "delivery-b",
				Type:        model.EventTypePullRequest,
				Action:      "opened",
				Repository:  "acme/gadgets",
				PullRequest: &model.PullRequestInfo{Owner: "acme", Repo: "gadgets", Number: 2},
			},
		}

		var wg sync.WaitGroup
		for _, event := range events {
			wg.Add(1)
			go func(ev *model.WebhookEvent) {
				defer wg.Done()
				result := uc.HandleEvent(ctx, ev)
				gt.Equal(t, result.Success, true)
			}(event)
		}
		wg.Wait()

		gt.Equal(t, len(ghClient.reviews), 2)
		for _, review := range ghClient.reviews {
			gt.V(t, strings.Contains(review.body, fmt.Sprintf("+ change in acme/%s", review.repo))).Equal(true)
		}
	})
}
