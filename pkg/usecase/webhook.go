package usecase

import (
	"context"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/utils/async"
	"github.com/m-mizutani/goerr/v2"
)

type webhookUseCase struct {
	processor interfaces.EventProcessor
}

// NewWebhook creates a new instance of WebhookUseCase
func NewWebhook(processor interfaces.EventProcessor) *webhookUseCase {
	return &webhookUseCase{
		processor: processor,
	}
}

// ProcessEvent validates a webhook event and hands it to the event processor.
// Processing runs asynchronously so the webhook delivery is acknowledged
// before any GitHub API work starts.
func (uc *webhookUseCase) ProcessEvent(ctx context.Context, event *model.WebhookEvent) error {
	logger := ctxlog.From(ctx)

	logger.Info("Processing webhook event",
		"id", event.ID,
		"type", event.Type,
		"action", event.Action,
		"repository", event.Repository,
		"sender", event.Sender,
		"supported", event.IsSupportedEvent(),
	)

	if !event.IsSupportedEvent() {
		logger.Debug("Ignoring unsupported event",
			"type", event.Type,
			"action", event.Action,
		)
		return nil
	}

	payload, err := github.ParseWebHook(string(event.Type), event.RawPayload)
	if err != nil {
		return goerr.Wrap(err, "failed to parse webhook payload", goerr.V("type", event.Type))
	}

	async.Dispatch(ctx, func(ctx context.Context) error {
		return uc.processor.ProcessEvent(ctx, string(event.Type), payload)
	})

	return nil
}
