package interfaces

//go:generate moq -out mocks/usecase_mock.go -pkg mocks . WebhookUseCase

import (
	"context"

	"github.com/m-mizutani/drover/pkg/domain/model"
)

// WebhookUseCase defines the interface for webhook event processing
type WebhookUseCase interface {
	// ProcessEvent processes a webhook event
	ProcessEvent(ctx context.Context, event *model.WebhookEvent) error
}

// LabelerUseCase defines operations for labeling pull requests
type LabelerUseCase interface {
	// LabelPullRequest evaluates the labeling rules against the files changed
	// by the pull request and reconciles its labels
	LabelPullRequest(ctx context.Context, pr *model.PullRequestInfo) (*model.LabelResult, error)
}

// EventProcessor routes parsed GitHub webhook payloads to their use cases
type EventProcessor interface {
	// ProcessEvent processes one parsed webhook payload
	ProcessEvent(ctx context.Context, eventType string, payload interface{}) error
}
