package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
)

// EventProcessor processes GitHub webhook events
type EventProcessor struct {
	labelerUC interfaces.LabelerUseCase
}

// NewEventProcessor creates a new GitHub event processor
func NewEventProcessor(labelerUC interfaces.LabelerUseCase) *EventProcessor {
	return &EventProcessor{
		labelerUC: labelerUC,
	}
}

// ProcessEvent processes a GitHub webhook event
func (p *EventProcessor) ProcessEvent(ctx context.Context, eventType string, payload interface{}) error {
	logger := ctxlog.From(ctx)

	switch eventType {
	case "pull_request":
		return p.processPullRequestEvent(ctx, payload)
	default:
		logger.Info("Ignoring unsupported event type", "event_type", eventType)
		return nil
	}
}

// processPullRequestEvent processes a GitHub pull request event
func (p *EventProcessor) processPullRequestEvent(ctx context.Context, payload interface{}) error {
	logger := ctxlog.From(ctx)

	prEvent, ok := payload.(*github.PullRequestEvent)
	if !ok {
		logger.Warn("Invalid pull request event payload")
		return nil
	}

	switch prEvent.GetAction() {
	case "opened", "synchronize", "reopened":
	default:
		logger.Info("Ignoring pull request event with unhandled action",
			"action", prEvent.GetAction(),
		)
		return nil
	}

	// Extract pull request information
	prInfo, err := p.extractPullRequestInfo(prEvent)
	if err != nil {
		logger.Error("Failed to extract pull request info", "error", err)
		return err
	}

	logger.Info("Processing pull request event",
		"owner", prInfo.Owner,
		"repo", prInfo.Repo,
		"pull_number", prInfo.Number,
		"action", prEvent.GetAction(),
		"head_sha", prInfo.HeadSHA,
	)

	// Label pull request through use case
	result, err := p.labelerUC.LabelPullRequest(ctx, prInfo)
	if err != nil {
		logger.Error("Failed to label pull request", "error", err,
			"owner", prInfo.Owner,
			"repo", prInfo.Repo,
			"pull_number", prInfo.Number,
		)
		return err
	}

	logger.Info("Successfully labeled pull request",
		"owner", prInfo.Owner,
		"repo", prInfo.Repo,
		"pull_number", prInfo.Number,
		"matched", result.Matched,
		"added", result.Added,
		"removed", result.Removed,
	)

	return nil
}

// extractPullRequestInfo extracts pull request information from a GitHub pull request event
func (p *EventProcessor) extractPullRequestInfo(event *github.PullRequestEvent) (*model.PullRequestInfo, error) {
	if event.GetRepo() == nil {
		return nil, fmt.Errorf("missing repository information in pull request event")
	}

	if event.GetPullRequest() == nil {
		return nil, fmt.Errorf("missing pull request information in event")
	}

	// Use Get*() helper methods for concise and nil-safe field access
	owner := event.GetRepo().GetOwner().GetLogin()
	repo := event.GetRepo().GetName()
	number := event.GetPullRequest().GetNumber()
	headSHA := event.GetPullRequest().GetHead().GetSHA()
	defaultBranch := event.GetRepo().GetDefaultBranch()

	if owner == "" || repo == "" || number == 0 {
		return nil, fmt.Errorf("missing required fields: owner=%s, repo=%s, number=%d", owner, repo, number)
	}

	// Non-nil even when empty: the payload is authoritative for the current
	// label state, so the labeler does not re-fetch it.
	labels := make([]types.Label, 0, len(event.GetPullRequest().Labels))
	for _, l := range event.GetPullRequest().Labels {
		labels = append(labels, types.Label(l.GetName()))
	}

	return &model.PullRequestInfo{
		Owner:         owner,
		Repo:          repo,
		Number:        number,
		HeadSHA:       headSHA,
		DefaultBranch: defaultBranch,
		Labels:        labels,
	}, nil
}
