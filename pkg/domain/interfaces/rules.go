package interfaces

import (
	"context"

	"github.com/m-mizutani/drover/pkg/domain/model"
)

// RuleSource yields the rule set governing one pull request. A source is
// consulted once per evaluation and the returned RuleSet is discarded
// afterwards, so rule changes take effect on the next event without any
// cache invalidation.
type RuleSource interface {
	// Fetch loads and parses the labeling rules for the pull request
	Fetch(ctx context.Context, pr *model.PullRequestInfo) (*model.RuleSet, error)
}
