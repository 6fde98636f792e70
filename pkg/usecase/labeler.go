package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type labelerUseCase struct {
	githubClient interfaces.GitHubClient
	ruleSource   interfaces.RuleSource
	syncLabels   bool
	dryRun       bool
}

// LabelerOption configures the labeler use case
type LabelerOption func(*labelerUseCase)

// WithSyncLabels enables removal of governed labels that no longer match.
// Labels outside the rule set are never touched.
func WithSyncLabels() LabelerOption {
	return func(uc *labelerUseCase) {
		uc.syncLabels = true
	}
}

// WithDryRun reports what would change without calling the labeling API
func WithDryRun() LabelerOption {
	return func(uc *labelerUseCase) {
		uc.dryRun = true
	}
}

// NewLabeler creates a new instance of LabelerUseCase
func NewLabeler(githubClient interfaces.GitHubClient, ruleSource interfaces.RuleSource, opts ...LabelerOption) interfaces.LabelerUseCase {
	uc := &labelerUseCase{
		githubClient: githubClient,
		ruleSource:   ruleSource,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// LabelPullRequest evaluates the labeling rules against the files changed by
// the pull request and reconciles its labels. Rules are fetched fresh for
// every call, so a configuration change takes effect on the next event.
func (uc *labelerUseCase) LabelPullRequest(ctx context.Context, pr *model.PullRequestInfo) (*model.LabelResult, error) {
	logger := ctxlog.From(ctx).With("eval_id", types.NewEvalID())

	logger.Info("Processing pull request labeling",
		"owner", pr.Owner,
		"repo", pr.Repo,
		"pull_number", pr.Number,
		"dry_run", uc.dryRun,
		"sync_labels", uc.syncLabels,
	)

	rules, err := uc.ruleSource.Fetch(ctx, pr)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch labeling rules",
			goerr.V("owner", pr.Owner), goerr.V("repo", pr.Repo))
	}

	files, err := uc.githubClient.ListPullRequestFiles(ctx, pr.Owner, pr.Repo, pr.Number)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list changed files",
			goerr.V("owner", pr.Owner), goerr.V("repo", pr.Repo), goerr.V("pull_number", pr.Number))
	}

	matched, err := rules.Evaluate(files)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to evaluate labeling rules")
	}

	logger.Info("Evaluated labeling rules",
		"file_count", len(files),
		"rule_count", rules.Len(),
		"matched", matched,
	)

	current := pr.Labels
	if current == nil {
		raw, err := uc.githubClient.ListIssueLabels(ctx, pr.Owner, pr.Repo, pr.Number)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list current labels",
				goerr.V("owner", pr.Owner), goerr.V("repo", pr.Repo), goerr.V("pull_number", pr.Number))
		}
		current = toLabels(raw)
	}

	result := &model.LabelResult{
		Matched: matched,
		Added:   missingLabels(matched, current),
	}
	if uc.syncLabels {
		result.Removed = staleLabels(current, rules.Labels(), matched)
	}

	if uc.dryRun {
		logger.Info("Dry run enabled, skipping label application",
			"would_add", result.Added,
			"would_remove", result.Removed,
		)
		return result, nil
	}

	if len(result.Added) > 0 {
		if err := uc.githubClient.AddLabels(ctx, pr.Owner, pr.Repo, pr.Number, toStrings(result.Added)); err != nil {
			return nil, goerr.Wrap(err, "failed to add labels",
				goerr.V("labels", result.Added), goerr.V("pull_number", pr.Number))
		}
	}

	for _, label := range result.Removed {
		if err := uc.githubClient.RemoveLabel(ctx, pr.Owner, pr.Repo, pr.Number, label.String()); err != nil {
			return nil, goerr.Wrap(err, "failed to remove label",
				goerr.V("label", label), goerr.V("pull_number", pr.Number))
		}
	}

	logger.Info("Reconciled pull request labels",
		"added", result.Added,
		"removed", result.Removed,
	)

	return result, nil
}

// missingLabels returns the matched labels not yet attached, preserving
// matched order.
func missingLabels(matched, current []types.Label) []types.Label {
	attached := make(map[types.Label]struct{}, len(current))
	for _, l := range current {
		attached[l] = struct{}{}
	}

	var missing []types.Label
	for _, l := range matched {
		if _, ok := attached[l]; !ok {
			missing = append(missing, l)
		}
	}
	return missing
}

// staleLabels returns attached labels that the rule set governs but no rule
// matched. Labels not governed by any rule are left alone.
func staleLabels(current, governed, matched []types.Label) []types.Label {
	governedSet := make(map[types.Label]struct{}, len(governed))
	for _, l := range governed {
		governedSet[l] = struct{}{}
	}
	matchedSet := make(map[types.Label]struct{}, len(matched))
	for _, l := range matched {
		matchedSet[l] = struct{}{}
	}

	var stale []types.Label
	for _, l := range current {
		if _, ok := governedSet[l]; !ok {
			continue
		}
		if _, ok := matchedSet[l]; ok {
			continue
		}
		stale = append(stale, l)
	}
	return stale
}

func toLabels(raw []string) []types.Label {
	labels := make([]types.Label, 0, len(raw))
	for _, r := range raw {
		labels = append(labels, types.Label(r))
	}
	return labels
}

func toStrings(labels []types.Label) []string {
	raw := make([]string, 0, len(labels))
	for _, l := range labels {
		raw = append(raw, l.String())
	}
	return raw
}
