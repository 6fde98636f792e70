package rules

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultPath is where repositories conventionally keep their labeling rules
const DefaultPath = ".github/labeler.yml"

type repoSource struct {
	githubClient interfaces.GitHubClient
	path         string
}

// NewRepoSource creates a rule source that reads the rules file from the
// pull request's base repository at its default branch. Fetching fresh per
// event means a merged rules change governs the very next delivery.
func NewRepoSource(githubClient interfaces.GitHubClient, path string) interfaces.RuleSource {
	if path == "" {
		path = DefaultPath
	}
	return &repoSource{
		githubClient: githubClient,
		path:         path,
	}
}

// Fetch loads and parses the labeling rules for the pull request
func (s *repoSource) Fetch(ctx context.Context, pr *model.PullRequestInfo) (*model.RuleSet, error) {
	data, err := s.githubClient.GetFileContent(ctx, pr.Owner, pr.Repo, s.path, pr.DefaultBranch)
	if err != nil {
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
			return nil, goerr.Wrap(types.ErrRulesNotFound, "no rules file in repository",
				goerr.V("owner", pr.Owner), goerr.V("repo", pr.Repo), goerr.V("path", s.path))
		}
		return nil, goerr.Wrap(err, "failed to fetch rules from repository",
			goerr.V("owner", pr.Owner), goerr.V("repo", pr.Repo), goerr.V("path", s.path))
	}

	ruleSet, err := model.ParseRuleSet(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse repository rules",
			goerr.V("owner", pr.Owner), goerr.V("repo", pr.Repo), goerr.V("path", s.path))
	}

	ctxlog.From(ctx).Debug("Loaded labeling rules from repository",
		"owner", pr.Owner,
		"repo", pr.Repo,
		"path", s.path,
		"ref", pr.DefaultBranch,
		"rule_count", ruleSet.Len(),
	)

	return ruleSet, nil
}
