package rules

import (
	"context"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type fileSource struct {
	path string
}

// NewFileSource creates a rule source that reads a local YAML file. The file
// is re-read on every Fetch, so edits apply without restarting.
func NewFileSource(path string) interfaces.RuleSource {
	return &fileSource{
		path: path,
	}
}

// Fetch loads and parses the labeling rules from the local file
func (s *fileSource) Fetch(ctx context.Context, pr *model.PullRequestInfo) (*model.RuleSet, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(types.ErrRulesNotFound, "rules file does not exist", goerr.V("path", s.path))
		}
		return nil, goerr.Wrap(err, "failed to read rules file", goerr.V("path", s.path))
	}

	ruleSet, err := model.ParseRuleSet(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse rules file", goerr.V("path", s.path))
	}

	ctxlog.From(ctx).Debug("Loaded labeling rules from file",
		"path", s.path,
		"rule_count", ruleSet.Len(),
	)

	return ruleSet, nil
}
