package model

import "github.com/m-mizutani/drover/pkg/domain/types"

// PullRequestInfo represents information extracted from a pull request event
type PullRequestInfo struct {
	Owner         string        // Repository owner
	Repo          string        // Repository name
	Number        int           // Pull request number
	HeadSHA       string        // Head commit SHA of the pull request
	DefaultBranch string        // Default branch of the base repository
	Labels        []types.Label // Labels currently attached to the pull request
}

// LabelResult represents the outcome of one labeling pass over a pull request
type LabelResult struct {
	Matched []types.Label // Labels the rule set produced for the changed files
	Added   []types.Label // Labels newly attached to the pull request
	Removed []types.Label // Governed labels detached because no rule matched
}
