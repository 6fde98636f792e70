package interfaces

import (
	"context"

	"github.com/google/go-github/v75/github"
)

// GitHubClient defines operations for interacting with GitHub API
type GitHubClient interface {
	// ListPullRequestFiles returns the repository-relative paths of every
	// file changed by a pull request, following pagination
	ListPullRequestFiles(ctx context.Context, owner, repo string, number int) ([]string, error)

	// GetPullRequest fetches a pull request
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error)

	// GetFileContent fetches the decoded content of a file at the given ref.
	// An empty ref means the repository default branch.
	GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error)

	// ListIssueLabels returns the labels currently attached to an issue or pull request
	ListIssueLabels(ctx context.Context, owner, repo string, number int) ([]string, error)

	// AddLabels attaches labels to an issue or pull request
	AddLabels(ctx context.Context, owner, repo string, number int, labels []string) error

	// RemoveLabel detaches a single label from an issue or pull request
	RemoveLabel(ctx context.Context, owner, repo string, number int, label string) error
}
