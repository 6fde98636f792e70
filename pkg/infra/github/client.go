package github

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2"
)

type client struct {
	githubClient *github.Client
}

type clientConfig struct {
	baseURL string
}

// ClientOption is a functional option for client configuration
type ClientOption func(*clientConfig)

// WithBaseURL points the client at a GitHub Enterprise Server or a test
// server instead of github.com
func WithBaseURL(baseURL string) ClientOption {
	return func(c *clientConfig) {
		c.baseURL = baseURL
	}
}

// NewClient creates a new GitHub client with App authentication
func NewClient(appID, installationID int64, privateKey []byte, opts ...ClientOption) (interfaces.GitHubClient, error) {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	// Create GitHub App transport
	itr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport", goerr.V("app_id", appID))
	}
	if cfg.baseURL != "" {
		itr.BaseURL = strings.TrimSuffix(cfg.baseURL, "/")
	}

	githubClient, err := newGitHubClient(&http.Client{Transport: itr}, cfg)
	if err != nil {
		return nil, err
	}

	return &client{
		githubClient: githubClient,
	}, nil
}

// NewTokenClient creates a new GitHub client authenticated by a personal
// access token
func NewTokenClient(ctx context.Context, token string, opts ...ClientOption) (interfaces.GitHubClient, error) {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	githubClient, err := newGitHubClient(oauth2.NewClient(ctx, ts), cfg)
	if err != nil {
		return nil, err
	}

	return &client{
		githubClient: githubClient,
	}, nil
}

func newGitHubClient(httpClient *http.Client, cfg *clientConfig) (*github.Client, error) {
	githubClient := github.NewClient(httpClient)
	if cfg.baseURL == "" {
		return githubClient, nil
	}

	base, err := url.Parse(strings.TrimSuffix(cfg.baseURL, "/") + "/")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse GitHub base URL", goerr.V("base_url", cfg.baseURL))
	}
	githubClient.BaseURL = base

	return githubClient, nil
}

// ListPullRequestFiles returns the repository-relative paths of every file
// changed by a pull request, following pagination
func (c *client) ListPullRequestFiles(ctx context.Context, owner, repo string, number int) ([]string, error) {
	opts := &github.ListOptions{PerPage: 100}

	var files []string
	for {
		page, resp, err := c.githubClient.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list pull request files",
				goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("pull_number", number))
		}

		for _, f := range page {
			if name := f.GetFilename(); name != "" {
				files = append(files, name)
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return files, nil
}

// GetPullRequest fetches a pull request
func (c *client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	pr, _, err := c.githubClient.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get pull request",
			goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("pull_number", number))
	}
	return pr, nil
}

// GetFileContent fetches the decoded content of a file at the given ref
func (c *client) GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error) {
	file, _, _, err := c.githubClient.Repositories.GetContents(ctx, owner, repo, path, &github.RepositoryContentGetOptions{
		Ref: ref,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get file content",
			goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("path", path), goerr.V("ref", ref))
	}
	if file == nil {
		return nil, goerr.New("path is not a file", goerr.V("path", path))
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode file content", goerr.V("path", path))
	}

	return []byte(content), nil
}

// ListIssueLabels returns the labels currently attached to an issue or pull request
func (c *client) ListIssueLabels(ctx context.Context, owner, repo string, number int) ([]string, error) {
	opts := &github.ListOptions{PerPage: 100}

	var labels []string
	for {
		page, resp, err := c.githubClient.Issues.ListLabelsByIssue(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list issue labels",
				goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("issue_number", number))
		}

		for _, l := range page {
			if name := l.GetName(); name != "" {
				labels = append(labels, name)
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return labels, nil
}

// AddLabels attaches labels to an issue or pull request
func (c *client) AddLabels(ctx context.Context, owner, repo string, number int, labels []string) error {
	if len(labels) == 0 {
		return nil
	}

	if _, _, err := c.githubClient.Issues.AddLabelsToIssue(ctx, owner, repo, number, labels); err != nil {
		return goerr.Wrap(err, "failed to add labels",
			goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("issue_number", number), goerr.V("labels", labels))
	}
	return nil
}

// RemoveLabel detaches a single label from an issue or pull request
func (c *client) RemoveLabel(ctx context.Context, owner, repo string, number int, label string) error {
	if _, err := c.githubClient.Issues.RemoveLabelForIssue(ctx, owner, repo, number, label); err != nil {
		return goerr.Wrap(err, "failed to remove label",
			goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("issue_number", number), goerr.V("label", label))
	}
	return nil
}
