package cli

import (
	"context"
	"strconv"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/drover/pkg/cli/config"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdRun() *cli.Command {
	var (
		githubCfg  config.GitHub
		labelerCfg config.Labeler
		owner      string
		repo       string
		prNumber   string
	)

	flags := append(githubCfg.Flags(), labelerCfg.Flags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "owner",
			Usage:       "Repository owner",
			Required:    true,
			Destination: &owner,
			Sources:     cli.EnvVars("DROVER_OWNER"),
		},
		&cli.StringFlag{
			Name:        "repo",
			Usage:       "Repository name",
			Required:    true,
			Destination: &repo,
			Sources:     cli.EnvVars("DROVER_REPO"),
		},
		&cli.StringFlag{
			Name:        "pr",
			Usage:       "Pull request number",
			Required:    true,
			Destination: &prNumber,
			Sources:     cli.EnvVars("DROVER_PR"),
		},
	)

	return &cli.Command{
		Name:  "run",
		Usage: "Label a single pull request and exit",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			number, err := strconv.Atoi(prNumber)
			if err != nil {
				return goerr.Wrap(err, "invalid pull request number", goerr.V("pr", prNumber))
			}

			githubClient, err := buildGitHubClient(ctx, &githubCfg)
			if err != nil {
				return err
			}

			pr, err := githubClient.GetPullRequest(ctx, owner, repo, number)
			if err != nil {
				return err
			}

			// Labels left nil so the labeler fetches the current state itself
			prInfo := &model.PullRequestInfo{
				Owner:         owner,
				Repo:          repo,
				Number:        number,
				HeadSHA:       pr.GetHead().GetSHA(),
				DefaultBranch: pr.GetBase().GetRepo().GetDefaultBranch(),
			}

			ruleSource := buildRuleSource(githubClient, &labelerCfg)
			labelerUC := usecase.NewLabeler(githubClient, ruleSource, labelerOptions(&labelerCfg)...)

			result, err := labelerUC.LabelPullRequest(ctx, prInfo)
			if err != nil {
				return err
			}

			logger.Info("Labeling complete",
				"owner", owner,
				"repo", repo,
				"pull_number", number,
				"matched", result.Matched,
				"added", result.Added,
				"removed", result.Removed,
			)
			return nil
		},
	}
}
