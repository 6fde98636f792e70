package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/drover/pkg/cli/config"
	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/types"
	ghinfra "github.com/m-mizutani/drover/pkg/infra/github"
	"github.com/m-mizutani/drover/pkg/infra/rules"
	"github.com/m-mizutani/drover/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	var loggerCfg config.Logger
	var sentryCfg config.Sentry
	var logger *slog.Logger

	app := &cli.Command{
		Name:    "drover",
		Usage:   "Pull request auto-labeler driven by glob rules",
		Version: types.Version,
		Flags:   append(loggerCfg.Flags(), sentryCfg.Flags()...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			logger, err = loggerCfg.Configure()
			if err != nil {
				return nil, err
			}

			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)

			if err := sentryCfg.Configure(); err != nil {
				return nil, err
			}

			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdRun(),
			cmdCheck(),
			cmdValidate(),
		},
	}

	defer sentry.Flush(2 * time.Second)

	if err := app.Run(ctx, args); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("CLI execution failed", slog.Any("error", err))
		sentry.CaptureException(err)
		return err
	}

	return nil
}

// buildGitHubClient prefers token authentication when a token is configured
// and falls back to GitHub App authentication.
func buildGitHubClient(ctx context.Context, cfg *config.GitHub) (interfaces.GitHubClient, error) {
	if cfg.Token != "" {
		return buildTokenClient(ctx, cfg)
	}
	return buildAppClient(cfg)
}

func buildAppClient(cfg *config.GitHub) (interfaces.GitHubClient, error) {
	appID, err := cfg.ParseAppID()
	if err != nil {
		return nil, err
	}
	installationID, err := cfg.ParseInstallationID()
	if err != nil {
		return nil, err
	}
	privateKey, err := cfg.ReadPrivateKey()
	if err != nil {
		return nil, err
	}

	return ghinfra.NewClient(appID, installationID, privateKey, clientOptions(cfg)...)
}

func buildTokenClient(ctx context.Context, cfg *config.GitHub) (interfaces.GitHubClient, error) {
	if cfg.Token == "" {
		return nil, goerr.New("GitHub token is required")
	}
	return ghinfra.NewTokenClient(ctx, cfg.Token, clientOptions(cfg)...)
}

func clientOptions(cfg *config.GitHub) []ghinfra.ClientOption {
	var opts []ghinfra.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, ghinfra.WithBaseURL(cfg.BaseURL))
	}
	return opts
}

// buildRuleSource picks the local file source when configured, otherwise the
// rules come from the pull request's own repository.
func buildRuleSource(githubClient interfaces.GitHubClient, cfg *config.Labeler) interfaces.RuleSource {
	if cfg.RulesFile != "" {
		return rules.NewFileSource(cfg.RulesFile)
	}
	return rules.NewRepoSource(githubClient, cfg.RulesPath)
}

func labelerOptions(cfg *config.Labeler) []usecase.LabelerOption {
	var opts []usecase.LabelerOption
	if cfg.SyncLabels {
		opts = append(opts, usecase.WithSyncLabels())
	}
	if cfg.DryRun {
		opts = append(opts, usecase.WithDryRun())
	}
	return opts
}
