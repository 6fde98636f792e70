package config

import (
	"github.com/m-mizutani/drover/pkg/infra/rules"
	"github.com/urfave/cli/v3"
)

// Labeler holds labeling behavior configuration
type Labeler struct {
	RulesPath  string
	RulesFile  string
	SyncLabels bool
	DryRun     bool
}

// Flags returns CLI flags for labeler configuration
func (c *Labeler) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "rules-path",
			Usage:       "Path of the rules file inside the target repository",
			Value:       rules.DefaultPath,
			Destination: &c.RulesPath,
			Sources:     cli.EnvVars("DROVER_RULES_PATH"),
		},
		&cli.StringFlag{
			Name:        "rules-file",
			Usage:       "Local rules file; overrides fetching rules from the repository",
			Destination: &c.RulesFile,
			Sources:     cli.EnvVars("DROVER_RULES_FILE"),
		},
		&cli.BoolFlag{
			Name:        "sync-labels",
			Usage:       "Remove governed labels whose rules no longer match",
			Value:       false,
			Destination: &c.SyncLabels,
			Sources:     cli.EnvVars("DROVER_SYNC_LABELS"),
		},
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Report label changes without applying them",
			Value:       false,
			Destination: &c.DryRun,
			Sources:     cli.EnvVars("DROVER_DRY_RUN"),
		},
	}
}
