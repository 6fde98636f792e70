package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate a rules file and list its labels",
		ArgsUsage: "<rules-file>",
		Action: func(ctx context.Context, c *cli.Command) error {
			path := c.Args().First()
			if path == "" {
				return goerr.New("rules file argument is required")
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return goerr.Wrap(err, "failed to read rules file", goerr.V("path", path))
			}

			ruleSet, err := model.ParseRuleSet(data)
			if err != nil {
				fmt.Printf("%s %s\n", color.RedString("NG"), path)
				return err
			}

			fmt.Printf("%s %s (%d labels)\n", color.GreenString("OK"), path, ruleSet.Len())
			for _, label := range ruleSet.Labels() {
				fmt.Printf("  - %s\n", label)
			}
			return nil
		},
	}
}
