package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdCheck() *cli.Command {
	var (
		rulesFile string
		jsonOut   bool
	)

	return &cli.Command{
		Name:      "check",
		Usage:     "Evaluate rules against changed file paths without touching GitHub",
		ArgsUsage: "[file ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "rules",
				Aliases:     []string{"r"},
				Usage:       "Rules YAML file",
				Required:    true,
				Destination: &rulesFile,
				Sources:     cli.EnvVars("DROVER_RULES_FILE"),
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "Print the result as JSON",
				Destination: &jsonOut,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			data, err := os.ReadFile(rulesFile)
			if err != nil {
				return goerr.Wrap(err, "failed to read rules file", goerr.V("path", rulesFile))
			}

			ruleSet, err := model.ParseRuleSet(data)
			if err != nil {
				return err
			}

			// Changed files come from arguments, or stdin with one path per
			// line (the shape of git diff --name-only output)
			files := c.Args().Slice()
			if len(files) == 0 {
				files, err = readLines(os.Stdin)
				if err != nil {
					return goerr.Wrap(err, "failed to read file list from stdin")
				}
			}

			labels, err := ruleSet.Evaluate(files)
			if err != nil {
				return err
			}

			if jsonOut {
				if labels == nil {
					labels = []types.Label{}
				}
				return json.NewEncoder(os.Stdout).Encode(struct {
					Files  []string      `json:"files"`
					Labels []types.Label `json:"labels"`
				}{Files: files, Labels: labels})
			}

			if len(labels) == 0 {
				fmt.Println("no labels matched")
				return nil
			}
			for _, label := range labels {
				fmt.Println(color.GreenString(label.String()))
			}
			return nil
		},
	}
}

func readLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
