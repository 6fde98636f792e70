package config

import (
	"os"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// GitHub holds GitHub configuration. Secret-bearing fields carry the masq
// tag so the struct can be logged without leaking credentials.
type GitHub struct {
	AppID          string
	InstallationID string
	PrivateKey     string
	WebhookSecret  string `masq:"secret"`
	Token          string `masq:"secret"`
	BaseURL        string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("DROVER_GITHUB_APP_ID"),
		},
		&cli.StringFlag{
			Name:        "github-installation-id",
			Usage:       "GitHub App installation ID",
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("DROVER_GITHUB_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-private-key",
			Usage:       "Path to the GitHub App private key PEM file",
			Destination: &c.PrivateKey,
			Sources:     cli.EnvVars("DROVER_GITHUB_PRIVATE_KEY"),
		},
		&cli.StringFlag{
			Name:        "github-webhook-secret",
			Usage:       "GitHub webhook secret",
			Destination: &c.WebhookSecret,
			Sources:     cli.EnvVars("DROVER_GITHUB_WEBHOOK_SECRET"),
		},
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub personal access token (for one-shot runs)",
			Destination: &c.Token,
			Sources:     cli.EnvVars("DROVER_GITHUB_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "github-base-url",
			Usage:       "GitHub API base URL (for GitHub Enterprise Server)",
			Destination: &c.BaseURL,
			Sources:     cli.EnvVars("DROVER_GITHUB_BASE_URL"),
		},
	}
}

// ParseAppID parses the App ID flag
func (c *GitHub) ParseAppID() (int64, error) {
	id, err := strconv.ParseInt(c.AppID, 10, 64)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid GitHub App ID", goerr.V("app_id", c.AppID))
	}
	return id, nil
}

// ParseInstallationID parses the installation ID flag
func (c *GitHub) ParseInstallationID() (int64, error) {
	id, err := strconv.ParseInt(c.InstallationID, 10, 64)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid GitHub installation ID", goerr.V("installation_id", c.InstallationID))
	}
	return id, nil
}

// ReadPrivateKey reads the GitHub App private key file
func (c *GitHub) ReadPrivateKey() ([]byte, error) {
	if c.PrivateKey == "" {
		return nil, goerr.New("GitHub App private key path is empty")
	}

	key, err := os.ReadFile(c.PrivateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read GitHub App private key", goerr.V("path", c.PrivateKey))
	}
	return key, nil
}
