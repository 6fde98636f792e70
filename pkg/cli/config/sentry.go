package config

import (
	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Sentry holds error tracking configuration
type Sentry struct {
	DSN string `masq:"secret"`
	Env string
}

// Flags returns CLI flags for Sentry configuration
func (c *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN (error tracking disabled when empty)",
			Destination: &c.DSN,
			Sources:     cli.EnvVars("DROVER_SENTRY_DSN"),
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment name",
			Value:       "production",
			Destination: &c.Env,
			Sources:     cli.EnvVars("DROVER_SENTRY_ENV"),
		},
	}
}

// Configure initializes the Sentry SDK. With no DSN configured it does
// nothing and capture calls elsewhere become no-ops.
func (c *Sentry) Configure() error {
	if c.DSN == "" {
		return nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         c.DSN,
		Environment: c.Env,
		Release:     "drover@" + types.Version,
	}); err != nil {
		return goerr.Wrap(err, "failed to initialize Sentry")
	}

	return nil
}
