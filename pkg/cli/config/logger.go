package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/masq"
	"github.com/urfave/cli/v3"
)

// Logger holds logger configuration
type Logger struct {
	Level string
	JSON  bool
}

// Flags returns CLI flags for logger configuration
func (c *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &c.Level,
			Sources:     cli.EnvVars("DROVER_LOG_LEVEL"),
		},
		&cli.BoolFlag{
			Name:        "log-json",
			Usage:       "Output logs in JSON format",
			Value:       false,
			Destination: &c.JSON,
			Sources:     cli.EnvVars("DROVER_LOG_JSON"),
		},
	}
}

// Configure configures and returns a logger. Attrs of fields tagged
// `masq:"secret"` are redacted in both output formats, so configuration
// structs can be logged as-is.
func (c *Logger) Configure() (*slog.Logger, error) {
	level, err := c.parseLevel()
	if err != nil {
		return nil, err
	}

	redact := masq.New(masq.WithTag("secret"))

	var handler slog.Handler
	if c.JSON {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: redact,
		})
	} else {
		handler = clog.New(
			clog.WithWriter(os.Stdout),
			clog.WithLevel(level),
			clog.WithReplaceAttr(redact),
			clog.WithSource(true),
			clog.WithTimeFmt("2006-01-02 15:04:05"),
			clog.WithColorMap(&clog.ColorMap{
				Time:      color.New(color.FgHiBlack),
				Message:   color.New(color.FgHiWhite),
				AttrKey:   color.New(color.FgHiCyan),
				AttrValue: color.New(color.FgHiWhite),
			}),
		)
	}

	return slog.New(handler), nil
}

func (c *Logger) parseLevel() (slog.Level, error) {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, goerr.New("invalid log level", goerr.V("level", c.Level))
	}
}
