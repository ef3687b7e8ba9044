package cmd

import (
	"io"
	"os"

	"github.com/carlosnayan/linq-go"
	"github.com/carlosnayan/linq-go/cli"
	"github.com/carlosnayan/linq-go/internal/config"
	contextutil "github.com/carlosnayan/linq-go/internal/context"
	"github.com/carlosnayan/linq-go/internal/errors"
	"github.com/carlosnayan/linq-go/internal/logger"
)

var (
	configFile string
	verbose    bool
)

// stdout is where commands print their results
var stdout io.Writer = os.Stdout

// Execute runs the CLI application
func Execute() error {
	return run(os.Args[1:])
}

// run executes args and hides schema details from the returned error when
// ENV is production
func run(args []string) error {
	return errors.SanitizeError(newApp().Run(args))
}

func newApp() *cli.App {
	app := cli.NewApp(
		"linq",
		linq.Version,
		"Translate entity predicates and run them as queries",
	)
	app.Out = stdout

	app.AddGlobalFlag(&cli.Flag{
		Name:  "config",
		Short: "c",
		Usage: "Path to configuration file (default: linq.conf, searched upwards)",
		Value: &configFile,
	})
	app.AddGlobalFlag(&cli.Flag{
		Name:  "verbose",
		Usage: "Log every statement and execution",
		Value: &verbose,
	})

	app.AddCommand(translateCmd)
	app.AddCommand(queryCmd)
	app.AddCommand(initCmd)
	app.AddCommand(watchCmd)

	return app
}

// loadConfig loads linq.conf and applies its log levels and query timeout
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	applyConfig(cfg)
	return cfg, nil
}

func applyConfig(cfg *config.Config) {
	switch {
	case verbose:
		logger.SetLogLevels([]string{"query", "info", "warn", "error"})
	case len(cfg.Log) > 0:
		logger.SetLogLevels(cfg.Log)
	}
	if cfg.QueryTimeout.Duration > 0 {
		contextutil.SetQueryTimeout(cfg.QueryTimeout.Duration)
	}
}
