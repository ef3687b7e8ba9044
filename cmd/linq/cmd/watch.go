package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/carlosnayan/linq-go/cli"
	"github.com/carlosnayan/linq-go/internal/config"
	"github.com/carlosnayan/linq-go/internal/logger"
)

var watchCmd = &cli.Command{
	Name:  "watch",
	Short: "Reload linq.conf on change and apply its log levels",
	Long: `Watches linq.conf and reapplies log levels and the query timeout
every time the file changes. Invalid edits are reported and ignored.
Stops on interrupt.`,
	Run: runWatch,
}

func runWatch(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Fprintf(stdout, "Watching %s\n", Info(cfg.Path()))
	return config.Watch(ctx, cfg.Path(), func(cfg *config.Config, err error) {
		reload(cfg, err)
	})
}

// reload applies a reloaded config, keeping the previous one on error
func reload(cfg *config.Config, err error) {
	if err != nil {
		logger.Error("reload failed: %v", err)
		fmt.Fprintln(stdout, Warning("reload failed: "+err.Error()))
		return
	}
	applyConfig(cfg)
	fmt.Fprintf(stdout, "Reloaded %s (log: %v)\n", cfg.Path(), cfg.Log)
}
