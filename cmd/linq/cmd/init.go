package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/carlosnayan/linq-go/cli"
	"github.com/carlosnayan/linq-go/internal/config"
)

var (
	providerFlag string
	forceFlag    bool
)

var initCmd = &cli.Command{
	Name:  "init",
	Short: "Create a starter linq.conf",
	Long: `Writes linq.conf in the current directory with a datasource read
from DATABASE_URL and an example users/posts schema.`,
	Flags: []*cli.Flag{
		{
			Name:  "provider",
			Short: "p",
			Usage: "Database provider (postgresql, mysql, sqlite)",
			Value: &providerFlag,
		},
		{
			Name:  "force",
			Short: "f",
			Usage: "Overwrite an existing linq.conf",
			Value: &forceFlag,
		},
	},
	Run: runInit,
}

func runInit(args []string) error {
	defer func() {
		providerFlag = ""
		forceFlag = false
	}()

	if _, err := os.Stat(config.FileName); err == nil && !forceFlag {
		return fmt.Errorf("%s already exists in this directory. Use 'linq init --force' to overwrite", config.FileName)
	}

	content := config.Sample
	if providerFlag != "" {
		provider := strings.ToLower(providerFlag)
		switch provider {
		case "postgresql", "postgres", "mysql", "sqlite":
		default:
			return fmt.Errorf("unsupported provider %q", providerFlag)
		}
		content = strings.Replace(content, `provider = "postgresql"`, fmt.Sprintf("provider = %q", provider), 1)
	}

	// the sample must stay loadable
	if _, err := config.Parse(content); err != nil {
		return fmt.Errorf("generated configuration is invalid: %w", err)
	}

	if err := os.WriteFile(config.FileName, []byte(content), 0644); err != nil {
		return fmt.Errorf("error creating %s: %w", config.FileName, err)
	}

	fmt.Fprintln(stdout, Success("Created "+config.FileName))
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Next steps:")
	fmt.Fprintln(stdout, "  1. Set DATABASE_URL, in the environment or in a .env file")
	fmt.Fprintln(stdout, "  2. Describe your tables under [[tables]]")
	fmt.Fprintln(stdout, `  3. Run 'linq query --table users --where "u => u.id = 1"'`)
	return nil
}
