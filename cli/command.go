package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Command represents a CLI command
type Command struct {
	Name        string
	Short       string
	Long        string
	Usage       string
	Run         func(args []string) error
	Subcommands []*Command
	Flags       []*Flag
}

// Flag represents a command flag
type Flag struct {
	Name     string
	Short    string
	Usage    string
	Required bool
	// Value is a *string, *bool, *int, *time.Duration or *[]string. A
	// *[]string flag may be repeated and collects every value.
	Value interface{}
}

// App represents the CLI application
type App struct {
	Name        string
	Version     string
	Description string
	Commands    []*Command
	GlobalFlags []*Flag

	Out io.Writer
	Err io.Writer
}

// NewApp creates a new CLI application writing to stdout and stderr
func NewApp(name, version, description string) *App {
	return &App{
		Name:        name,
		Version:     version,
		Description: description,
		Commands:    []*Command{},
		GlobalFlags: []*Flag{},
		Out:         os.Stdout,
		Err:         os.Stderr,
	}
}

// AddCommand adds a command to the app
func (a *App) AddCommand(cmd *Command) {
	a.Commands = append(a.Commands, cmd)
}

// AddGlobalFlag adds a global flag to the app
func (a *App) AddGlobalFlag(flag *Flag) {
	a.GlobalFlags = append(a.GlobalFlags, flag)
}

// Execute runs the CLI application with os.Args
func (a *App) Execute() error {
	return a.Run(os.Args[1:])
}

// Run runs the CLI application with args
func (a *App) Run(args []string) error {
	if len(args) == 0 {
		a.printUsage()
		return nil
	}

	if args[0] == "--version" {
		fmt.Fprintf(a.Out, "%s version %s\n", a.Name, a.Version)
		return nil
	}
	if args[0] == "--help" || args[0] == "-h" {
		a.printUsage()
		return nil
	}

	_, remainingArgs, err := parseFlags(args, a.GlobalFlags)
	if err != nil {
		return err
	}

	if len(remainingArgs) == 0 {
		a.printUsage()
		return nil
	}

	cmdName := remainingArgs[0]
	cmdArgs := remainingArgs[1:]

	var cmd *Command
	for _, c := range a.Commands {
		if c.Name == cmdName {
			cmd = c
			break
		}
	}

	if cmd == nil {
		fmt.Fprintf(a.Err, "Unknown command: %s\n\n", cmdName)
		a.printUsage()
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	if len(cmdArgs) > 0 && (cmdArgs[0] == "--help" || cmdArgs[0] == "-h") {
		cmd.printUsage(a.Out)
		return nil
	}

	if len(cmdArgs) > 0 && len(cmd.Subcommands) > 0 && !strings.HasPrefix(cmdArgs[0], "-") {
		for _, subCmd := range cmd.Subcommands {
			if subCmd.Name == cmdArgs[0] {
				_, subCmdArgs, err := parseFlags(cmdArgs[1:], subCmd.Flags)
				if err != nil {
					return err
				}
				if subCmd.Run == nil {
					return fmt.Errorf("subcommand %s has no run function", subCmd.Name)
				}
				return subCmd.Run(subCmdArgs)
			}
		}
	}

	if len(cmd.Subcommands) > 0 && cmd.Run == nil {
		cmd.printUsage(a.Out)
		return nil
	}

	_, finalArgs, err := parseFlags(cmdArgs, cmd.Flags)
	if err != nil {
		return err
	}
	if cmd.Run == nil {
		return fmt.Errorf("command %s has no run function", cmdName)
	}
	return cmd.Run(finalArgs)
}

// parseFlags parses flags from arguments and returns parsed flags and remaining args.
// Flags may be written as --name value, --name=value or -short value.
func parseFlags(args []string, flags []*Flag) (map[string]interface{}, []string, error) {
	parsed := make(map[string]interface{})
	remaining := []string{}
	i := 0

	for i < len(args) {
		arg := args[i]

		if len(arg) < 2 || arg[0] != '-' || isNumber(arg) {
			remaining = append(remaining, arg)
			i++
			continue
		}

		flagName := strings.TrimLeft(arg, "-")
		inline, hasInline := "", false
		if idx := strings.Index(flagName, "="); idx != -1 {
			flagName, inline, hasInline = flagName[:idx], flagName[idx+1:], true
		}

		var flag *Flag
		for _, f := range flags {
			if f.Name == flagName || (f.Short != "" && f.Short == flagName) {
				flag = f
				break
			}
		}
		if flag == nil {
			// unknown here, may belong to a command
			remaining = append(remaining, arg)
			i++
			continue
		}

		_, isBool := flag.Value.(*bool)
		var value string
		switch {
		case hasInline:
			value = inline
			i++
		case isBool:
			value = "true"
			i++
		case i+1 < len(args):
			value = args[i+1]
			i += 2
		default:
			return nil, nil, fmt.Errorf("flag --%s needs a value", flag.Name)
		}

		if err := setFlagValue(flag, value); err != nil {
			return nil, nil, err
		}
		parsed[flag.Name] = value
	}

	for _, flag := range flags {
		if flag.Required {
			if _, ok := parsed[flag.Name]; !ok {
				return nil, nil, fmt.Errorf("flag --%s is required", flag.Name)
			}
		}
	}

	return parsed, remaining, nil
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// setFlagValue sets the value of a flag
func setFlagValue(flag *Flag, value string) error {
	switch v := flag.Value.(type) {
	case *string:
		*v = value
	case *bool:
		*v = value == "true" || value == "1"
	case *int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("flag --%s: invalid integer %q", flag.Name, value)
		}
		*v = n
	case *time.Duration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("flag --%s: invalid duration %q", flag.Name, value)
		}
		*v = d
	case *[]string:
		*v = append(*v, value)
	default:
		return fmt.Errorf("flag --%s has unsupported type %T", flag.Name, flag.Value)
	}
	return nil
}

// printUsage prints the usage information
func (a *App) printUsage() {
	fmt.Fprintf(a.Out, "%s - %s\n\n", a.Name, a.Description)
	fmt.Fprintf(a.Out, "Usage:\n  %s [command] [flags] [arguments]\n\n", a.Name)

	if len(a.Commands) > 0 {
		fmt.Fprintln(a.Out, "Commands:")
		for _, cmd := range a.Commands {
			fmt.Fprintf(a.Out, "  %-15s %s\n", cmd.Name, cmd.Short)
		}
		fmt.Fprintln(a.Out)
	}

	if len(a.GlobalFlags) > 0 {
		fmt.Fprintln(a.Out, "Global Flags:")
		printFlags(a.Out, a.GlobalFlags)
		fmt.Fprintln(a.Out)
	}

	fmt.Fprintf(a.Out, "Use '%s [command] --help' for more information about a command.\n", a.Name)
}

// printUsage prints usage for a specific command
func (cmd *Command) printUsage(w io.Writer) {
	if cmd.Long != "" {
		fmt.Fprintln(w, cmd.Long)
		fmt.Fprintln(w)
	}

	if cmd.Usage != "" {
		fmt.Fprintf(w, "Usage:\n  %s\n\n", cmd.Usage)
	} else {
		fmt.Fprintf(w, "Usage:\n  %s\n\n", cmd.Name)
	}

	if len(cmd.Flags) > 0 {
		fmt.Fprintln(w, "Flags:")
		printFlags(w, cmd.Flags)
		fmt.Fprintln(w)
	}

	if len(cmd.Subcommands) > 0 {
		fmt.Fprintln(w, "Subcommands:")
		for _, subCmd := range cmd.Subcommands {
			fmt.Fprintf(w, "  %-15s %s\n", subCmd.Name, subCmd.Short)
		}
		fmt.Fprintln(w)
	}
}

func printFlags(w io.Writer, flags []*Flag) {
	for _, flag := range flags {
		short := ""
		if flag.Short != "" {
			short = fmt.Sprintf("-%s, ", flag.Short)
		}
		required := ""
		if flag.Required {
			required = " (required)"
		}
		fmt.Fprintf(w, "  %s--%s\t%s%s\n", short, flag.Name, flag.Usage, required)
	}
}
