package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/fatih/color"

	"github.com/ink-feather-org/neat-fs/cmd"
)

// version is the current neatfs version.
const version = "0.1.0"

func rootMain(command *cobra.Command, arguments []string) {
	// Print version information, if requested.
	if rootConfiguration.version {
		fmt.Println(version)
		return
	}

	// If no flags were set, then print help information and bail.
	command.Help()
}

var rootCommand = &cobra.Command{
	Use:              "neatfs",
	Short:            "Neatfs operates a write-back virtual filesystem stored in a BoltDB file.",
	Run:              rootMain,
	PersistentPreRun: loadEnvironment,
}

// loadEnvironment loads any specified environment file before a command
// runs, so that NEATFS_* variables can provide defaults for unset flags. A
// missing default file is not an error.
func loadEnvironment(_ *cobra.Command, _ []string) {
	if rootConfiguration.environmentFile != "" {
		if err := godotenv.Load(rootConfiguration.environmentFile); err != nil {
			cmd.Warning(fmt.Sprintf("unable to load environment file: %v", err))
		}
	} else if _, err := os.Stat(".neatfs.env"); err == nil {
		if err := godotenv.Load(".neatfs.env"); err != nil {
			cmd.Warning(fmt.Sprintf("unable to load environment file: %v", err))
		}
	}
}

var rootConfiguration struct {
	// help indicates the presence of the -h/--help flag.
	help bool
	// version indicates the presence of the -V/--version flag.
	version bool
	// store is the path of the BoltDB database file backing the filesystem.
	store string
	// configurationFile is the path of an optional YAML configuration file
	// holding commit tunables.
	configurationFile string
	// logLevel is the name of the log level to use.
	logLevel string
	// environmentFile is the path of an optional environment file providing
	// NEATFS_* defaults.
	environmentFile string
}

func init() {
	// Bind flags to configuration. We manually add help to override the
	// default message, but Cobra still implements it automatically.
	flags := rootCommand.PersistentFlags()
	flags.BoolVarP(&rootConfiguration.help, "help", "h", false, "Show help information")
	flags.StringVarP(&rootConfiguration.store, "store", "s", "", "Database file backing the filesystem (default \"neatfs.db\")")
	flags.StringVarP(&rootConfiguration.configurationFile, "config", "c", "", "Configuration file with commit tunables")
	flags.StringVar(&rootConfiguration.logLevel, "log-level", "", "Log level (disabled, error, warn, info, debug, trace)")
	flags.StringVar(&rootConfiguration.environmentFile, "env-file", "", "Environment file providing NEATFS_* defaults")
	rootCommand.Flags().BoolVarP(&rootConfiguration.version, "version", "V", false, "Show version information")

	// Disable Cobra's command sorting behavior. By default, it sorts
	// commands alphabetically in the help output.
	cobra.EnableCommandSorting = false

	// Register commands.
	rootCommand.AddCommand(
		listCommand,
		catCommand,
		writeCommand,
		mkdirCommand,
		linkCommand,
		readlinkCommand,
		removeCommand,
		duCommand,
		copyCommand,
		moveCommand,
		globCommand,
		wipeCommand,
	)
}

func main() {
	// Disable color output if standard output isn't a terminal.
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}

	// Execute the root command.
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
