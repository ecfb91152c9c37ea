// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/polyfrost/oneconfig/internal/services/clipboard"
	"github.com/polyfrost/oneconfig/internal/utils"
)

const (
	versionFlagName      = "version"
	configFlagName       = "config"
	logLevelFlagName     = "log-level"
	definitionsFlagName  = "definitions"
	builtinsFlagName     = "builtins"
	versionTemplate      = "oneconfig version: %s\n"
	rootUse              = utils.ApplicationName
	rootShortDescription = "oneconfig command engine"
	rootLongDescription  = `oneconfig dispatches command lines through a tree of overloaded commands.
Commands come from the built-in set and from YAML definition files listed in the configuration or passed with --definitions.
Use exec to run one command line, batch to run a script, and repl for an interactive console.`

	versionFlagDescription     = "display application version"
	configFlagDescription      = "configuration file to use instead of ./" + utils.ConfigFileName
	logLevelFlagDescription    = "log level (debug, info, warn, error)"
	definitionsFlagDescription = "additional command definition file"
	builtinsFlagDescription    = "register the built-in commands"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	showVersion     bool
	configPath      string
	logLevel        string
	definitionFiles []string
	builtins        bool
	builtinsToggle  *toggleFlag
}

// Execute runs the oneconfig application.
func Execute() error {
	rootCommand := createRootCommand(clipboard.NewService())
	rootCommand.SetArgs(normalizeToggleArguments(rootCommand, os.Args[1:]))
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand(copier clipboard.Copier) *cobra.Command {
	options := &rootOptions{}
	runtime := &application{copier: copier}

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if options.showVersion {
				fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
			return runtime.configure(options)
		},
		PersistentPostRun: func(command *cobra.Command, arguments []string) {
			runtime.close()
		},
	}
	flags := rootCommand.PersistentFlags()
	flags.BoolVar(&options.showVersion, versionFlagName, false, versionFlagDescription)
	flags.StringVar(&options.configPath, configFlagName, "", configFlagDescription)
	flags.StringVar(&options.logLevel, logLevelFlagName, "", logLevelFlagDescription)
	flags.StringArrayVar(&options.definitionFiles, definitionsFlagName, nil, definitionsFlagDescription)
	options.builtinsToggle = registerToggleFlag(flags, &options.builtins, builtinsFlagName, true, builtinsFlagDescription)

	rootCommand.AddCommand(
		createExecCommand(runtime),
		createCommandsCommand(runtime),
		createCompleteCommand(runtime),
		createBatchCommand(runtime),
		createReplCommand(runtime),
		createInitCommand(),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}
