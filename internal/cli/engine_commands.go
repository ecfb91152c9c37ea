package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/polyfrost/oneconfig/internal/services/clipboard"
)

const (
	execUse                 = "exec <tokens...>"
	execAlias               = "x"
	execShortDescription    = "run one command line (" + execAlias + ")"
	execLongDescription     = `Dispatch the given tokens through the command tree and print the result.
Tokens that start with a dash must follow --.`
	execUsageExample = `  # Add two integers
  oneconfig exec math add 1 2

  # Pass a token that looks like a flag
  oneconfig exec -- math sub 1 -5`

	commandsUse              = "commands"
	commandsAlias            = "ls"
	commandsShortDescription = "list every command path (" + commandsAlias + ")"
	commandsLongDescription  = `List every command path with its parameters and description, depth first.
Use --copy to also place the listing on the system clipboard.`
	copyFlagName        = "copy"
	copyFlagDescription = "copy the listing to the clipboard"
	copiedMessage       = "copied %d lines to the clipboard\n"

	completeUse              = "complete <tokens...>"
	completeShortDescription = "suggest completions for the last token"
	completeLongDescription  = `Print completion candidates for the last token of a partial command line.
Pass an empty last token ("") to list what may follow a complete command line.`
)

func createExecCommand(runtime *application) *cobra.Command {
	return &cobra.Command{
		Use:     execUse,
		Aliases: []string{execAlias},
		Short:   execShortDescription,
		Long:    execLongDescription,
		Example: execUsageExample,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cobraCommand *cobra.Command, arguments []string) error {
			manager, managerError := runtime.manager()
			if managerError != nil {
				return managerError
			}
			result, executeError := manager.Execute(arguments)
			if executeError != nil {
				return executeError
			}
			printResult(cobraCommand.OutOrStdout(), result)
			return nil
		},
	}
}

func createCommandsCommand(runtime *application) *cobra.Command {
	var copyListing bool
	var copyToggle *toggleFlag
	commandsCommand := &cobra.Command{
		Use:     commandsUse,
		Aliases: []string{commandsAlias},
		Short:   commandsShortDescription,
		Long:    commandsLongDescription,
		Args:    cobra.NoArgs,
		RunE: func(cobraCommand *cobra.Command, arguments []string) error {
			manager, managerError := runtime.manager()
			if managerError != nil {
				return managerError
			}
			lines := manager.Help()
			output := cobraCommand.OutOrStdout()
			for _, line := range lines {
				fmt.Fprintln(output, line)
			}
			shouldCopy := copyToggle.resolve(runtime.configuration.Help.Clipboard)
			if !shouldCopy || runtime.copier == nil {
				return nil
			}
			if copyError := clipboard.CopyLines(runtime.copier, lines); copyError != nil {
				return fmt.Errorf("copy command listing: %w", copyError)
			}
			fmt.Fprintf(cobraCommand.ErrOrStderr(), copiedMessage, len(lines))
			return nil
		},
	}
	copyToggle = registerToggleFlag(commandsCommand.Flags(), &copyListing, copyFlagName, false, copyFlagDescription)
	return commandsCommand
}

func createCompleteCommand(runtime *application) *cobra.Command {
	return &cobra.Command{
		Use:   completeUse,
		Short: completeShortDescription,
		Long:  completeLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cobraCommand *cobra.Command, arguments []string) error {
			manager, managerError := runtime.manager()
			if managerError != nil {
				return managerError
			}
			for _, suggestion := range manager.Autocomplete(arguments) {
				fmt.Fprintln(cobraCommand.OutOrStdout(), suggestion)
			}
			return nil
		},
	}
}
