package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/polyfrost/oneconfig/internal/config"
)

const (
	initUse                    = "init"
	initShortDescription       = "write a default configuration file"
	initLongDescription        = `Write a default configuration file to ./config.yaml, or to ~/.oneconfig/config.yaml with --global.`
	globalFlagName             = "global"
	globalFlagDescription      = "write the global configuration file"
	forceFlagName              = "force"
	forceFlagDescription       = "overwrite an existing configuration file"
	configurationWrittenFormat = "configuration written to %s\n"
)

func createInitCommand() *cobra.Command {
	var global bool
	var force bool
	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(cobraCommand *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			path, initError := config.InitializeConfiguration(config.InitOptions{Target: target, Force: force})
			if initError != nil {
				return initError
			}
			fmt.Fprintf(cobraCommand.OutOrStdout(), configurationWrittenFormat, path)
			return nil
		},
	}
	registerToggleFlag(initCommand.Flags(), &global, globalFlagName, false, globalFlagDescription)
	registerToggleFlag(initCommand.Flags(), &force, forceFlagName, false, forceFlagDescription)
	return initCommand
}
