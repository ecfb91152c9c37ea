// Package config loads the tool configuration from the global and local configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/polyfrost/oneconfig/internal/utils"
)

const (
	// DefaultPrompt is printed before each interactive line.
	DefaultPrompt = "> "
	// DefaultBatchConcurrency bounds concurrent script lines when none is configured.
	DefaultBatchConcurrency = 4
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds the settings of every command surface.
type ApplicationConfiguration struct {
	Console  ConsoleConfiguration  `mapstructure:"console"`
	Logging  LoggingConfiguration  `mapstructure:"logging"`
	Commands CommandsConfiguration `mapstructure:"commands"`
	Batch    BatchConfiguration    `mapstructure:"batch"`
	Help     HelpConfiguration     `mapstructure:"help"`
}

// ConsoleConfiguration controls the interactive console.
type ConsoleConfiguration struct {
	Prompt string `mapstructure:"prompt"`
	Watch  *bool  `mapstructure:"watch"`
}

// LoggingConfiguration controls the application logger.
type LoggingConfiguration struct {
	Level string `mapstructure:"level"`
}

// CommandsConfiguration selects the commands registered at startup.
type CommandsConfiguration struct {
	Builtins    *bool    `mapstructure:"builtins"`
	Definitions []string `mapstructure:"definitions"`
}

// BatchConfiguration controls script execution.
type BatchConfiguration struct {
	Concurrency *int  `mapstructure:"concurrency"`
	StopOnError *bool `mapstructure:"stop_on_error"`
}

// HelpConfiguration controls the help command.
type HelpConfiguration struct {
	Clipboard *bool `mapstructure:"clipboard"`
}

// LoadApplicationConfiguration loads configuration from global and local files.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if localPath != "" {
		localConfig, loadErr := loadConfigurationFromPath(localPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(localConfig)
	}

	merged.Commands.Definitions = utils.DeduplicateStrings(merged.Commands.Definitions)

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf("resolve configuration path %s: %w", explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	config.Commands.Definitions = anchorPaths(filepath.Dir(path), config.Commands.Definitions)
	return config, nil
}

// anchorPaths resolves relative definition paths against the directory of the file declaring them.
func anchorPaths(baseDirectory string, paths []string) []string {
	anchored := make([]string, 0, len(paths))
	for _, path := range paths {
		if path == "" {
			continue
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDirectory, path)
		}
		anchored = append(anchored, filepath.Clean(path))
	}
	return anchored
}

// Merge overlays override onto the receiver returning the combined configuration.
// Definition lists accumulate; scalar settings are replaced when set.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	if override.Console.Prompt != "" {
		result.Console.Prompt = override.Console.Prompt
	}
	if override.Console.Watch != nil {
		result.Console.Watch = cloneBool(override.Console.Watch)
	}
	if override.Logging.Level != "" {
		result.Logging.Level = override.Logging.Level
	}
	if override.Commands.Builtins != nil {
		result.Commands.Builtins = cloneBool(override.Commands.Builtins)
	}
	if len(override.Commands.Definitions) > 0 {
		combined := append(append([]string{}, result.Commands.Definitions...), override.Commands.Definitions...)
		result.Commands.Definitions = utils.DeduplicateStrings(combined)
	}
	if override.Batch.Concurrency != nil {
		result.Batch.Concurrency = cloneInt(override.Batch.Concurrency)
	}
	if override.Batch.StopOnError != nil {
		result.Batch.StopOnError = cloneBool(override.Batch.StopOnError)
	}
	if override.Help.Clipboard != nil {
		result.Help.Clipboard = cloneBool(override.Help.Clipboard)
	}
	return result
}

// PromptOrDefault returns the configured prompt or DefaultPrompt.
func (config ConsoleConfiguration) PromptOrDefault() string {
	if config.Prompt == "" {
		return DefaultPrompt
	}
	return config.Prompt
}

// BuiltinsEnabled reports whether the built-in command set is registered. It defaults to true.
func (config CommandsConfiguration) BuiltinsEnabled() bool {
	return config.Builtins == nil || *config.Builtins
}

// ConcurrencyOrDefault returns a positive concurrency limit.
func (config BatchConfiguration) ConcurrencyOrDefault() int {
	if config.Concurrency == nil || *config.Concurrency < 1 {
		return DefaultBatchConcurrency
	}
	return *config.Concurrency
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
