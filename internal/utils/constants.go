package utils

// EmptyString represents a reusable empty string constant.
const EmptyString = ""

// ErrorLogFormat defines the formatting string for error log messages.
const ErrorLogFormat = "Error: %v"

// Configuration file locations shared by the loader and the init command.
const (
	// ApplicationName is the binary and configuration namespace.
	ApplicationName = "oneconfig"
	// ConfigFileName is the name of the configuration file in either location.
	ConfigFileName = "config.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home holding the global configuration.
	GlobalConfigDirectoryName = ".oneconfig"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
)

// Bootstrap failure messages used by the entry point.
const (
	// LoggerInitializationFailedMessageFormat reports a logger that could not be built.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes a fatal application error.
	ApplicationExecutionFailedMessage = "application execution failed"
)
