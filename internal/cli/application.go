package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/polyfrost/oneconfig/command"
	"github.com/polyfrost/oneconfig/internal/builtins"
	"github.com/polyfrost/oneconfig/internal/config"
	"github.com/polyfrost/oneconfig/internal/definitions"
	"github.com/polyfrost/oneconfig/internal/services/clipboard"
	"github.com/polyfrost/oneconfig/internal/settings"
	"github.com/polyfrost/oneconfig/internal/utils"
)

const (
	managerReadyLog    = "command manager ready"
	definitionsField   = "definitions"
	builtinsField      = "builtins"
	resultLineTemplate = "%s\n"
)

// application is the state shared by the subcommands of one invocation. The command
// manager is built lazily so commands that do not dispatch never read definition files.
type application struct {
	copier          clipboard.Copier
	configuration   config.ApplicationConfiguration
	logger          *zap.Logger
	store           *settings.Store
	version         string
	builtins        bool
	definitionFiles []string
	current         atomic.Pointer[command.Manager]
}

func (runtime *application) configure(options *rootOptions) error {
	configuration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{ExplicitFilePath: options.configPath})
	if loadError != nil {
		return loadError
	}
	level := options.logLevel
	if level == "" {
		level = configuration.Logging.Level
	}
	logger, loggerError := utils.NewApplicationLogger(level)
	if loggerError != nil {
		return loggerError
	}

	runtime.configuration = configuration
	runtime.logger = logger
	runtime.store = settings.NewStore(nil)
	runtime.version = utils.SemanticVersion()
	runtime.builtins = options.builtinsToggle.resolve(configuration.Commands.Builtins)
	definitionFiles := append([]string{}, configuration.Commands.Definitions...)
	for _, path := range options.definitionFiles {
		absolutePath, absoluteError := filepath.Abs(path)
		if absoluteError != nil {
			return fmt.Errorf("resolve definitions path %s: %w", path, absoluteError)
		}
		definitionFiles = append(definitionFiles, absolutePath)
	}
	runtime.definitionFiles = utils.DeduplicateStrings(definitionFiles)
	return nil
}

// manager returns the active command manager, building it on first use.
func (runtime *application) manager() (*command.Manager, error) {
	if active := runtime.current.Load(); active != nil {
		return active, nil
	}
	built, buildError := runtime.buildManager()
	if buildError != nil {
		return nil, buildError
	}
	runtime.current.Store(built)
	return built, nil
}

// buildManager registers builtins and definition files into a fresh manager and seals it.
func (runtime *application) buildManager() (*command.Manager, error) {
	logger := runtime.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	manager := command.NewManager(command.WithLogger(logger))
	if runtime.builtins {
		builtinOptions := builtins.Options{Version: runtime.version, Store: runtime.store, Logger: logger}
		if err := builtins.Register(manager, builtinOptions); err != nil {
			return nil, err
		}
	}
	loader := definitions.NewLoader(runtime.version, logger)
	if err := loader.RegisterFiles(manager, runtime.definitionFiles); err != nil {
		return nil, err
	}
	if err := manager.Init(); err != nil {
		return nil, err
	}
	logger.Debug(managerReadyLog, zap.Bool(builtinsField, runtime.builtins), zap.Strings(definitionsField, runtime.definitionFiles))
	return manager, nil
}

func (runtime *application) close() {
	if runtime.logger != nil {
		_ = runtime.logger.Sync()
	}
}

func printResult(writer io.Writer, result any) {
	for _, line := range command.FormatResult(result) {
		fmt.Fprintf(writer, resultLineTemplate, line)
	}
}
