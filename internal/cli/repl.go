package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/polyfrost/oneconfig/internal/utils"
)

const (
	replUse              = "repl"
	replAlias            = "console"
	replShortDescription = "interactive command console"
	replLongDescription  = `Read command lines from standard input and dispatch each one.
Type :help to list commands, :complete <tokens> for suggestions, and exit or quit to leave.
With --watch, definition files are reloaded when they change on disk.`
	watchFlagName        = "watch"
	watchFlagDescription = "reload definition files when they change"

	exitKeyword         = "exit"
	quitKeyword         = "quit"
	helpDirective       = ":help"
	completeDirective   = ":complete"
	errorOutputTemplate = utils.ErrorLogFormat + "\n"

	definitionsReloadedLog     = "definitions reloaded"
	definitionsReloadFailedLog = "definitions reload failed, keeping previous commands"
	watcherErrorLog            = "definition watcher error"
	fileField                  = "file"
)

func createReplCommand(runtime *application) *cobra.Command {
	var watch bool
	var watchToggle *toggleFlag
	replCommand := &cobra.Command{
		Use:     replUse,
		Aliases: []string{replAlias},
		Short:   replShortDescription,
		Long:    replLongDescription,
		Args:    cobra.NoArgs,
		RunE: func(cobraCommand *cobra.Command, arguments []string) error {
			if _, managerError := runtime.manager(); managerError != nil {
				return managerError
			}
			shouldWatch := watchToggle.resolve(runtime.configuration.Console.Watch)
			ctx, cancel := context.WithCancel(contextOrBackground(cobraCommand.Context()))
			defer cancel()
			if shouldWatch && len(runtime.definitionFiles) > 0 {
				watcher, watcherError := newDefinitionWatcher(runtime)
				if watcherError != nil {
					return watcherError
				}
				defer watcher.close()
				go watcher.run(ctx)
			}
			console := &replSession{
				runtime:     runtime,
				prompt:      runtime.configuration.Console.PromptOrDefault(),
				output:      cobraCommand.OutOrStdout(),
				errorOutput: cobraCommand.ErrOrStderr(),
			}
			return console.run(cobraCommand.InOrStdin())
		},
	}
	watchToggle = registerToggleFlag(replCommand.Flags(), &watch, watchFlagName, false, watchFlagDescription)
	return replCommand
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

type replSession struct {
	runtime     *application
	prompt      string
	output      io.Writer
	errorOutput io.Writer
}

func (session *replSession) run(input io.Reader) error {
	scanner := bufio.NewScanner(input)
	for {
		fmt.Fprint(session.output, session.prompt)
		if !scanner.Scan() {
			fmt.Fprintln(session.output)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == exitKeyword || line == quitKeyword {
			return nil
		}
		if utils.IsCommentOrBlank(line) {
			continue
		}
		session.handle(line)
	}
}

// handle dispatches one line. Failures are printed and never end the session.
func (session *replSession) handle(line string) {
	manager, managerError := session.runtime.manager()
	if managerError != nil {
		fmt.Fprintf(session.errorOutput, errorOutputTemplate, managerError)
		return
	}
	if line == helpDirective {
		for _, helpLine := range manager.Help() {
			fmt.Fprintln(session.output, helpLine)
		}
		return
	}
	completing := strings.HasPrefix(line, completeDirective+" ") || line == completeDirective
	if completing {
		line = strings.TrimPrefix(line, completeDirective)
	}
	tokens, splitError := utils.SplitCommandLine(line)
	if splitError != nil {
		fmt.Fprintf(session.errorOutput, errorOutputTemplate, splitError)
		return
	}
	if completing {
		if strings.HasSuffix(line, " ") || len(tokens) == 0 {
			tokens = append(tokens, "")
		}
		for _, suggestion := range manager.Autocomplete(tokens) {
			fmt.Fprintln(session.output, suggestion)
		}
		return
	}
	result, executeError := manager.Execute(tokens)
	if executeError != nil {
		fmt.Fprintf(session.errorOutput, errorOutputTemplate, executeError)
		return
	}
	printResult(session.output, result)
}

// definitionWatcher rebuilds the command manager when a definition file changes.
// A failed rebuild keeps the previous manager active.
type definitionWatcher struct {
	runtime *application
	watcher *fsnotify.Watcher
	files   []string
}

func newDefinitionWatcher(runtime *application) (*definitionWatcher, error) {
	watcher, watcherError := fsnotify.NewWatcher()
	if watcherError != nil {
		return nil, fmt.Errorf("create definition watcher: %w", watcherError)
	}
	var directories []string
	files := make([]string, 0, len(runtime.definitionFiles))
	for _, path := range runtime.definitionFiles {
		files = append(files, filepath.Clean(path))
		directories = append(directories, filepath.Dir(path))
	}
	for _, directory := range utils.DeduplicateStrings(directories) {
		if addError := watcher.Add(directory); addError != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("watch %s: %w", directory, addError)
		}
	}
	return &definitionWatcher{runtime: runtime, watcher: watcher, files: files}, nil
}

func (watcher *definitionWatcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, open := <-watcher.watcher.Events:
			if !open {
				return
			}
			watcher.handle(event)
		case watchError, open := <-watcher.watcher.Errors:
			if !open {
				return
			}
			watcher.logger().Warn(watcherErrorLog, zap.Error(watchError))
		}
	}
}

// handle reloads definitions when event touches a watched file. It reports whether a
// new manager became active.
func (watcher *definitionWatcher) handle(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	if !slices.Contains(watcher.files, filepath.Clean(event.Name)) {
		return false
	}
	rebuilt, buildError := watcher.runtime.buildManager()
	if buildError != nil {
		watcher.logger().Warn(definitionsReloadFailedLog, zap.String(fileField, event.Name), zap.Error(buildError))
		return false
	}
	watcher.runtime.current.Store(rebuilt)
	watcher.logger().Info(definitionsReloadedLog, zap.String(fileField, event.Name))
	return true
}

func (watcher *definitionWatcher) logger() *zap.Logger {
	if watcher.runtime.logger == nil {
		return zap.NewNop()
	}
	return watcher.runtime.logger
}

func (watcher *definitionWatcher) close() {
	if watcher.watcher != nil {
		_ = watcher.watcher.Close()
	}
}
