package cli

import (
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"

	"github.com/polyfrost/oneconfig/internal/settings"
)

func TestDefinitionWatcherReloads(testingInstance *testing.T) {
	directory := testingInstance.TempDir()
	definitionPath := filepath.Join(directory, "greeter.yaml")
	writeFile(testingInstance, definitionPath, greeterDefinitionContent)

	runtime := &application{
		store:           settings.NewStore(nil),
		version:         "v1.0.0",
		definitionFiles: []string{definitionPath},
	}
	initial, managerError := runtime.manager()
	if managerError != nil {
		testingInstance.Fatalf("unexpected error: %v", managerError)
	}

	watcher, watcherError := newDefinitionWatcher(runtime)
	if watcherError != nil {
		testingInstance.Fatalf("unexpected watcher error: %v", watcherError)
	}
	defer watcher.close()

	testCases := []struct {
		name             string
		content          string
		event            fsnotify.Event
		expectReload     bool
		expectedGreeting string
	}{
		{
			name:             "unrelated_file_ignored",
			event:            fsnotify.Event{Name: filepath.Join(directory, "notes.txt"), Op: fsnotify.Write},
			expectedGreeting: "hello ada",
		},
		{
			name:             "chmod_ignored",
			event:            fsnotify.Event{Name: definitionPath, Op: fsnotify.Chmod},
			expectedGreeting: "hello ada",
		},
		{
			name:             "write_reloads",
			content:          `commands: [{name: greet, executables: [{params: [{name: who, type: string}], action: template, template: "hi {{.Named.who}}"}]}]`,
			event:            fsnotify.Event{Name: definitionPath, Op: fsnotify.Write},
			expectReload:     true,
			expectedGreeting: "hi ada",
		},
		{
			name:             "broken_file_keeps_previous",
			content:          "commands: [{name: greet, executables: [{action: unknown}]}]",
			event:            fsnotify.Event{Name: definitionPath, Op: fsnotify.Write},
			expectedGreeting: "hi ada",
		},
	}

	for _, testCase := range testCases {
		if testCase.content != "" {
			writeFile(testingInstance, definitionPath, testCase.content)
		}
		reloaded := watcher.handle(testCase.event)
		if reloaded != testCase.expectReload {
			testingInstance.Fatalf("%s: expected reload %t, got %t", testCase.name, testCase.expectReload, reloaded)
		}
		active, _ := runtime.manager()
		if testCase.expectReload && active == initial {
			testingInstance.Fatalf("%s: expected a new manager", testCase.name)
		}
		result, executeError := active.Execute([]string{"greet", "ada"})
		if executeError != nil {
			testingInstance.Fatalf("%s: unexpected error: %v", testCase.name, executeError)
		}
		if result != testCase.expectedGreeting {
			testingInstance.Fatalf("%s: expected %q, got %v", testCase.name, testCase.expectedGreeting, result)
		}
	}
}
