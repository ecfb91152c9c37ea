package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/polyfrost/oneconfig/command"
	"github.com/polyfrost/oneconfig/internal/services/clipboard"
)

const (
	greeterDefinitionContent = `commands:
  - name: greet
    description: greet someone
    executables:
      - params:
          - name: who
            type: string
        action: template
        template: "hello {{.Named.who}}"
`
	quietLogLevelArgument = "--log-level=error"
)

type recordingCopier struct {
	copiedText []string
}

func (copier *recordingCopier) Copy(text string) error {
	copier.copiedText = append(copier.copiedText, text)
	return nil
}

var _ clipboard.Copier = (*recordingCopier)(nil)

type cliResult struct {
	output      string
	errorOutput string
	err         error
}

// prepareWorkspace isolates HOME and the working directory for one test.
func prepareWorkspace(testingInstance *testing.T) string {
	testingInstance.Helper()
	testingInstance.Setenv("HOME", testingInstance.TempDir())
	workingDirectory := testingInstance.TempDir()
	testingInstance.Chdir(workingDirectory)
	return workingDirectory
}

func runCLI(testingInstance *testing.T, copier clipboard.Copier, input string, arguments ...string) cliResult {
	testingInstance.Helper()
	rootCommand := createRootCommand(copier)
	var output bytes.Buffer
	var errorOutput bytes.Buffer
	rootCommand.SetOut(&output)
	rootCommand.SetErr(&errorOutput)
	rootCommand.SetIn(strings.NewReader(input))
	rootCommand.SetArgs(normalizeToggleArguments(rootCommand, append([]string{quietLogLevelArgument}, arguments...)))
	executeError := rootCommand.Execute()
	return cliResult{output: output.String(), errorOutput: errorOutput.String(), err: executeError}
}

func writeFile(testingInstance *testing.T, path string, content string) {
	testingInstance.Helper()
	if writeError := os.WriteFile(path, []byte(content), 0o600); writeError != nil {
		testingInstance.Fatalf("write %s: %v", path, writeError)
	}
}

func TestExecCommandPrintsResults(testingInstance *testing.T) {
	prepareWorkspace(testingInstance)

	testCases := []struct {
		name           string
		arguments      []string
		expectedOutput string
	}{
		{name: "integer_sum", arguments: []string{"exec", "math", "add", "1", "2"}, expectedOutput: "3\n"},
		{name: "alias_and_greedy", arguments: []string{"x", "say", "hello", "world"}, expectedOutput: "hello world\n"},
		{name: "negative_after_separator", arguments: []string{"exec", "--", "math", "sub", "1", "-5"}, expectedOutput: "6\n"},
		{name: "nil_result_prints_nothing", arguments: []string{"exec", "settings", "reset"}, expectedOutput: ""},
	}

	for _, testCase := range testCases {
		testingInstance.Run(testCase.name, func(subTest *testing.T) {
			result := runCLI(subTest, nil, "", testCase.arguments...)
			if result.err != nil {
				subTest.Fatalf("unexpected error: %v", result.err)
			}
			if diff := cmp.Diff(testCase.expectedOutput, result.output); diff != "" {
				subTest.Fatalf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExecCommandReportsWrongArguments(testingInstance *testing.T) {
	prepareWorkspace(testingInstance)

	result := runCLI(testingInstance, nil, "", "exec", "math", "add", "one", "two")
	var wrongArguments *command.WrongArgumentsError
	if !errors.As(result.err, &wrongArguments) {
		testingInstance.Fatalf("expected WrongArgumentsError, got %v", result.err)
	}
	if diff := cmp.Diff([]string{"math", "add"}, wrongArguments.Path); diff != "" {
		testingInstance.Fatalf("path mismatch (-want +got):\n%s", diff)
	}
}

func TestCommandsListingAndClipboard(testingInstance *testing.T) {
	workingDirectory := prepareWorkspace(testingInstance)
	expectedLine := "math|m add <a> <b> - add two numbers"

	copier := &recordingCopier{}
	result := runCLI(testingInstance, copier, "", "commands")
	if result.err != nil {
		testingInstance.Fatalf("unexpected error: %v", result.err)
	}
	if !strings.Contains(result.output, expectedLine+"\n") {
		testingInstance.Fatalf("expected listing to contain %q, got %q", expectedLine, result.output)
	}
	if len(copier.copiedText) != 0 {
		testingInstance.Fatalf("expected no clipboard use without --copy")
	}

	result = runCLI(testingInstance, copier, "", "ls", "--copy")
	if result.err != nil {
		testingInstance.Fatalf("unexpected error: %v", result.err)
	}
	if len(copier.copiedText) != 1 || copier.copiedText[0] != result.output {
		testingInstance.Fatalf("expected clipboard to hold the listing, got %q", copier.copiedText)
	}

	writeFile(testingInstance, filepath.Join(workingDirectory, "config.yaml"), "help:\n  clipboard: true\n")
	configuredCopier := &recordingCopier{}
	result = runCLI(testingInstance, configuredCopier, "", "commands")
	if result.err != nil {
		testingInstance.Fatalf("unexpected error: %v", result.err)
	}
	if len(configuredCopier.copiedText) != 1 {
		testingInstance.Fatalf("expected configuration to enable copying")
	}

	result = runCLI(testingInstance, configuredCopier, "", "commands", "--copy", "off")
	if result.err != nil {
		testingInstance.Fatalf("unexpected error: %v", result.err)
	}
	if len(configuredCopier.copiedText) != 1 {
		testingInstance.Fatalf("expected --copy off to override configuration")
	}
}

func TestCompleteCommand(testingInstance *testing.T) {
	prepareWorkspace(testingInstance)

	testCases := []struct {
		name           string
		arguments      []string
		expectedOutput string
	}{
		{name: "top_level_prefix", arguments: []string{"complete", "mat"}, expectedOutput: "math\n"},
		{name: "subcommand_prefix", arguments: []string{"complete", "settings", "e"}, expectedOutput: "export\n"},
		{name: "unknown_prefix", arguments: []string{"complete", "nonexistent"}, expectedOutput: ""},
	}

	for _, testCase := range testCases {
		testingInstance.Run(testCase.name, func(subTest *testing.T) {
			result := runCLI(subTest, nil, "", testCase.arguments...)
			if result.err != nil {
				subTest.Fatalf("unexpected error: %v", result.err)
			}
			if diff := cmp.Diff(testCase.expectedOutput, result.output); diff != "" {
				subTest.Fatalf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDefinitionsFlagWithoutBuiltins(testingInstance *testing.T) {
	workingDirectory := prepareWorkspace(testingInstance)
	definitionPath := filepath.Join(workingDirectory, "greeter.yaml")
	writeFile(testingInstance, definitionPath, greeterDefinitionContent)

	result := runCLI(testingInstance, nil, "", "--builtins", "off", "--definitions", definitionPath, "exec", "greet", "ada")
	if result.err != nil {
		testingInstance.Fatalf("unexpected error: %v", result.err)
	}
	if diff := cmp.Diff("hello ada\n", result.output); diff != "" {
		testingInstance.Fatalf("output mismatch (-want +got):\n%s", diff)
	}

	result = runCLI(testingInstance, nil, "", "--builtins=false", "--definitions", definitionPath, "exec", "math", "add", "1", "2")
	var wrongArguments *command.WrongArgumentsError
	if !errors.As(result.err, &wrongArguments) {
		testingInstance.Fatalf("expected builtins to be absent, got %v", result.err)
	}

	result = runCLI(testingInstance, nil, "", "--definitions", filepath.Join(workingDirectory, "missing.yaml"), "commands")
	if result.err == nil {
		testingInstance.Fatalf("expected missing definition file to fail")
	}
}

func TestBatchCommand(testingInstance *testing.T) {
	workingDirectory := prepareWorkspace(testingInstance)
	scriptPath := filepath.Join(workingDirectory, "script.txt")
	writeFile(testingInstance, scriptPath, "# arithmetic\nmath add 1 2\nsay hi\n\nmath div 1 0\nsay \"good bye\"\n")

	testCases := []struct {
		name           string
		arguments      []string
		expectedOutput string
	}{
		{name: "continues_after_failure", arguments: []string{"batch", scriptPath}, expectedOutput: "3\nhi\ngood bye\n"},
		{name: "stops_on_failure", arguments: []string{"batch", "--concurrency", "1", "--stop-on-error", scriptPath}, expectedOutput: "3\nhi\n"},
	}

	for _, testCase := range testCases {
		testingInstance.Run(testCase.name, func(subTest *testing.T) {
			result := runCLI(subTest, nil, "", testCase.arguments...)
			var executionError *command.ExecutionError
			if !errors.As(result.err, &executionError) {
				subTest.Fatalf("expected ExecutionError, got %v", result.err)
			}
			if !strings.Contains(result.errorOutput, "line 5: Error:") {
				subTest.Fatalf("expected failing line number in %q", result.errorOutput)
			}
			if diff := cmp.Diff(testCase.expectedOutput, result.output); diff != "" {
				subTest.Fatalf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBatchCommandReadsStandardInput(testingInstance *testing.T) {
	prepareWorkspace(testingInstance)

	result := runCLI(testingInstance, nil, "math mul 2 3\nm sub 1 2\n", "batch", "--concurrency", "2", "-")
	if result.err != nil {
		testingInstance.Fatalf("unexpected error: %v", result.err)
	}
	if diff := cmp.Diff("6\n-1\n", result.output); diff != "" {
		testingInstance.Fatalf("output mismatch (-want +got):\n%s", diff)
	}

	result = runCLI(testingInstance, nil, "say \"open\n", "batch", "-")
	if result.err == nil {
		testingInstance.Fatalf("expected unterminated quote to fail")
	}

	result = runCLI(testingInstance, nil, "say hi\n", "batch", "--concurrency", "0", "-")
	if result.err == nil {
		testingInstance.Fatalf("expected invalid concurrency to fail")
	}
}

func TestReplSession(testingInstance *testing.T) {
	prepareWorkspace(testingInstance)

	input := "math add 2 3\n# comment\nbogus\n:complete mat\n:help\nexit\nsay unreachable\n"
	result := runCLI(testingInstance, nil, input, "repl")
	if result.err != nil {
		testingInstance.Fatalf("unexpected error: %v", result.err)
	}
	for _, expected := range []string{"> 5\n", "math\n", "say|echo <words...> - print the words\n"} {
		if !strings.Contains(result.output, expected) {
			testingInstance.Fatalf("expected %q in output %q", expected, result.output)
		}
	}
	if strings.Contains(result.output, "unreachable") {
		testingInstance.Fatalf("expected exit to end the session")
	}
	if !strings.Contains(result.errorOutput, "Error:") {
		testingInstance.Fatalf("expected the unknown command to be reported, got %q", result.errorOutput)
	}
}

func TestReplUsesConfiguredPrompt(testingInstance *testing.T) {
	workingDirectory := prepareWorkspace(testingInstance)
	writeFile(testingInstance, filepath.Join(workingDirectory, "config.yaml"), "console:\n  prompt: \"oc$ \"\n")

	result := runCLI(testingInstance, nil, "say hi\n", "console")
	if result.err != nil {
		testingInstance.Fatalf("unexpected error: %v", result.err)
	}
	if diff := cmp.Diff("oc$ hi\noc$ \n", result.output); diff != "" {
		testingInstance.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestInitCommand(testingInstance *testing.T) {
	workingDirectory := prepareWorkspace(testingInstance)

	result := runCLI(testingInstance, nil, "", "init")
	if result.err != nil {
		testingInstance.Fatalf("unexpected error: %v", result.err)
	}
	if _, statError := os.Stat(filepath.Join(workingDirectory, "config.yaml")); statError != nil {
		testingInstance.Fatalf("expected configuration file: %v", statError)
	}

	result = runCLI(testingInstance, nil, "", "init")
	if result.err == nil {
		testingInstance.Fatalf("expected existing configuration to block init")
	}

	result = runCLI(testingInstance, nil, "", "init", "--force")
	if result.err != nil {
		testingInstance.Fatalf("unexpected error with --force: %v", result.err)
	}
}
