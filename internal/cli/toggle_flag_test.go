package cli

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
)

func TestRegisterToggleFlagParsesValues(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		defaultValue bool
		arguments    []string
		expected     bool
		expectError  bool
	}{
		{name: "defaults_to_false", defaultValue: false, arguments: []string{}, expected: false},
		{name: "sets_true_without_value", defaultValue: false, arguments: []string{"--feature"}, expected: true},
		{name: "sets_false_with_equals", defaultValue: true, arguments: []string{"--feature=false"}, expected: false},
		{name: "sets_false_with_no_literal", defaultValue: true, arguments: []string{"--feature", "no"}, expected: false},
		{name: "sets_true_with_enabled_literal", defaultValue: false, arguments: []string{"--feature", "enabled"}, expected: true},
		{name: "sets_false_with_disabled_literal", defaultValue: true, arguments: []string{"--feature", "disabled"}, expected: false},
		{name: "ignores_non_toggle_trailing_value", defaultValue: false, arguments: []string{"--feature", "maybe"}, expected: true},
		{name: "rejects_unknown_literal", defaultValue: false, arguments: []string{"--feature=maybe"}, expectError: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			command := &cobra.Command{Use: "toggle-test"}
			flagValue := !testCase.defaultValue
			registerToggleFlag(command.Flags(), &flagValue, "feature", testCase.defaultValue, "toggle feature behaviour")
			parseErr := command.ParseFlags(normalizeToggleArguments(command, testCase.arguments))
			if testCase.expectError {
				if parseErr == nil {
					t.Fatalf("expected parse error for arguments %v", testCase.arguments)
				}
				return
			}
			if parseErr != nil {
				t.Fatalf("unexpected parse error: %v", parseErr)
			}
			if flagValue != testCase.expected {
				t.Fatalf("expected %t, got %t", testCase.expected, flagValue)
			}
		})
	}
}

func TestNormalizeToggleArgumentsLeavesEngineTokens(t *testing.T) {
	t.Parallel()

	rootCommand := &cobra.Command{Use: "root"}
	var enabled bool
	registerToggleFlag(rootCommand.PersistentFlags(), &enabled, "builtins", true, "builtins")

	testCases := []struct {
		name      string
		arguments []string
		expected  []string
	}{
		{
			name:      "rewrites_before_subcommand",
			arguments: []string{"--builtins", "off", "commands"},
			expected:  []string{"--builtins=off", "commands"},
		},
		{
			name:      "stops_at_exec",
			arguments: []string{"exec", "say", "--builtins", "off"},
			expected:  []string{"exec", "say", "--builtins", "off"},
		},
		{
			name:      "stops_at_double_dash",
			arguments: []string{"--", "--builtins", "yes"},
			expected:  []string{"--", "--builtins", "yes"},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			normalized := normalizeToggleArguments(rootCommand, testCase.arguments)
			if diff := cmp.Diff(testCase.expected, normalized); diff != "" {
				t.Fatalf("normalized arguments mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestToggleFlagResolvePrecedence(t *testing.T) {
	t.Parallel()

	configuredOn := true
	configuredOff := false
	testCases := []struct {
		name       string
		arguments  []string
		configured *bool
		expected   bool
	}{
		{name: "default_without_configuration", arguments: []string{}, configured: nil, expected: false},
		{name: "configuration_over_default", arguments: []string{}, configured: &configuredOn, expected: true},
		{name: "explicit_over_configuration", arguments: []string{"--watch", "off"}, configured: &configuredOn, expected: false},
		{name: "explicit_default_literal_over_configuration", arguments: []string{"--watch=false"}, configured: &configuredOn, expected: false},
		{name: "explicit_enable_over_configuration", arguments: []string{"--watch"}, configured: &configuredOff, expected: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			command := &cobra.Command{Use: "toggle-test"}
			var watch bool
			toggle := registerToggleFlag(command.Flags(), &watch, "watch", false, "watch")
			if parseErr := command.ParseFlags(normalizeToggleArguments(command, testCase.arguments)); parseErr != nil {
				t.Fatalf("unexpected parse error: %v", parseErr)
			}
			if resolved := toggle.resolve(testCase.configured); resolved != testCase.expected {
				t.Fatalf("expected %t, got %t", testCase.expected, resolved)
			}
		})
	}
}
