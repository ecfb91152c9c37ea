package utils_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/polyfrost/oneconfig/internal/utils"
)

// TestDeduplicateStrings verifies that DeduplicateStrings removes duplicate values.
func TestDeduplicateStrings(testingInstance *testing.T) {
	testCases := []struct {
		testName string
		values   []string
		expected []string
	}{
		{
			testName: "removes duplicates",
			values:   []string{"a.yaml", "b.yaml", "a.yaml"},
			expected: []string{"a.yaml", "b.yaml"},
		},
		{
			testName: "keeps unique",
			values:   []string{"a", "b"},
			expected: []string{"a", "b"},
		},
		{
			testName: "empty input",
			values:   nil,
			expected: []string{},
		},
	}
	for index, testCase := range testCases {
		actual := utils.DeduplicateStrings(testCase.values)
		if !slices.Equal(actual, testCase.expected) {
			testingInstance.Errorf("case %d (%s): expected %v, got %v", index, testCase.testName, testCase.expected, actual)
		}
	}
}

// TestSplitCommandLine verifies tokenization of interactive and script lines.
func TestSplitCommandLine(testingInstance *testing.T) {
	testCases := []struct {
		testName      string
		line          string
		expected      []string
		expectedError error
	}{
		{
			testName: "plain words",
			line:     "math add  1 2",
			expected: []string{"math", "add", "1", "2"},
		},
		{
			testName: "double quoted group",
			line:     `say "hello there" world`,
			expected: []string{"say", "hello there", "world"},
		},
		{
			testName: "single quotes keep backslashes",
			line:     `settings set path 'C:\tmp'`,
			expected: []string{"settings", "set", "path", `C:\tmp`},
		},
		{
			testName: "escaped space",
			line:     `say a\ b`,
			expected: []string{"say", "a b"},
		},
		{
			testName: "empty quoted token",
			line:     `settings set greeting ""`,
			expected: []string{"settings", "set", "greeting", ""},
		},
		{
			testName: "blank line",
			line:     "   ",
			expected: nil,
		},
		{
			testName:      "unterminated quote",
			line:          `say "oops`,
			expectedError: utils.ErrUnterminatedQuote,
		},
	}
	for _, testCase := range testCases {
		testingInstance.Run(testCase.testName, func(testingInstance *testing.T) {
			actual, splitError := utils.SplitCommandLine(testCase.line)
			if !errors.Is(splitError, testCase.expectedError) {
				testingInstance.Fatalf("expected error %v, got %v", testCase.expectedError, splitError)
			}
			if !slices.Equal(actual, testCase.expected) {
				testingInstance.Fatalf("expected %q, got %q", testCase.expected, actual)
			}
		})
	}
}

// TestIsCommentOrBlank verifies script line filtering.
func TestIsCommentOrBlank(testingInstance *testing.T) {
	testCases := map[string]bool{
		"":             true,
		"   ":          true,
		"# comment":    true,
		"  #indented":  true,
		"say hi":       false,
		"say # not it": false,
	}
	for line, expected := range testCases {
		if actual := utils.IsCommentOrBlank(line); actual != expected {
			testingInstance.Errorf("line %q: expected %t, got %t", line, expected, actual)
		}
	}
}

// TestVersionSatisfies verifies minimum version checks.
func TestVersionSatisfies(testingInstance *testing.T) {
	testCases := []struct {
		testName    string
		current     string
		minimum     string
		expected    bool
		expectError bool
	}{
		{testName: "newer", current: "v1.4.0", minimum: "v1.2.0", expected: true},
		{testName: "equal without prefix", current: "1.2", minimum: "1.2.0", expected: true},
		{testName: "older", current: "v1.1.9", minimum: "v1.2.0", expected: false},
		{testName: "prerelease is older", current: "v1.2.0-rc.1", minimum: "v1.2.0", expected: false},
		{testName: "development build", current: "unknown", minimum: "v9.0.0", expected: true},
		{testName: "invalid minimum", current: "v1.0.0", minimum: "latest", expectError: true},
	}
	for _, testCase := range testCases {
		testingInstance.Run(testCase.testName, func(testingInstance *testing.T) {
			actual, checkError := utils.VersionSatisfies(testCase.current, testCase.minimum)
			if (checkError != nil) != testCase.expectError {
				testingInstance.Fatalf("unexpected error state: %v", checkError)
			}
			if actual != testCase.expected {
				testingInstance.Fatalf("expected %t, got %t", testCase.expected, actual)
			}
		})
	}
}

// TestCanonicalVersion verifies normalization of reported versions.
func TestCanonicalVersion(testingInstance *testing.T) {
	testCases := map[string]string{
		"v1.2.3":       "v1.2.3",
		"1.2":          "v1.2.0",
		"v2.0.0+build": "v2.0.0",
		"unknown":      utils.DevelopmentVersion,
		"":             utils.DevelopmentVersion,
	}
	for input, expected := range testCases {
		if actual := utils.CanonicalVersion(input); actual != expected {
			testingInstance.Errorf("input %q: expected %s, got %s", input, expected, actual)
		}
	}
}
