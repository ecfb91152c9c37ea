// Package utils provides helper functions, including version retrieval.
package utils

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime/debug"
	"strings"

	"golang.org/x/mod/semver"
)

const (
	unknownVersion = "unknown"
	// DevelopmentVersion is reported by SemanticVersion when the build carries no usable version.
	DevelopmentVersion = "v0.0.0-dev"
	versionPrefix      = "v"
)

// buildVersion is injected at link time:
//
//	go build -ldflags "-X github.com/polyfrost/oneconfig/internal/utils.buildVersion=v1.4.0"
var buildVersion = ""

// GetApplicationVersion attempts to determine the application version using various methods.
// It checks the linker-injected version and Go build info first, then falls back to git
// describe commands if available.
func GetApplicationVersion() string {
	if buildVersion != "" {
		return buildVersion
	}
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if buildInfoAvailable && buildInfo.Main.Version != "" && buildInfo.Main.Version != "(devel)" {
		return buildInfo.Main.Version
	}

	gitDirectoryPath, gitDirectoryError := findGitDirectory(".")
	if gitDirectoryError == nil && gitDirectoryPath != "" {
		// #nosec G204
		gitExactCommand := exec.Command("git", "describe", "--tags", "--exact-match")
		gitExactCommand.Dir = gitDirectoryPath
		gitExactOutput, errorGitExact := gitExactCommand.Output()
		if errorGitExact == nil && len(gitExactOutput) > 0 {
			return strings.TrimSpace(string(gitExactOutput))
		}

		// #nosec G204
		gitLongCommand := exec.Command("git", "describe", "--tags", "--long", "--dirty")
		gitLongCommand.Dir = gitDirectoryPath
		gitLongOutput, errorGitLong := gitLongCommand.Output()
		if errorGitLong == nil && len(gitLongOutput) > 0 {
			return strings.TrimSpace(string(gitLongOutput))
		}
	}

	return unknownVersion
}

// findGitDirectory searches upward from the provided starting directory
// until it locates a directory containing the .git folder and returns
// the path to that directory.
func findGitDirectory(startDirectory string) (string, error) {
	absoluteStartDirectory, errorAbsolute := filepath.Abs(startDirectory)
	if errorAbsolute != nil {
		return "", fmt.Errorf("failed to get absolute path for %s: %w", startDirectory, errorAbsolute)
	}

	currentDirectory := absoluteStartDirectory
	for {
		gitPath := filepath.Join(currentDirectory, GitDirectoryName)
		fileInformation, errorStat := os.Stat(gitPath)
		if errorStat == nil && fileInformation.IsDir() {
			return currentDirectory, nil
		}

		parentDirectory := filepath.Dir(currentDirectory)
		if parentDirectory == currentDirectory {
			break
		}
		currentDirectory = parentDirectory
	}

	return "", fmt.Errorf(".git directory not found in or above %s", absoluteStartDirectory)
}

// SemanticVersion returns the application version in canonical semver form.
func SemanticVersion() string {
	return CanonicalVersion(GetApplicationVersion())
}

// CanonicalVersion normalizes version to canonical semver ("1.2" becomes "v1.2.0").
// Unparseable input yields DevelopmentVersion.
func CanonicalVersion(version string) string {
	trimmed := strings.TrimSpace(version)
	if !strings.HasPrefix(trimmed, versionPrefix) {
		trimmed = versionPrefix + trimmed
	}
	if !semver.IsValid(trimmed) {
		return DevelopmentVersion
	}
	return semver.Canonical(trimmed)
}

// VersionSatisfies reports whether current is at least minimum. Development builds satisfy
// every minimum. An invalid minimum is an error.
func VersionSatisfies(current string, minimum string) (bool, error) {
	normalizedMinimum := strings.TrimSpace(minimum)
	if !strings.HasPrefix(normalizedMinimum, versionPrefix) {
		normalizedMinimum = versionPrefix + normalizedMinimum
	}
	if !semver.IsValid(normalizedMinimum) {
		return false, fmt.Errorf("invalid minimum version %q", minimum)
	}
	canonicalCurrent := CanonicalVersion(current)
	if canonicalCurrent == DevelopmentVersion {
		return true, nil
	}
	return semver.Compare(canonicalCurrent, normalizedMinimum) >= 0, nil
}
