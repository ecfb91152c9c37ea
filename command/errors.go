package command

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

const (
	creationErrorFormat             = "cannot create command %q: %s"
	wrongArgumentsErrorFormat       = "no overload of %q accepts %d argument(s)"
	wrongArgumentsRootPath          = "<root>"
	wrongArgumentsSuggestionFormat  = "; did you mean %q?"
	executionErrorFormat            = "command %q failed: %v"
	parseErrorFormat                = "cannot parse %q as %s: %v"
	pathSegmentSeparator            = " "
	creationErrorWithCauseSeparator = ": "
)

var (
	// ErrNoParser reports that no ArgumentParser is registered for a type.
	ErrNoParser = errors.New("no argument parser registered")
	// ErrNotInitialized reports an Execute call on a tree that was never initialized.
	ErrNotInitialized = errors.New("command tree is not initialized")
	// ErrTreeSealed reports a registration attempt after Init.
	ErrTreeSealed = errors.New("command tree is sealed")
	// ErrUnsupportedSource reports a source that no registered factory accepted.
	ErrUnsupportedSource = errors.New("no factory accepts the command source")
)

// CreationError is returned when a command cannot be constructed: bad arity and
// type combinations, malformed handler signatures, alias collisions.
type CreationError struct {
	Command string
	Reason  string
	Err     error
}

func (creationError *CreationError) Error() string {
	message := fmt.Sprintf(creationErrorFormat, creationError.Command, creationError.Reason)
	if creationError.Err != nil {
		message += creationErrorWithCauseSeparator + creationError.Err.Error()
	}
	return message
}

func (creationError *CreationError) Unwrap() error {
	return creationError.Err
}

func newCreationError(commandName string, reason string, cause error) *CreationError {
	return &CreationError{Command: commandName, Reason: reason, Err: cause}
}

// WrongArgumentsError is returned when no executable fits the supplied tokens.
// Err holds the last bind failure, if any candidate got that far.
type WrongArgumentsError struct {
	Path       []string
	Remaining  int
	Suggestion string
	Err        error
}

func (wrongArgumentsError *WrongArgumentsError) Error() string {
	message := fmt.Sprintf(wrongArgumentsErrorFormat, joinPath(wrongArgumentsError.Path), wrongArgumentsError.Remaining)
	if wrongArgumentsError.Suggestion != "" {
		message += fmt.Sprintf(wrongArgumentsSuggestionFormat, wrongArgumentsError.Suggestion)
	}
	if wrongArgumentsError.Err != nil {
		message += ": " + wrongArgumentsError.Err.Error()
	}
	return message
}

func (wrongArgumentsError *WrongArgumentsError) Unwrap() error {
	return wrongArgumentsError.Err
}

// ExecutionError wraps a failure raised by a command handler.
type ExecutionError struct {
	Path []string
	Err  error
}

func (executionError *ExecutionError) Error() string {
	return fmt.Sprintf(executionErrorFormat, joinPath(executionError.Path), executionError.Err)
}

func (executionError *ExecutionError) Unwrap() error {
	return executionError.Err
}

// ParseError describes a token that could not be converted to its target type.
type ParseError struct {
	Token string
	Type  reflect.Type
	Err   error
}

func (parseError *ParseError) Error() string {
	return fmt.Sprintf(parseErrorFormat, parseError.Token, typeName(parseError.Type), parseError.Err)
}

func (parseError *ParseError) Unwrap() error {
	return parseError.Err
}

func joinPath(path []string) string {
	if len(path) == 0 {
		return wrongArgumentsRootPath
	}
	return strings.Join(path, pathSegmentSeparator)
}

func typeName(targetType reflect.Type) string {
	if targetType == nil {
		return "<nil>"
	}
	return targetType.String()
}
