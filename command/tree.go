package command

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	aliasSeparator           = "|"
	helpDescriptionFormat    = "%s - %s"
	dispatchedLogMessage     = "command dispatched"
	executionFailedMessage   = "command execution failed"
	noMatchLogMessage        = "no overload matched"
	invocationIDField        = "invocation_id"
	pathField                = "path"
	argumentCountField       = "arguments"
	sealedRegistrationReason = "registration after Init"
)

// Tree is the dispatch engine. Top-level commands are registered as children
// of an unnamed root node; Init must run before Execute.
type Tree struct {
	root        *Node
	logger      *zap.Logger
	initialized bool
}

// NewTree creates an empty tree. A nil logger disables logging.
func NewTree(logger *zap.Logger) *Tree {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tree{
		root:   NewNode(nil, ""),
		logger: logger,
	}
}

// Root returns the unnamed root node.
func (tree *Tree) Root() *Node {
	return tree.root
}

// Initialized reports whether Init has completed.
func (tree *Tree) Initialized() bool {
	return tree.initialized
}

// Register adds a top-level command node.
func (tree *Tree) Register(node *Node) error {
	if tree.initialized {
		return newCreationError(nodeName(node), sealedRegistrationReason, ErrTreeSealed)
	}
	return tree.root.AddChild(node)
}

// RegisterExecutable adds a named executable directly under the root.
func (tree *Tree) RegisterExecutable(executable *Executable) error {
	if tree.initialized {
		return newCreationError(firstAlias(executable.aliases), sealedRegistrationReason, ErrTreeSealed)
	}
	if executable.Unnamed() {
		return newCreationError("", "top-level executable needs an alias", nil)
	}
	return tree.root.AddExecutable(executable)
}

// Init resolves every parameter parser from registry and seals the tree.
// Parsers registered afterwards do not affect the tree. Calling Init again is
// a no-op.
func (tree *Tree) Init(registry *Registry) error {
	if tree.initialized {
		return nil
	}
	if registry == nil {
		registry = NewRegistry()
	}
	if resolveError := tree.root.resolve(registry); resolveError != nil {
		return resolveError
	}
	tree.initialized = true
	return nil
}

// Execute routes tokens to the best matching executable and runs it.
//
// Tokens are consumed as subcommand names while they match a child alias.
// At the node reached, executables named by the next token are tried first,
// then the node's unnamed executables. Among candidates accepting the
// remaining token count, the first registered one whose arguments parse wins.
// A handler failure is returned as *ExecutionError and never retried.
func (tree *Tree) Execute(tokens []string) (any, error) {
	if !tree.initialized {
		return nil, ErrNotInitialized
	}
	node, path, cursor := tree.descend(tokens)
	remaining := tokens[cursor:]

	var lastBindError error
	namedFound := false
	if len(remaining) > 0 {
		name := remaining[0]
		for _, executable := range node.executables {
			if !executable.Named(name) {
				continue
			}
			namedFound = true
			if !executable.Matches(len(remaining) - 1) {
				continue
			}
			arguments, bindError := executable.Bind(remaining[1:])
			if bindError != nil {
				lastBindError = bindError
				continue
			}
			return tree.run(executable, append(path, name), arguments)
		}
	}
	for _, executable := range node.executables {
		if !executable.Unnamed() || !executable.Matches(len(remaining)) {
			continue
		}
		arguments, bindError := executable.Bind(remaining)
		if bindError != nil {
			lastBindError = bindError
			continue
		}
		return tree.run(executable, path, arguments)
	}

	failure := &WrongArgumentsError{Path: path, Remaining: len(remaining)}
	if namedFound {
		failure.Path = append(path, remaining[0])
		failure.Remaining = len(remaining) - 1
	} else if len(remaining) > 0 {
		failure.Suggestion = closestAlias(remaining[0], node.namedAliases())
	}
	var bindFailure *WrongArgumentsError
	if errors.As(lastBindError, &bindFailure) {
		failure.Err = bindFailure.Err
	}
	tree.logger.Debug(noMatchLogMessage, zap.Strings(pathField, failure.Path), zap.Int(argumentCountField, failure.Remaining))
	return nil, failure
}

func (tree *Tree) descend(tokens []string) (*Node, []string, int) {
	node := tree.root
	path := make([]string, 0, len(tokens))
	cursor := 0
	for cursor < len(tokens) {
		child, found := node.Child(tokens[cursor])
		if !found {
			break
		}
		path = append(path, tokens[cursor])
		node = child
		cursor++
	}
	return node, path, cursor
}

func (tree *Tree) run(executable *Executable, path []string, arguments []any) (any, error) {
	if tree.logger.Core().Enabled(zapcore.DebugLevel) {
		tree.logger.Debug(dispatchedLogMessage,
			zap.String(invocationIDField, uuid.NewString()),
			zap.Strings(pathField, path),
			zap.Int(argumentCountField, len(arguments)),
		)
	}
	result, callError := executable.call(path, arguments)
	if callError != nil {
		tree.logger.Warn(executionFailedMessage, zap.Strings(pathField, path), zap.Error(callError))
		return nil, callError
	}
	return result, nil
}

// Help lists every command path with its description, depth first, siblings
// in registration order.
func (tree *Tree) Help() []string {
	var lines []string
	appendEntriesHelp(&lines, nil, tree.root)
	return lines
}

func appendNodeHelp(lines *[]string, parentSegments []string, node *Node) {
	segments := append(append([]string(nil), parentSegments...), strings.Join(node.aliases, aliasSeparator))
	*lines = append(*lines, withDescription(strings.Join(segments, pathSegmentSeparator), node.description))
	appendEntriesHelp(lines, segments, node)
}

func appendEntriesHelp(lines *[]string, segments []string, node *Node) {
	for _, entry := range node.entries {
		if entry.child != nil {
			appendNodeHelp(lines, segments, entry.child)
			continue
		}
		appendExecutableHelp(lines, segments, entry.executable)
	}
}

func appendExecutableHelp(lines *[]string, segments []string, executable *Executable) {
	lineSegments := append([]string(nil), segments...)
	if !executable.Unnamed() {
		lineSegments = append(lineSegments, strings.Join(executable.aliases, aliasSeparator))
	} else if len(executable.params) == 0 && executable.description == "" {
		return
	}
	if usage := executable.usage(); usage != "" {
		lineSegments = append(lineSegments, usage)
	}
	*lines = append(*lines, withDescription(strings.Join(lineSegments, pathSegmentSeparator), executable.description))
}

func withDescription(line string, description string) string {
	if description == "" {
		return line
	}
	return fmt.Sprintf(helpDescriptionFormat, line, description)
}

// Autocomplete suggests completions for the last token of a partial command
// line. The result is never nil.
func (tree *Tree) Autocomplete(tokens []string) []string {
	partial := ""
	complete := tokens
	if len(tokens) > 0 {
		partial = tokens[len(tokens)-1]
		complete = tokens[:len(tokens)-1]
	}
	node, _, cursor := tree.descend(complete)
	rest := complete[cursor:]

	suggestions := []string{}
	if len(rest) == 0 {
		for _, alias := range node.namedAliases() {
			if strings.HasPrefix(alias, partial) {
				suggestions = append(suggestions, alias)
			}
		}
	}
	for _, executable := range node.executables {
		position := len(rest)
		if !executable.Unnamed() {
			if len(rest) == 0 || !executable.Named(rest[0]) {
				continue
			}
			position--
		}
		if param, found := executable.paramAt(position); found {
			suggestions = append(suggestions, param.complete(partial)...)
		}
	}
	return deduplicate(suggestions)
}

// paramAt returns the parameter that consumes the token at position.
func (executable *Executable) paramAt(position int) (Param, bool) {
	start := 0
	for paramIndex, param := range executable.params {
		if executable.greedy && paramIndex == len(executable.params)-1 {
			return param, position >= start
		}
		if position < start+param.Arity {
			return param, position >= start
		}
		start += param.Arity
	}
	return Param{}, false
}

func closestAlias(token string, aliases []string) string {
	if token == "" || len(aliases) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(token, aliases)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}

func deduplicate(values []string) []string {
	encountered := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		if _, exists := encountered[value]; exists {
			continue
		}
		encountered[value] = struct{}{}
		result = append(result, value)
	}
	return result
}

func nodeName(node *Node) string {
	if node == nil {
		return ""
	}
	return node.Name()
}
