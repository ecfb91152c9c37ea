package command

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

const (
	greedyTypeReason   = "greedy executable must end with a string or []string parameter, got %s"
	greedyEmptyReason  = "greedy executable has no parameters"
	missingHandlerText = "executable has no handler"
	handlerPanicFormat = "handler panicked: %v"
)

var (
	stringType      = reflect.TypeFor[string]()
	stringSliceType = reflect.TypeFor[[]string]()
)

// Handler is the bound invocation target of an Executable. args holds one
// value per Param in declaration order.
type Handler func(args []any) (any, error)

// Executable is one invocable signature. It is immutable once built.
type Executable struct {
	aliases     []string
	description string
	params      []Param
	greedy      bool
	handler     Handler
}

// NewExecutable validates and builds an Executable. An empty alias list makes
// it the main executable of whichever node it is attached to.
func NewExecutable(aliases []string, description string, params []Param, greedy bool, handler Handler) (*Executable, error) {
	displayName := firstAlias(aliases)
	if handler == nil {
		return nil, newCreationError(displayName, missingHandlerText, nil)
	}
	for _, param := range params {
		if validationError := param.validate(); validationError != nil {
			return nil, validationError
		}
	}
	if greedy {
		if len(params) == 0 {
			return nil, newCreationError(displayName, greedyEmptyReason, nil)
		}
		lastType := params[len(params)-1].Type
		if lastType != stringType && lastType != stringSliceType {
			return nil, newCreationError(displayName, fmt.Sprintf(greedyTypeReason, typeName(lastType)), nil)
		}
	}
	return &Executable{
		aliases:     normalizeAliases(aliases),
		description: description,
		params:      slices.Clone(params),
		greedy:      greedy,
		handler:     handler,
	}, nil
}

// Aliases returns a copy of the executable's names.
func (executable *Executable) Aliases() []string {
	return slices.Clone(executable.aliases)
}

// Description returns the executable's description.
func (executable *Executable) Description() string {
	return executable.description
}

// Params returns a copy of the declared parameters.
func (executable *Executable) Params() []Param {
	return slices.Clone(executable.params)
}

// Greedy reports whether the last parameter absorbs the remaining tokens.
func (executable *Executable) Greedy() bool {
	return executable.greedy
}

// Unnamed reports whether this is a node's main executable.
func (executable *Executable) Unnamed() bool {
	return len(executable.aliases) == 0
}

// Named reports whether token is one of the executable's aliases.
func (executable *Executable) Named(token string) bool {
	return slices.Contains(executable.aliases, token)
}

// Consumption is the total arity of all parameters.
func (executable *Executable) Consumption() int {
	total := 0
	for _, param := range executable.params {
		total += param.Arity
	}
	return total
}

// Matches reports whether the executable accepts exactly remaining tokens,
// or at least its declared consumption when greedy.
func (executable *Executable) Matches(remaining int) bool {
	if executable.greedy {
		return executable.Consumption() <= remaining
	}
	return executable.Consumption() == remaining
}

// Bind parses tokens into handler arguments. Failures are reported as
// *WrongArgumentsError so dispatch can move on to the next candidate.
func (executable *Executable) Bind(tokens []string) ([]any, error) {
	if !executable.Matches(len(tokens)) {
		return nil, &WrongArgumentsError{Path: executable.Aliases(), Remaining: len(tokens)}
	}
	arguments := make([]any, 0, len(executable.params))
	cursor := 0
	for paramIndex, param := range executable.params {
		if !param.resolved() {
			return nil, &WrongArgumentsError{
				Path:      executable.Aliases(),
				Remaining: len(tokens),
				Err:       &ParseError{Token: param.Name, Type: param.Type, Err: ErrNoParser},
			}
		}
		isGreedyParam := executable.greedy && paramIndex == len(executable.params)-1
		window := tokens[cursor : cursor+param.Arity]
		if isGreedyParam {
			window = tokens[cursor:]
		}
		cursor += len(window)
		value, parseError := param.parse(window, isGreedyParam)
		if parseError != nil {
			return nil, &WrongArgumentsError{Path: executable.Aliases(), Remaining: len(tokens), Err: parseError}
		}
		arguments = append(arguments, value)
	}
	return arguments, nil
}

// Invoke binds tokens and calls the handler.
func (executable *Executable) Invoke(tokens []string) (any, error) {
	arguments, bindError := executable.Bind(tokens)
	if bindError != nil {
		return nil, bindError
	}
	return executable.call(executable.Aliases(), arguments)
}

// call runs the handler, turning returned errors and panics into
// *ExecutionError.
func (executable *Executable) call(path []string, arguments []any) (result any, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			cause, isError := recovered.(error)
			if !isError {
				cause = fmt.Errorf(handlerPanicFormat, recovered)
			}
			result = nil
			err = &ExecutionError{Path: path, Err: cause}
		}
	}()
	handlerResult, handlerError := executable.handler(arguments)
	if handlerError != nil {
		return nil, &ExecutionError{Path: path, Err: handlerError}
	}
	return handlerResult, nil
}

func (executable *Executable) resolve(registry *Registry) error {
	for paramIndex := range executable.params {
		if resolveError := executable.params[paramIndex].resolve(registry); resolveError != nil {
			return resolveError
		}
	}
	return nil
}

func (executable *Executable) usage() string {
	var usage []string
	for paramIndex, param := range executable.params {
		usage = append(usage, param.Usage(executable.greedy && paramIndex == len(executable.params)-1))
	}
	return strings.Join(usage, pathSegmentSeparator)
}

func firstAlias(aliases []string) string {
	for _, alias := range aliases {
		if alias != "" {
			return alias
		}
	}
	return ""
}

// normalizeAliases drops empty and duplicate aliases, keeping order.
func normalizeAliases(aliases []string) []string {
	var normalized []string
	for _, alias := range aliases {
		if alias == "" || slices.Contains(normalized, alias) {
			continue
		}
		normalized = append(normalized, alias)
	}
	return normalized
}
