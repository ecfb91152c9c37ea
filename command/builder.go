package command

import (
	"errors"
	"reflect"
)

var errNoRegistrationTarget = errors.New("builder is not attached to a manager")

// ParamBuilder describes a parameter for the builder and DSL front-ends.
type ParamBuilder struct {
	name        string
	description string
	paramType   reflect.Type
	arity       int
}

// Arg starts a parameter of type T.
func Arg[T any](name string) *ParamBuilder {
	return &ParamBuilder{name: name, paramType: reflect.TypeFor[T](), arity: 1}
}

// ArgOf starts a parameter whose type is only known at run time, such as one read from a
// definition file.
func ArgOf(name string, parameterType reflect.Type) *ParamBuilder {
	return &ParamBuilder{name: name, paramType: parameterType, arity: 1}
}

// Describe sets the parameter description.
func (builder *ParamBuilder) Describe(description string) *ParamBuilder {
	builder.description = description
	return builder
}

// Arity sets how many tokens the parameter consumes. Only slice and array
// parameters accept an arity above one.
func (builder *ParamBuilder) Arity(arity int) *ParamBuilder {
	builder.arity = arity
	return builder
}

func (builder *ParamBuilder) build() (Param, error) {
	return NewParam(builder.name, builder.description, builder.paramType, builder.arity)
}

// ExecutableBuilder assembles one overload.
type ExecutableBuilder struct {
	aliases     []string
	description string
	params      []*ParamBuilder
	greedy      bool
	handler     Handler
}

// Runs starts an executable. Without aliases it becomes the main executable
// of the command it is attached to.
func Runs(aliases ...string) *ExecutableBuilder {
	return &ExecutableBuilder{aliases: aliases}
}

// Description sets the executable description.
func (builder *ExecutableBuilder) Description(description string) *ExecutableBuilder {
	builder.description = description
	return builder
}

// With appends parameters in declaration order.
func (builder *ExecutableBuilder) With(params ...*ParamBuilder) *ExecutableBuilder {
	builder.params = append(builder.params, params...)
	return builder
}

// Greedy lets the last string or []string parameter absorb all remaining
// tokens.
func (builder *ExecutableBuilder) Greedy() *ExecutableBuilder {
	builder.greedy = true
	return builder
}

// Does sets the handler.
func (builder *ExecutableBuilder) Does(handler Handler) *ExecutableBuilder {
	builder.handler = handler
	return builder
}

// Build validates the executable.
func (builder *ExecutableBuilder) Build() (*Executable, error) {
	params := make([]Param, 0, len(builder.params))
	for _, paramBuilder := range builder.params {
		param, paramError := paramBuilder.build()
		if paramError != nil {
			return nil, paramError
		}
		params = append(params, param)
	}
	return NewExecutable(builder.aliases, builder.description, params, builder.greedy, builder.handler)
}

// CommandBuilder assembles a command node with its executables and
// subcommands. Executables and subcommands keep the order they were attached
// in, so help lists them the way they were declared.
type CommandBuilder struct {
	aliases     []string
	description string
	steps       []builderStep
	register    func(*Node) error
}

// builderStep is either an executable or a subcommand.
type builderStep struct {
	executable *ExecutableBuilder
	subcommand *CommandBuilder
}

// NewBuilder starts a command identified by aliases.
func NewBuilder(aliases ...string) *CommandBuilder {
	return &CommandBuilder{aliases: aliases}
}

// Description sets the command description.
func (builder *CommandBuilder) Description(description string) *CommandBuilder {
	builder.description = description
	return builder
}

// Then attaches executables.
func (builder *CommandBuilder) Then(executables ...*ExecutableBuilder) *CommandBuilder {
	for _, executable := range executables {
		builder.steps = append(builder.steps, builderStep{executable: executable})
	}
	return builder
}

// Subcommand attaches nested commands.
func (builder *CommandBuilder) Subcommand(subcommands ...*CommandBuilder) *CommandBuilder {
	for _, subcommand := range subcommands {
		builder.steps = append(builder.steps, builderStep{subcommand: subcommand})
	}
	return builder
}

// Build produces the node tree.
func (builder *CommandBuilder) Build() (*Node, error) {
	if len(normalizeAliases(builder.aliases)) == 0 {
		return nil, newCreationError("", nodeWithoutAliasReason, nil)
	}
	node := NewNode(builder.aliases, builder.description)
	for _, step := range builder.steps {
		if step.executable != nil {
			executable, buildError := step.executable.Build()
			if buildError != nil {
				return nil, buildError
			}
			if addError := node.AddExecutable(executable); addError != nil {
				return nil, addError
			}
			continue
		}
		if step.subcommand == nil {
			continue
		}
		child, buildError := step.subcommand.Build()
		if buildError != nil {
			return nil, buildError
		}
		if addError := node.AddChild(child); addError != nil {
			return nil, addError
		}
	}
	return node, nil
}

// Register builds the command and registers it with the manager that created
// the builder.
func (builder *CommandBuilder) Register() error {
	if builder.register == nil {
		return newCreationError(firstAlias(builder.aliases), "cannot register", errNoRegistrationTarget)
	}
	node, buildError := builder.Build()
	if buildError != nil {
		return buildError
	}
	return builder.register(node)
}

type builderFactory struct{}

// Create accepts a *CommandBuilder source.
func (builderFactory) Create(_ *Registry, source any) (*Node, bool, error) {
	builder, isBuilder := source.(*CommandBuilder)
	if !isBuilder {
		return nil, false, nil
	}
	node, buildError := builder.Build()
	if buildError != nil {
		return nil, true, buildError
	}
	return node, true, nil
}
