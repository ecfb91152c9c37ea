package command

// Scope is the receiver of a DSL block. It writes into a CommandBuilder, so a
// DSL definition produces exactly what the equivalent builder calls would.
//
//	command.Define([]string{"math"}, func(math *command.Scope) {
//	    math.Description("arithmetic")
//	    math.Run([]string{"add"}, add, command.Arg[int]("a"), command.Arg[int]("b"))
//	    math.Sub([]string{"deep"}, func(deep *command.Scope) {
//	        deep.Main(hello)
//	    })
//	})
type Scope struct {
	builder *CommandBuilder
}

// Define evaluates block against a new command identified by aliases.
func Define(aliases []string, block func(*Scope)) *CommandBuilder {
	builder := NewBuilder(aliases...)
	if block != nil {
		block(&Scope{builder: builder})
	}
	return builder
}

// Description sets the description of the enclosing command.
func (scope *Scope) Description(description string) {
	scope.builder.Description(description)
}

// Main attaches an unnamed executable to the enclosing command.
func (scope *Scope) Main(handler Handler, params ...*ParamBuilder) *ExecutableBuilder {
	return scope.Run(nil, handler, params...)
}

// Run attaches a named executable. The returned builder may be refined with
// Description or Greedy.
func (scope *Scope) Run(aliases []string, handler Handler, params ...*ParamBuilder) *ExecutableBuilder {
	executable := Runs(aliases...).With(params...).Does(handler)
	scope.builder.Then(executable)
	return executable
}

// Sub defines a nested command.
func (scope *Scope) Sub(aliases []string, block func(*Scope)) {
	scope.builder.Subcommand(Define(aliases, block))
}
