// Package command implements a command tree with overload resolution.
//
// Commands are declared through one of three front-ends: tagged structs
// (Manager.Create), the fluent builder (Manager.Builder) or the DSL
// (Manager.DSL). Each produces the same Node and Executable model. After
// Manager.Init resolves argument parsers, Manager.Execute walks the tree by
// alias, picks the first registered executable whose arity fits the
// remaining tokens and whose arguments parse, and calls its handler.
package command
