package command

import (
	"fmt"
	"slices"
)

const (
	nodeWithoutAliasReason    = "subcommand has no aliases"
	aliasCollisionReason      = "alias %q is already used by sibling %q"
	executableCollisionReason = "alias %q is already used by executable %q"
	subcommandCollisionReason = "alias %q is already used by subcommand %q"
	missingExecutableReason   = "executable is nil"
)

// Node is one named level of a command tree. It holds subcommands and the
// executables reachable through its own path.
type Node struct {
	aliases     []string
	description string
	children    []*Node
	childIndex  map[string]*Node
	executables []*Executable
	// entries holds children and executables together in registration order.
	entries []nodeEntry
}

// nodeEntry is either a child node or an executable.
type nodeEntry struct {
	child      *Node
	executable *Executable
}

// NewNode creates a node identified by aliases.
func NewNode(aliases []string, description string) *Node {
	return &Node{
		aliases:     normalizeAliases(aliases),
		description: description,
		childIndex:  make(map[string]*Node),
	}
}

// Aliases returns a copy of the node's names.
func (node *Node) Aliases() []string {
	return slices.Clone(node.aliases)
}

// Name returns the primary alias.
func (node *Node) Name() string {
	return firstAlias(node.aliases)
}

// Description returns the node's description.
func (node *Node) Description() string {
	return node.description
}

// Children returns the subcommands in registration order.
func (node *Node) Children() []*Node {
	return slices.Clone(node.children)
}

// Executables returns the attached executables in registration order.
func (node *Node) Executables() []*Executable {
	return slices.Clone(node.executables)
}

// Child looks up a subcommand by alias.
func (node *Node) Child(alias string) (*Node, bool) {
	child, found := node.childIndex[alias]
	return child, found
}

// AddChild attaches a subcommand. Aliases must be disjoint from every sibling
// subcommand and from every named executable of node.
func (node *Node) AddChild(child *Node) error {
	if child == nil || len(child.aliases) == 0 {
		return newCreationError(node.Name(), nodeWithoutAliasReason, nil)
	}
	if node.childIndex == nil {
		node.childIndex = make(map[string]*Node)
	}
	for _, alias := range child.aliases {
		if existing, taken := node.childIndex[alias]; taken {
			return newCreationError(child.Name(), fmt.Sprintf(aliasCollisionReason, alias, existing.Name()), nil)
		}
		if executable := node.namedExecutable(alias); executable != nil {
			return newCreationError(child.Name(), fmt.Sprintf(executableCollisionReason, alias, firstAlias(executable.aliases)), nil)
		}
	}
	for _, alias := range child.aliases {
		node.childIndex[alias] = child
	}
	node.children = append(node.children, child)
	node.entries = append(node.entries, nodeEntry{child: child})
	return nil
}

// AddExecutable attaches an executable. Several executables may share
// aliases; they are tried in the order they were added. An alias already
// taken by a subcommand is rejected, since descent would always pick the
// subcommand.
func (node *Node) AddExecutable(executable *Executable) error {
	if executable == nil {
		return newCreationError(node.Name(), missingExecutableReason, nil)
	}
	for _, alias := range executable.aliases {
		if child, taken := node.childIndex[alias]; taken {
			return newCreationError(firstAlias(executable.aliases), fmt.Sprintf(subcommandCollisionReason, alias, child.Name()), nil)
		}
	}
	node.executables = append(node.executables, executable)
	node.entries = append(node.entries, nodeEntry{executable: executable})
	return nil
}

func (node *Node) namedExecutable(alias string) *Executable {
	for _, executable := range node.executables {
		if executable.Named(alias) {
			return executable
		}
	}
	return nil
}

func (node *Node) resolve(registry *Registry) error {
	for _, executable := range node.executables {
		if resolveError := executable.resolve(registry); resolveError != nil {
			return resolveError
		}
	}
	for _, child := range node.children {
		if resolveError := child.resolve(registry); resolveError != nil {
			return resolveError
		}
	}
	return nil
}

// namedAliases lists the aliases of children and named executables, used for
// suggestions.
func (node *Node) namedAliases() []string {
	var aliases []string
	for _, child := range node.children {
		aliases = append(aliases, child.aliases...)
	}
	for _, executable := range node.executables {
		aliases = append(aliases, executable.aliases...)
	}
	return normalizeAliases(aliases)
}
