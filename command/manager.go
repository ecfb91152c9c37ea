package command

import (
	"go.uber.org/zap"
)

const (
	commandRegisteredMessage = "command registered"
	commandRejectedMessage   = "command registration failed"
	aliasesField             = "aliases"
)

// Factory builds a command node from a declarative source. accepted is false
// when the factory does not understand source.
type Factory interface {
	Create(registry *Registry, source any) (node *Node, accepted bool, err error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(registry *Registry, source any) (*Node, bool, error)

// Create calls the function.
func (factoryFunc FactoryFunc) Create(registry *Registry, source any) (*Node, bool, error) {
	return factoryFunc(registry, source)
}

// Manager owns a parser registry, the registered factories and the command
// tree they populate. Registration must finish, followed by Init, before
// Execute is called; after Init the manager is safe for concurrent Execute,
// Help and Autocomplete calls.
type Manager struct {
	registry  *Registry
	factories []Factory
	tree      *Tree
	logger    *zap.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used by the manager and its tree.
func WithLogger(logger *zap.Logger) Option {
	return func(manager *Manager) {
		if logger != nil {
			manager.logger = logger
		}
	}
}

// WithRegistry replaces the default parser registry.
func WithRegistry(registry *Registry) Option {
	return func(manager *Manager) {
		if registry != nil {
			manager.registry = registry
		}
	}
}

// NewManager creates a manager with the default parsers and the annotation
// and builder factories.
func NewManager(options ...Option) *Manager {
	manager := &Manager{
		logger: zap.NewNop(),
	}
	for _, option := range options {
		option(manager)
	}
	if manager.registry == nil {
		manager.registry = NewRegistry()
	}
	manager.tree = NewTree(manager.logger)
	manager.factories = []Factory{annotationFactory{}, builderFactory{}}
	return manager
}

// Registry returns the manager's parser registry.
func (manager *Manager) Registry() *Registry {
	return manager.registry
}

// Tree returns the command tree.
func (manager *Manager) Tree() *Tree {
	return manager.tree
}

// RegisterFactory adds a factory consulted by Create before the defaults.
func (manager *Manager) RegisterFactory(factory Factory) {
	if factory == nil {
		return
	}
	manager.factories = append([]Factory{factory}, manager.factories...)
}

// RegisterParser adds or replaces a parser. Trees already initialized keep
// the parsers they resolved.
func (manager *Manager) RegisterParser(parser ArgumentParser) {
	manager.registry.Register(parser)
}

// Create hands source to the first factory that accepts it and registers the
// resulting command. It reports false when no factory understood source.
func (manager *Manager) Create(source any) (bool, error) {
	for _, factory := range manager.factories {
		node, accepted, createError := factory.Create(manager.registry, source)
		if !accepted {
			continue
		}
		if createError != nil {
			manager.logger.Warn(commandRejectedMessage, zap.Error(createError))
			return true, createError
		}
		return true, manager.register(node)
	}
	return false, nil
}

// Builder starts a fluent definition; call Register on the result.
func (manager *Manager) Builder(aliases ...string) *CommandBuilder {
	builder := NewBuilder(aliases...)
	builder.register = manager.register
	return builder
}

// DSL evaluates block and registers the resulting command.
func (manager *Manager) DSL(aliases []string, block func(*Scope)) error {
	builder := Define(aliases, block)
	builder.register = manager.register
	return builder.Register()
}

// RegisterExecutable builds a named executable and places it directly under
// the root, next to the top-level commands.
func (manager *Manager) RegisterExecutable(builder *ExecutableBuilder) error {
	executable, buildError := builder.Build()
	if buildError != nil {
		return buildError
	}
	if registerError := manager.tree.RegisterExecutable(executable); registerError != nil {
		manager.logger.Warn(commandRejectedMessage, zap.Strings(aliasesField, executable.Aliases()), zap.Error(registerError))
		return registerError
	}
	manager.logger.Debug(commandRegisteredMessage, zap.Strings(aliasesField, executable.Aliases()))
	return nil
}

func (manager *Manager) register(node *Node) error {
	if registerError := manager.tree.Register(node); registerError != nil {
		manager.logger.Warn(commandRejectedMessage, zap.Strings(aliasesField, nodeAliases(node)), zap.Error(registerError))
		return registerError
	}
	manager.logger.Debug(commandRegisteredMessage, zap.Strings(aliasesField, node.Aliases()))
	return nil
}

// Init resolves parsers and seals the tree.
func (manager *Manager) Init() error {
	return manager.tree.Init(manager.registry)
}

// Execute dispatches tokens through the tree.
func (manager *Manager) Execute(tokens []string) (any, error) {
	return manager.tree.Execute(tokens)
}

// Help lists all command paths.
func (manager *Manager) Help() []string {
	return manager.tree.Help()
}

// Autocomplete suggests completions for a partial command line.
func (manager *Manager) Autocomplete(tokens []string) []string {
	return manager.tree.Autocomplete(tokens)
}

// Close seals the tree and drops the factories. Execute keeps working on the
// commands registered so far; further registrations fail.
func (manager *Manager) Close() error {
	manager.factories = nil
	initError := manager.Init()
	_ = manager.logger.Sync()
	return initError
}

func nodeAliases(node *Node) []string {
	if node == nil {
		return nil
	}
	return node.Aliases()
}
