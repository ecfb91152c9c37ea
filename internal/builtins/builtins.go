// Package builtins registers the command set shipped with the tool. Each group uses a
// different definition front-end: the overload showcase and version use the builder, math
// uses the DSL, and settings is an annotated struct.
package builtins

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/polyfrost/oneconfig/command"
	"github.com/polyfrost/oneconfig/internal/settings"
	"github.com/polyfrost/oneconfig/internal/utils"
)

const (
	wordSeparator         = " "
	builtinsRegisteredLog = "builtin commands registered"
	versionField          = "version"
)

// Options supplies the state builtins operate on.
type Options struct {
	Version string
	Store   *settings.Store
	Logger  *zap.Logger
}

// Register adds every builtin command to manager.
func Register(manager *command.Manager, options Options) error {
	if options.Store == nil {
		options.Store = settings.NewStore(nil)
	}
	if options.Version == "" {
		options.Version = utils.SemanticVersion()
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	registrations := []func(*command.Manager, Options) error{
		registerSay,
		registerOverloads,
		registerMath,
		registerSettings,
		registerVersion,
	}
	for _, registration := range registrations {
		if err := registration(manager, options); err != nil {
			return err
		}
	}
	options.Logger.Debug(builtinsRegisteredLog, zap.String(versionField, options.Version))
	return nil
}

func registerSay(manager *command.Manager, _ Options) error {
	return manager.RegisterExecutable(
		command.Runs("say", "echo").
			Description("print the words").
			With(command.Arg[[]string]("words")).
			Greedy().
			Does(func(arguments []any) (any, error) {
				return strings.Join(arguments[0].([]string), wordSeparator), nil
			}),
	)
}

// registerOverloads adds test2, which resolves by argument count: two integers are summed,
// while three or more tokens select the greedy overload.
func registerOverloads(manager *command.Manager, _ Options) error {
	sum := command.Runs("test2", "t2").
		Description("add two integers").
		With(command.Arg[int]("a"), command.Arg[int]("b")).
		Does(func(arguments []any) (any, error) {
			return arguments[0].(int) + arguments[1].(int), nil
		})
	greedy := command.Runs("test2", "t2").
		Description("label a count of words").
		With(command.Arg[string]("label"), command.Arg[int]("count"), command.Arg[[]string]("words")).
		Greedy().
		Does(func(arguments []any) (any, error) {
			words := arguments[2].([]string)
			return fmt.Sprintf("%s %d: %s", arguments[0], arguments[1], strings.Join(words, wordSeparator)), nil
		})
	for _, executable := range []*command.ExecutableBuilder{sum, greedy} {
		if err := manager.RegisterExecutable(executable); err != nil {
			return err
		}
	}
	return nil
}

func registerVersion(manager *command.Manager, options Options) error {
	return manager.Builder("version").
		Description("print the version").
		Then(
			command.Runs().Does(func([]any) (any, error) {
				return options.Version, nil
			}),
			command.Runs("check").
				Description("fail unless the version is at least minimum").
				With(command.Arg[string]("minimum")).
				Does(func(arguments []any) (any, error) {
					minimum := arguments[0].(string)
					satisfied, err := utils.VersionSatisfies(options.Version, minimum)
					if err != nil {
						return nil, err
					}
					if !satisfied {
						return nil, fmt.Errorf("%s does not satisfy %s", options.Version, minimum)
					}
					return fmt.Sprintf("%s satisfies %s", options.Version, minimum), nil
				}),
		).
		Register()
}
