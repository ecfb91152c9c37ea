package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	toggleFlagTypeName               = "toggle"
	toggleFlagTrueLiteral            = "true"
	toggleFlagAcceptedValuesListing  = "true, false, yes, no, on, off, enabled, disabled, 1, 0"
	toggleFlagInvalidValueErrorLabel = "invalid toggle value"
	toggleFlagAssignmentFormat       = "--%s=%s"
	longFlagPrefix                   = "--"
)

var toggleFlagLiterals = map[string]bool{
	"true":     true,
	"t":        true,
	"1":        true,
	"yes":      true,
	"y":        true,
	"on":       true,
	"enabled":  true,
	"false":    false,
	"f":        false,
	"0":        false,
	"no":       false,
	"n":        false,
	"off":      false,
	"disabled": false,
}

// passthroughCommandNames receive engine tokens, so nothing after them is rewritten.
var passthroughCommandNames = []string{"exec", execAlias, "complete"}

// toggleFlag is a boolean flag that can be overridden by a configuration value. The
// command line wins when the flag was given; otherwise a configured value wins over the
// flag default.
type toggleFlag struct {
	target   *bool
	name     string
	explicit bool
}

func lookupToggleLiteral(input string) (bool, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		normalized = toggleFlagTrueLiteral
	}
	value, known := toggleFlagLiterals[normalized]
	return value, known
}

func (flag *toggleFlag) Set(input string) error {
	parsed, known := lookupToggleLiteral(input)
	if !known {
		return fmt.Errorf("%s %q for --%s; accepted values: %s", toggleFlagInvalidValueErrorLabel, input, flag.name, toggleFlagAcceptedValuesListing)
	}
	*flag.target = parsed
	flag.explicit = true
	return nil
}

func (flag *toggleFlag) String() string {
	if flag == nil || flag.target == nil {
		return toggleFlagTrueLiteral
	}
	return strconv.FormatBool(*flag.target)
}

func (flag *toggleFlag) Type() string {
	return toggleFlagTypeName
}

// resolve returns the effective value given an optional configured value.
func (flag *toggleFlag) resolve(configured *bool) bool {
	if !flag.explicit && configured != nil {
		return *configured
	}
	return *flag.target
}

// registerToggleFlag registers a toggle accepting --name, --name=value and --name value.
func registerToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) *toggleFlag {
	*target = defaultValue
	flag := &toggleFlag{target: target, name: name}
	flagSet.Var(flag, name, usage)
	if registered := flagSet.Lookup(name); registered != nil {
		registered.DefValue = strconv.FormatBool(defaultValue)
		registered.NoOptDefVal = toggleFlagTrueLiteral
	}
	return flag
}

// normalizeToggleArguments rewrites "--name value" into "--name=value" for toggle flags so
// pflag does not treat the literal as a positional argument. Rewriting stops at "--" and at
// the first command that forwards its tokens to the command engine.
func normalizeToggleArguments(command *cobra.Command, arguments []string) []string {
	if command == nil || len(arguments) == 0 {
		return arguments
	}
	toggleNames := collectToggleFlagNames(command, map[string]struct{}{})
	if len(toggleNames) == 0 {
		return arguments
	}
	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		currentArgument := arguments[index]
		if currentArgument == longFlagPrefix || slices.Contains(passthroughCommandNames, currentArgument) {
			return append(normalized, arguments[index:]...)
		}
		flagName, isLongFlag := strings.CutPrefix(currentArgument, longFlagPrefix)
		_, isToggle := toggleNames[flagName]
		if isLongFlag && isToggle && index+1 < len(arguments) {
			if _, known := lookupToggleLiteral(arguments[index+1]); known && arguments[index+1] != "" {
				normalized = append(normalized, fmt.Sprintf(toggleFlagAssignmentFormat, flagName, arguments[index+1]))
				index++
				continue
			}
		}
		normalized = append(normalized, currentArgument)
	}
	return normalized
}

func collectToggleFlagNames(command *cobra.Command, names map[string]struct{}) map[string]struct{} {
	register := func(flag *pflag.Flag) {
		if flag.Value != nil && flag.Value.Type() == toggleFlagTypeName {
			names[flag.Name] = struct{}{}
		}
	}
	command.PersistentFlags().VisitAll(register)
	command.Flags().VisitAll(register)
	for _, child := range command.Commands() {
		collectToggleFlagNames(child, names)
	}
	return names
}
