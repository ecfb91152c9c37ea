package command

import (
	"fmt"
	"reflect"
	"strings"
)

const (
	greedyJoinSeparator       = " "
	arityRequiresArrayReason  = "parameter %q has arity %d but type %s is not a slice or array"
	arrayLengthMismatchReason = "parameter %q is a %s but has arity %d"
	missingParserReason       = "no parser for parameter %q of type %s"
	usageFormat               = "<%s>"
	usageRepeatedFormat       = "<%s...%d>"
	usageGreedyFormat         = "<%s...>"
)

// Param describes one formal parameter of an Executable.
type Param struct {
	Name        string
	Description string
	Type        reflect.Type
	// Arity is the number of tokens the parameter consumes.
	Arity int

	parser      ArgumentParser
	elementWise bool
}

// NewParam validates and builds a Param. An arity below one is treated as one,
// and an empty name falls back to the type name.
func NewParam(name string, description string, parameterType reflect.Type, arity int) (Param, error) {
	if arity < 1 {
		arity = 1
	}
	if name == "" {
		name = typeName(parameterType)
	}
	param := Param{
		Name:        name,
		Description: description,
		Type:        parameterType,
		Arity:       arity,
	}
	if validationError := param.validate(); validationError != nil {
		return Param{}, validationError
	}
	return param, nil
}

func (param Param) validate() error {
	if param.Type == nil {
		return newCreationError(param.Name, "parameter has no type", nil)
	}
	kind := param.Type.Kind()
	if param.Arity > 1 && kind != reflect.Slice && kind != reflect.Array {
		return newCreationError(param.Name, fmt.Sprintf(arityRequiresArrayReason, param.Name, param.Arity, typeName(param.Type)), nil)
	}
	if kind == reflect.Array && param.Type.Len() != param.Arity {
		return newCreationError(param.Name, fmt.Sprintf(arrayLengthMismatchReason, param.Name, typeName(param.Type), param.Arity), nil)
	}
	return nil
}

// resolve binds the param to a parser from registry. A slice or array param
// uses its element parser unless the whole type has a parser and arity is one.
func (param *Param) resolve(registry *Registry) error {
	if validationError := param.validate(); validationError != nil {
		return validationError
	}
	if param.Arity == 1 {
		if parser, found := registry.Lookup(param.Type); found {
			param.parser = parser
			param.elementWise = false
			return nil
		}
	}
	kind := param.Type.Kind()
	if kind == reflect.Slice || kind == reflect.Array {
		if parser, found := registry.Lookup(param.Type.Elem()); found {
			param.parser = parser
			param.elementWise = true
			return nil
		}
	}
	return newCreationError(param.Name, fmt.Sprintf(missingParserReason, param.Name, typeName(param.Type)), ErrNoParser)
}

func (param Param) resolved() bool {
	return param.parser != nil
}

// parse converts a token window into a value of the param's type. greedy
// windows may hold any number of tokens.
func (param Param) parse(tokens []string, greedy bool) (any, error) {
	if !param.elementWise {
		token := strings.Join(tokens, greedyJoinSeparator)
		if !greedy && len(tokens) != 1 {
			return nil, &ParseError{Token: token, Type: param.Type, Err: fmt.Errorf("expected 1 token, got %d", len(tokens))}
		}
		return parseWith(param.parser, token)
	}

	var container reflect.Value
	if param.Type.Kind() == reflect.Array {
		if len(tokens) != param.Type.Len() {
			return nil, &ParseError{Token: strings.Join(tokens, greedyJoinSeparator), Type: param.Type, Err: fmt.Errorf("expected %d tokens, got %d", param.Type.Len(), len(tokens))}
		}
		container = reflect.New(param.Type).Elem()
	} else {
		container = reflect.MakeSlice(param.Type, len(tokens), len(tokens))
	}
	elementType := param.Type.Elem()
	for tokenIndex, token := range tokens {
		element, elementError := parseWith(param.parser, token)
		if elementError != nil {
			return nil, elementError
		}
		elementValue := reflect.ValueOf(element)
		if !elementValue.IsValid() {
			// A parser may report an untyped nil; the element keeps its zero value.
			continue
		}
		if !elementValue.Type().AssignableTo(elementType) {
			if !elementValue.Type().ConvertibleTo(elementType) {
				return nil, &ParseError{Token: token, Type: elementType, Err: fmt.Errorf("parser produced %s", elementValue.Type())}
			}
			elementValue = elementValue.Convert(elementType)
		}
		container.Index(tokenIndex).Set(elementValue)
	}
	return container.Interface(), nil
}

// complete returns completions for a partial token in this param's position.
func (param Param) complete(partial string) []string {
	if param.parser == nil {
		return nil
	}
	return param.parser.Complete(partial)
}

// Usage renders the param for help output.
func (param Param) Usage(greedy bool) string {
	switch {
	case greedy:
		return fmt.Sprintf(usageGreedyFormat, param.Name)
	case param.Arity > 1:
		return fmt.Sprintf(usageRepeatedFormat, param.Name, param.Arity)
	default:
		return fmt.Sprintf(usageFormat, param.Name)
	}
}
