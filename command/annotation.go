package command

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Struct tag keys read by the annotation factory.
const (
	tagCommand     = "command"
	tagDescription = "description"
	tagParams      = "params"
	tagArity       = "arity"
	tagGreedy      = "greedy"
	tagMethod      = "method"
	tagMain        = "main"

	parentFieldName      = "Parent"
	listSeparator        = ","
	paramDescriptionMark = ":"
)

const (
	unexportedFieldReason   = "field %s must be exported to be used as a command"
	nilHandlerReason        = "handler field %s is nil"
	missingMethodReason     = "method %s not found on %s"
	handlerSignatureReason  = "handler %s must return nothing, a value, an error or (value, error)"
	invalidArityReason      = "invalid arity %q on %s"
	arityCountReason        = "%s declares %d arities for %d parameters"
	missingSubcommandReason = "subcommand field %s has no aliases"
)

var (
	metaType   = reflect.TypeFor[Meta]()
	methodType = reflect.TypeFor[Method]()
	errorType  = reflect.TypeFor[error]()
)

// Meta marks a struct as a command. Its tags carry the command's aliases and
// description:
//
//	type Settings struct {
//	    _ command.Meta `command:"settings,s" description:"manage settings"`
//	}
type Meta struct{}

// Method binds an exported method of the enclosing struct as an executable:
//
//	_ command.Method `method:"Add" command:"add" params:"a,b"`
type Method struct{}

// annotationFactory turns tagged structs into command nodes.
//
// Fields tagged `command` are read in declaration order. A func field or a
// Method marker becomes an executable; a struct or struct pointer field
// becomes a subcommand. Executables accept `description`, `params`
// ("name:description,..."), `arity` ("1,3"), `greedy:"true"` and
// `main:"true"` for the unnamed executable. An empty `command` tag derives
// the alias from the field or method name.
type annotationFactory struct{}

// Create accepts a struct or pointer to struct carrying a Meta field.
func (annotationFactory) Create(_ *Registry, source any) (*Node, bool, error) {
	value := reflect.ValueOf(source)
	if !value.IsValid() {
		return nil, false, nil
	}
	if value.Kind() == reflect.Pointer {
		if value.IsNil() || value.Elem().Kind() != reflect.Struct {
			return nil, false, nil
		}
		value = value.Elem()
	} else if value.Kind() == reflect.Struct {
		addressable := reflect.New(value.Type()).Elem()
		addressable.Set(value)
		value = addressable
	} else {
		return nil, false, nil
	}
	aliases, description, found := commandMeta(value.Type())
	if !found {
		return nil, false, nil
	}
	node, buildError := buildAnnotatedNode(value, aliases, description)
	if buildError != nil {
		return nil, true, buildError
	}
	return node, true, nil
}

func commandMeta(structType reflect.Type) ([]string, string, bool) {
	for fieldIndex := 0; fieldIndex < structType.NumField(); fieldIndex++ {
		field := structType.Field(fieldIndex)
		if field.Type != metaType {
			continue
		}
		return splitList(field.Tag.Get(tagCommand)), field.Tag.Get(tagDescription), true
	}
	return nil, "", false
}

func buildAnnotatedNode(value reflect.Value, aliases []string, description string) (*Node, error) {
	structType := value.Type()
	if len(normalizeAliases(aliases)) == 0 {
		return nil, newCreationError(structType.Name(), nodeWithoutAliasReason, nil)
	}
	node := NewNode(aliases, description)
	for fieldIndex := 0; fieldIndex < structType.NumField(); fieldIndex++ {
		field := structType.Field(fieldIndex)
		commandTag, tagged := field.Tag.Lookup(tagCommand)
		if !tagged || field.Type == metaType {
			continue
		}

		if field.Type == methodType {
			methodName := field.Tag.Get(tagMethod)
			method := value.Addr().MethodByName(methodName)
			if !method.IsValid() {
				return nil, newCreationError(node.Name(), fmt.Sprintf(missingMethodReason, methodName, structType.Name()), nil)
			}
			executable, buildError := buildAnnotatedExecutable(methodName, commandTag, field.Tag, method)
			if buildError != nil {
				return nil, buildError
			}
			if addError := node.AddExecutable(executable); addError != nil {
				return nil, addError
			}
			continue
		}

		if !field.IsExported() {
			return nil, newCreationError(node.Name(), fmt.Sprintf(unexportedFieldReason, field.Name), nil)
		}
		fieldValue := value.Field(fieldIndex)

		switch {
		case field.Type.Kind() == reflect.Func:
			if fieldValue.IsNil() {
				return nil, newCreationError(node.Name(), fmt.Sprintf(nilHandlerReason, field.Name), nil)
			}
			executable, buildError := buildAnnotatedExecutable(field.Name, commandTag, field.Tag, fieldValue)
			if buildError != nil {
				return nil, buildError
			}
			if addError := node.AddExecutable(executable); addError != nil {
				return nil, addError
			}

		case isStructOrStructPointer(field.Type):
			childValue := subcommandValue(fieldValue, value)
			childAliases := splitList(commandTag)
			childDescription := field.Tag.Get(tagDescription)
			if len(childAliases) == 0 {
				metaAliases, metaDescription, _ := commandMeta(childValue.Type())
				childAliases = metaAliases
				if childDescription == "" {
					childDescription = metaDescription
				}
			}
			if len(childAliases) == 0 {
				return nil, newCreationError(node.Name(), fmt.Sprintf(missingSubcommandReason, field.Name), nil)
			}
			child, buildError := buildAnnotatedNode(childValue, childAliases, childDescription)
			if buildError != nil {
				return nil, buildError
			}
			if addError := node.AddChild(child); addError != nil {
				return nil, addError
			}
		}
	}
	return node, nil
}

func isStructOrStructPointer(fieldType reflect.Type) bool {
	if fieldType.Kind() == reflect.Struct {
		return true
	}
	return fieldType.Kind() == reflect.Pointer && fieldType.Elem().Kind() == reflect.Struct
}

// subcommandValue returns the addressable struct behind a subcommand field,
// allocating nil pointers and binding an empty Parent field to the enclosing
// instance.
func subcommandValue(fieldValue reflect.Value, parent reflect.Value) reflect.Value {
	if fieldValue.Kind() == reflect.Pointer {
		if fieldValue.IsNil() {
			fieldValue.Set(reflect.New(fieldValue.Type().Elem()))
		}
		fieldValue = fieldValue.Elem()
	}
	parentField := fieldValue.FieldByName(parentFieldName)
	if parentField.IsValid() && parentField.CanSet() && parentField.Kind() == reflect.Pointer &&
		parentField.IsNil() && parent.Addr().Type().AssignableTo(parentField.Type()) {
		parentField.Set(parent.Addr())
	}
	return fieldValue
}

func buildAnnotatedExecutable(memberName string, commandTag string, tag reflect.StructTag, function reflect.Value) (*Executable, error) {
	var aliases []string
	if mainValue, isMain := tag.Lookup(tagMain); !isMain || mainValue == "false" {
		aliases = splitList(commandTag)
		if len(aliases) == 0 {
			aliases = []string{strings.ToLower(memberName)}
		}
	}
	displayName := firstAlias(aliases)
	if displayName == "" {
		displayName = memberName
	}

	functionType := function.Type()
	if !validHandlerResults(functionType) {
		return nil, newCreationError(displayName, fmt.Sprintf(handlerSignatureReason, memberName), nil)
	}

	paramSpecs := splitList(tag.Get(tagParams))
	arities, arityError := parseArities(tag.Get(tagArity), functionType.NumIn(), displayName, memberName)
	if arityError != nil {
		return nil, arityError
	}
	params := make([]Param, 0, functionType.NumIn())
	for inputIndex := 0; inputIndex < functionType.NumIn(); inputIndex++ {
		var name, description string
		if inputIndex < len(paramSpecs) {
			name, description, _ = strings.Cut(paramSpecs[inputIndex], paramDescriptionMark)
		}
		param, paramError := NewParam(strings.TrimSpace(name), strings.TrimSpace(description), functionType.In(inputIndex), arities[inputIndex])
		if paramError != nil {
			return nil, paramError
		}
		params = append(params, param)
	}

	greedy, _ := strconv.ParseBool(tag.Get(tagGreedy))
	return NewExecutable(aliases, tag.Get(tagDescription), params, greedy, reflectHandler(function))
}

func validHandlerResults(functionType reflect.Type) bool {
	switch functionType.NumOut() {
	case 0, 1:
		return true
	case 2:
		return functionType.Out(1) == errorType
	default:
		return false
	}
}

func parseArities(arityTag string, parameterCount int, displayName string, memberName string) ([]int, error) {
	arities := make([]int, parameterCount)
	for index := range arities {
		arities[index] = 1
	}
	declared := splitList(arityTag)
	if len(declared) > parameterCount {
		return nil, newCreationError(displayName, fmt.Sprintf(arityCountReason, memberName, len(declared), parameterCount), nil)
	}
	for index, rawArity := range declared {
		arity, convertError := strconv.Atoi(rawArity)
		if convertError != nil {
			return nil, newCreationError(displayName, fmt.Sprintf(invalidArityReason, rawArity, memberName), convertError)
		}
		arities[index] = arity
	}
	return arities, nil
}

// reflectHandler adapts a func value to a Handler.
func reflectHandler(function reflect.Value) Handler {
	functionType := function.Type()
	return func(arguments []any) (any, error) {
		inputs := make([]reflect.Value, len(arguments))
		for argumentIndex, argument := range arguments {
			targetType := functionType.In(argumentIndex)
			argumentValue := reflect.ValueOf(argument)
			switch {
			case !argumentValue.IsValid():
				argumentValue = reflect.Zero(targetType)
			case !argumentValue.Type().AssignableTo(targetType):
				argumentValue = argumentValue.Convert(targetType)
			}
			inputs[argumentIndex] = argumentValue
		}
		var outputs []reflect.Value
		if functionType.IsVariadic() {
			outputs = function.CallSlice(inputs)
		} else {
			outputs = function.Call(inputs)
		}
		return unpackResults(outputs)
	}
}

func unpackResults(outputs []reflect.Value) (any, error) {
	switch len(outputs) {
	case 0:
		return nil, nil
	case 1:
		if outputs[0].Type() == errorType {
			return nil, asError(outputs[0])
		}
		return outputs[0].Interface(), nil
	default:
		if callError := asError(outputs[1]); callError != nil {
			return nil, callError
		}
		return outputs[0].Interface(), nil
	}
}

func asError(value reflect.Value) error {
	if value.IsNil() {
		return nil
	}
	return value.Interface().(error)
}

func splitList(raw string) []string {
	var values []string
	for _, part := range strings.Split(raw, listSeparator) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
