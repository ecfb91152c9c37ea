// Package definitions loads commands declared in YAML files and registers them with a
// command manager through the builder factory.
package definitions

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"text/template"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/polyfrost/oneconfig/command"
	"github.com/polyfrost/oneconfig/internal/utils"
)

// Actions an executable may perform.
const (
	ActionEcho     = "echo"
	ActionTemplate = "template"
)

const (
	sliceTypePrefix         = "[]"
	echoSeparator           = " "
	templateMissingKeyError = "missingkey=error"
	definitionsLoadedLog    = "command definitions loaded"
	pathField               = "path"
	commandCountField       = "commands"
)

var (
	// ErrInvalidDefinition reports a file that does not match the definition schema.
	ErrInvalidDefinition = errors.New("invalid command definition")
	// ErrUnsupportedVersion reports a file requiring a newer engine.
	ErrUnsupportedVersion = errors.New("definition requires a newer version")
	// ErrUnknownType reports a parameter type name with no Go counterpart.
	ErrUnknownType = errors.New("unknown parameter type")
	// ErrUnknownAction reports an executable action other than echo or template.
	ErrUnknownAction = errors.New("unknown action")
)

var scalarTypes = map[string]reflect.Type{
	"string":  reflect.TypeFor[string](),
	"int":     reflect.TypeFor[int](),
	"int64":   reflect.TypeFor[int64](),
	"long":    reflect.TypeFor[int64](),
	"int32":   reflect.TypeFor[int32](),
	"int16":   reflect.TypeFor[int16](),
	"short":   reflect.TypeFor[int16](),
	"int8":    reflect.TypeFor[int8](),
	"byte":    reflect.TypeFor[int8](),
	"float64": reflect.TypeFor[float64](),
	"double":  reflect.TypeFor[float64](),
	"float32": reflect.TypeFor[float32](),
	"float":   reflect.TypeFor[float32](),
	"bool":    reflect.TypeFor[bool](),
	"char":    reflect.TypeFor[command.Char](),
}

// Document is the root of a definition file.
type Document struct {
	Requires string       `yaml:"requires"`
	Commands []CommandDef `yaml:"commands"`
}

// CommandDef declares a command node.
type CommandDef struct {
	Name        string          `yaml:"name"`
	Aliases     []string        `yaml:"aliases"`
	Description string          `yaml:"description"`
	Executables []ExecutableDef `yaml:"executables"`
	Subcommands []CommandDef    `yaml:"subcommands"`
}

// ExecutableDef declares one overload. No aliases makes it the command's main executable.
type ExecutableDef struct {
	Aliases     []string   `yaml:"aliases"`
	Description string     `yaml:"description"`
	Greedy      bool       `yaml:"greedy"`
	Action      string     `yaml:"action"`
	Template    string     `yaml:"template"`
	Params      []ParamDef `yaml:"params"`
}

// ParamDef declares a parameter. Type is a scalar name ("int", "string", "char", ...) or a
// slice of one ("[]int").
type ParamDef struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Type        string `yaml:"type"`
	Arity       int    `yaml:"arity"`
}

// TemplateData is the value a template action renders.
type TemplateData struct {
	Command string
	Args    []any
	Named   map[string]any
}

// Loader reads definition files.
type Loader struct {
	version string
	logger  *zap.Logger
}

// NewLoader creates a loader enforcing `requires` against version. A nil logger disables logging.
func NewLoader(version string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{version: version, logger: logger}
}

// LoadFile reads, validates and decodes a definition file.
//
// #nosec G304
func (loader *Loader) LoadFile(path string) (Document, error) {
	content, readError := os.ReadFile(path)
	if readError != nil {
		return Document{}, fmt.Errorf("read definitions %s: %w", path, readError)
	}
	document, parseError := loader.Parse(content)
	if parseError != nil {
		return Document{}, fmt.Errorf("load definitions %s: %w", path, parseError)
	}
	return document, nil
}

// Parse validates and decodes definition content.
func (loader *Loader) Parse(content []byte) (Document, error) {
	if err := validateDocument(content); err != nil {
		return Document{}, err
	}
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	var document Document
	if err := decoder.Decode(&document); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	if document.Requires != "" {
		satisfied, versionError := utils.VersionSatisfies(loader.version, document.Requires)
		if versionError != nil {
			return Document{}, fmt.Errorf("%w: %v", ErrInvalidDefinition, versionError)
		}
		if !satisfied {
			return Document{}, fmt.Errorf("%w: %s needed, running %s", ErrUnsupportedVersion, document.Requires, loader.version)
		}
	}
	return document, nil
}

// RegisterFiles loads every file and registers its commands with manager.
func (loader *Loader) RegisterFiles(manager *command.Manager, paths []string) error {
	for _, path := range paths {
		document, loadError := loader.LoadFile(path)
		if loadError != nil {
			return loadError
		}
		builders, buildError := Builders(document)
		if buildError != nil {
			return fmt.Errorf("build definitions %s: %w", path, buildError)
		}
		for _, builder := range builders {
			accepted, createError := manager.Create(builder)
			if createError != nil {
				return fmt.Errorf("register definitions %s: %w", path, createError)
			}
			if !accepted {
				return fmt.Errorf("register definitions %s: %w", path, command.ErrUnsupportedSource)
			}
		}
		loader.logger.Debug(definitionsLoadedLog, zap.String(pathField, path), zap.Int(commandCountField, len(builders)))
	}
	return nil
}

// Builders converts a document into command builders, one per top-level command.
func Builders(document Document) ([]*command.CommandBuilder, error) {
	builders := make([]*command.CommandBuilder, 0, len(document.Commands))
	for _, definition := range document.Commands {
		builder, buildError := commandBuilder(definition)
		if buildError != nil {
			return nil, buildError
		}
		builders = append(builders, builder)
	}
	return builders, nil
}

func commandBuilder(definition CommandDef) (*command.CommandBuilder, error) {
	aliases := append([]string{definition.Name}, definition.Aliases...)
	builder := command.NewBuilder(aliases...).Description(definition.Description)
	for _, executableDefinition := range definition.Executables {
		executable, buildError := executableBuilder(definition.Name, executableDefinition)
		if buildError != nil {
			return nil, buildError
		}
		builder.Then(executable)
	}
	for _, subcommandDefinition := range definition.Subcommands {
		subcommand, buildError := commandBuilder(subcommandDefinition)
		if buildError != nil {
			return nil, buildError
		}
		builder.Subcommand(subcommand)
	}
	return builder, nil
}

func executableBuilder(commandName string, definition ExecutableDef) (*command.ExecutableBuilder, error) {
	params := make([]*command.ParamBuilder, 0, len(definition.Params))
	names := make([]string, 0, len(definition.Params))
	for _, paramDefinition := range definition.Params {
		parameterType, typeError := resolveType(paramDefinition.Type)
		if typeError != nil {
			return nil, fmt.Errorf("%s parameter %q: %w", commandName, paramDefinition.Name, typeError)
		}
		param := command.ArgOf(paramDefinition.Name, parameterType).Describe(paramDefinition.Description)
		if paramDefinition.Arity > 0 {
			param.Arity(paramDefinition.Arity)
		}
		params = append(params, param)
		names = append(names, paramDefinition.Name)
	}

	handler, handlerError := actionHandler(commandName, names, definition)
	if handlerError != nil {
		return nil, handlerError
	}
	executable := command.Runs(definition.Aliases...).
		Description(definition.Description).
		With(params...).
		Does(handler)
	if definition.Greedy {
		executable.Greedy()
	}
	return executable, nil
}

func resolveType(name string) (reflect.Type, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if elementName, isSlice := strings.CutPrefix(normalized, sliceTypePrefix); isSlice {
		elementType, elementError := resolveType(elementName)
		if elementError != nil {
			return nil, elementError
		}
		return reflect.SliceOf(elementType), nil
	}
	scalarType, found := scalarTypes[normalized]
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	return scalarType, nil
}

func actionHandler(commandName string, names []string, definition ExecutableDef) (command.Handler, error) {
	switch definition.Action {
	case ActionEcho:
		return echoHandler, nil
	case ActionTemplate:
		parsed, parseError := template.New(commandName).Option(templateMissingKeyError).Parse(definition.Template)
		if parseError != nil {
			return nil, fmt.Errorf("%s template: %w", commandName, parseError)
		}
		return templateHandler(commandName, names, parsed), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, definition.Action)
	}
}

func echoHandler(arguments []any) (any, error) {
	rendered := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		rendered = append(rendered, renderArgument(argument))
	}
	return strings.Join(rendered, echoSeparator), nil
}

func renderArgument(argument any) string {
	value := reflect.ValueOf(argument)
	if value.Kind() != reflect.Slice {
		return fmt.Sprint(argument)
	}
	elements := make([]string, 0, value.Len())
	for index := 0; index < value.Len(); index++ {
		elements = append(elements, fmt.Sprint(value.Index(index).Interface()))
	}
	return strings.Join(elements, echoSeparator)
}

func templateHandler(commandName string, names []string, parsed *template.Template) command.Handler {
	return func(arguments []any) (any, error) {
		data := TemplateData{Command: commandName, Args: arguments, Named: make(map[string]any, len(names))}
		for index, name := range names {
			if index < len(arguments) {
				data.Named[name] = arguments[index]
			}
		}
		var output strings.Builder
		if err := parsed.Execute(&output, data); err != nil {
			return nil, err
		}
		return output.String(), nil
	}
}
