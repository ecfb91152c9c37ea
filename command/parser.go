package command

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"
)

const (
	booleanTrueLiteral  = "true"
	booleanFalseLiteral = "false"
)

var errEmptyCharacterToken = errors.New("empty token")

// Char is the parameter type for single-character arguments. It exists so a
// character parser does not collide with the int32 parser.
type Char rune

func (character Char) String() string {
	return string(rune(character))
}

// ArgumentParser converts a raw token into a value of Type.
type ArgumentParser interface {
	Type() reflect.Type
	Parse(token string) (any, error)
	// Complete returns completion candidates for a partial token, or nil when
	// the parser has none to offer.
	Complete(partial string) []string
}

type typedParser[T any] struct {
	targetType reflect.Type
	parse      func(string) (T, error)
	complete   func(string) []string
}

// NewParser builds an ArgumentParser for T. complete may be nil.
func NewParser[T any](parse func(string) (T, error), complete func(string) []string) ArgumentParser {
	return &typedParser[T]{
		targetType: reflect.TypeFor[T](),
		parse:      parse,
		complete:   complete,
	}
}

func (parser *typedParser[T]) Type() reflect.Type {
	return parser.targetType
}

func (parser *typedParser[T]) Parse(token string) (any, error) {
	value, parseError := parser.parse(token)
	if parseError != nil {
		return nil, parseError
	}
	return value, nil
}

func (parser *typedParser[T]) Complete(partial string) []string {
	if parser.complete == nil {
		return nil
	}
	return parser.complete(partial)
}

// Registry maps target types to parsers. The zero value is empty; NewRegistry
// returns one holding the default parsers.
type Registry struct {
	mutex   sync.RWMutex
	parsers map[reflect.Type]ArgumentParser
}

// NewRegistry returns a registry populated with the default parsers.
func NewRegistry() *Registry {
	registry := &Registry{}
	for _, parser := range DefaultParsers() {
		registry.Register(parser)
	}
	return registry
}

// DefaultParsers returns fresh instances of the built-in parsers.
func DefaultParsers() []ArgumentParser {
	return []ArgumentParser{
		NewParser(func(token string) (float64, error) { return strconv.ParseFloat(token, 64) }, nil),
		NewParser(func(token string) (float32, error) {
			value, parseError := strconv.ParseFloat(token, 32)
			return float32(value), parseError
		}, nil),
		NewParser(strconv.Atoi, nil),
		NewParser(func(token string) (int64, error) { return strconv.ParseInt(token, 10, 64) }, nil),
		NewParser(func(token string) (int32, error) {
			value, parseError := strconv.ParseInt(token, 10, 32)
			return int32(value), parseError
		}, nil),
		NewParser(func(token string) (int16, error) {
			value, parseError := strconv.ParseInt(token, 10, 16)
			return int16(value), parseError
		}, nil),
		NewParser(func(token string) (int8, error) {
			value, parseError := strconv.ParseInt(token, 10, 8)
			return int8(value), parseError
		}, nil),
		NewParser(parseBoolean, completeBoolean),
		NewParser(func(token string) (string, error) { return token, nil }, nil),
		NewParser(parseCharacter, nil),
	}
}

// Register adds parser, replacing any parser previously registered for its type.
func (registry *Registry) Register(parser ArgumentParser) {
	if parser == nil || parser.Type() == nil {
		return
	}
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	if registry.parsers == nil {
		registry.parsers = make(map[reflect.Type]ArgumentParser)
	}
	registry.parsers[parser.Type()] = parser
}

// Lookup returns the parser registered for targetType.
func (registry *Registry) Lookup(targetType reflect.Type) (ArgumentParser, bool) {
	registry.mutex.RLock()
	defer registry.mutex.RUnlock()
	parser, found := registry.parsers[targetType]
	return parser, found
}

// Parse converts token to targetType using the registered parser.
func (registry *Registry) Parse(targetType reflect.Type, token string) (any, error) {
	parser, found := registry.Lookup(targetType)
	if !found {
		return nil, &ParseError{Token: token, Type: targetType, Err: ErrNoParser}
	}
	return parseWith(parser, token)
}

func parseWith(parser ArgumentParser, token string) (any, error) {
	value, parseError := parser.Parse(token)
	if parseError != nil {
		return nil, &ParseError{Token: token, Type: parser.Type(), Err: parseError}
	}
	return value, nil
}

func parseBoolean(token string) (bool, error) {
	return strings.EqualFold(token, booleanTrueLiteral), nil
}

func completeBoolean(partial string) []string {
	if partial == "" {
		return []string{booleanTrueLiteral, booleanFalseLiteral}
	}
	firstCharacter := strings.ToLower(partial[:1])
	var candidates []string
	for _, literal := range []string{booleanTrueLiteral, booleanFalseLiteral} {
		if strings.HasPrefix(literal, firstCharacter) {
			candidates = append(candidates, literal)
		}
	}
	return candidates
}

func parseCharacter(token string) (Char, error) {
	if token == "" {
		return 0, errEmptyCharacterToken
	}
	firstRune, _ := utf8.DecodeRuneInString(token)
	return Char(firstRune), nil
}
