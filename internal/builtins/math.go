package builtins

import (
	"errors"

	"github.com/polyfrost/oneconfig/command"
)

var errDivisionByZero = errors.New("division by zero")

type arithmetic struct {
	name        string
	description string
	integer     func(int, int) int
	decimal     func(float64, float64) float64
}

var arithmeticOperations = []arithmetic{
	{
		name:        "add",
		description: "add two numbers",
		integer:     func(a, b int) int { return a + b },
		decimal:     func(a, b float64) float64 { return a + b },
	},
	{
		name:        "sub",
		description: "subtract b from a",
		integer:     func(a, b int) int { return a - b },
		decimal:     func(a, b float64) float64 { return a - b },
	},
	{
		name:        "mul",
		description: "multiply two numbers",
		integer:     func(a, b int) int { return a * b },
		decimal:     func(a, b float64) float64 { return a * b },
	},
}

// registerMath defines math with an integer and a decimal overload per operation. Integer
// parsing fails on "1.5", so dispatch falls through to the decimal overload.
func registerMath(manager *command.Manager, _ Options) error {
	return manager.DSL([]string{"math", "m"}, func(math *command.Scope) {
		math.Description("integer and decimal arithmetic")
		for _, operation := range arithmeticOperations {
			math.Run([]string{operation.name}, func(arguments []any) (any, error) {
				return operation.integer(arguments[0].(int), arguments[1].(int)), nil
			}, command.Arg[int]("a"), command.Arg[int]("b")).Description(operation.description)
			math.Run([]string{operation.name}, func(arguments []any) (any, error) {
				return operation.decimal(arguments[0].(float64), arguments[1].(float64)), nil
			}, command.Arg[float64]("a"), command.Arg[float64]("b"))
		}
		math.Run([]string{"div"}, func(arguments []any) (any, error) {
			divisor := arguments[1].(float64)
			if divisor == 0 {
				return nil, errDivisionByZero
			}
			return arguments[0].(float64) / divisor, nil
		}, command.Arg[float64]("a"), command.Arg[float64]("b")).Description("divide a by b")
	})
}
