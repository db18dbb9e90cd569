package graphql

import "github.com/llehouerou/gqlselect/compiler"

// Option configures the compiled operation.
type Option = compiler.Option

// OptionType represents the type of an option.
type OptionType = compiler.OptionType

const (
	OptionTypeOperationName      = compiler.OptionTypeOperationName
	OptionTypeOperationDirective = compiler.OptionTypeOperationDirective
)

// OperationName sets the operation name.
func OperationName(name string) Option {
	return compiler.OperationName(name)
}

// OperationDirective adds a directive to the operation, e.g. "@cached(ttl: 60)".
func OperationDirective(directive string) Option {
	return compiler.OperationDirective(directive)
}
