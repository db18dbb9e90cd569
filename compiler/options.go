package compiler

import (
	"fmt"
)

// OptionType represents the type of a compile option.
type OptionType string

const (
	OptionTypeOperationName      OptionType = "operation_name"
	OptionTypeOperationDirective OptionType = "operation_directive"
)

// Option configures the assembled operation.
type Option interface {
	// Type returns the option type.
	Type() OptionType
	// String returns the option value rendered into the operation text.
	String() string
}

type operationNameOption struct {
	name string
}

func (o operationNameOption) Type() OptionType { return OptionTypeOperationName }
func (o operationNameOption) String() string   { return o.name }

// OperationName sets the operation name.
func OperationName(name string) Option {
	return operationNameOption{name: name}
}

type operationDirectiveOption struct {
	directive string
}

func (o operationDirectiveOption) Type() OptionType { return OptionTypeOperationDirective }
func (o operationDirectiveOption) String() string   { return o.directive }

// OperationDirective adds a directive to the operation, e.g. "@cached(ttl: 60)".
func OperationDirective(directive string) Option {
	return operationDirectiveOption{directive: directive}
}

type constructOptionsOutput struct {
	operationName       string
	operationDirectives []string
}

func constructOptions(options []Option) (*constructOptionsOutput, error) {
	output := &constructOptionsOutput{}

	for _, option := range options {
		switch option.Type() {
		case OptionTypeOperationName:
			output.operationName = option.String()
		case OptionTypeOperationDirective:
			output.operationDirectives = append(
				output.operationDirectives,
				option.String(),
			)
		default:
			return nil, fmt.Errorf("invalid compile option type: %s", option.Type())
		}
	}

	return output, nil
}
