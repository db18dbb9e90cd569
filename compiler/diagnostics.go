package compiler

import (
	"fmt"
	"strings"

	"github.com/llehouerou/gqlselect/selection"
)

// Code classifies a compile diagnostic.
type Code string

const (
	// ScopeViolation: a reference to captured instance state or to a
	// symbol that is not in scope.
	ScopeViolation Code = "ScopeViolation"
	// VariableExpected: an object creation where a variable was required.
	VariableExpected Code = "VariableExpected"
	// OpenSelection: a selector returning its bare parameter.
	OpenSelection Code = "OpenSelection"
	// UnresolvedMember: a member that is neither a field selector nor a
	// fragment.
	UnresolvedMember Code = "UnresolvedMember"
	// InvalidUnionNarrowing: a narrowing to a type that cannot appear at
	// that position.
	InvalidUnionNarrowing Code = "InvalidUnionNarrowing"
	// FragmentWithoutSource: a fragment with neither a body nor a template.
	FragmentWithoutSource Code = "FragmentWithoutSource"
	// MissingRequiredArgument: a non-null field argument left out.
	MissingRequiredArgument Code = "MissingRequiredArgument"
	// VariableConflict: two symbols mapping onto one variable name, or one
	// symbol used with incompatible types.
	VariableConflict Code = "VariableConflict"
	// InvalidEnumValue: an enum member the schema does not list.
	InvalidEnumValue Code = "InvalidEnumValue"
)

// Diagnostic is a compile error located at a node.
type Diagnostic struct {
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Kind    selection.Kind `json:"kind"`
	Pos     selection.Pos  `json:"pos"`
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s at %s (%s): %s", d.Code, d.Pos, d.Kind, d.Message)
}

// Diagnostics is the list of errors of one compilation.
type Diagnostics []*Diagnostic

// Error implements the error interface.
func (ds Diagnostics) Error() string {
	switch len(ds) {
	case 0:
		return "no diagnostics"
	case 1:
		return ds[0].Error()
	}
	msgs := make([]string, len(ds))
	for i, d := range ds {
		msgs[i] = d.Error()
	}
	return fmt.Sprintf("%d errors: %s", len(ds), strings.Join(msgs, "; "))
}

// Has reports whether any diagnostic carries code.
func (ds Diagnostics) Has(code Code) bool {
	for _, d := range ds {
		if d.Code == code {
			return true
		}
	}
	return false
}

// Codes lists the codes in report order.
func (ds Diagnostics) Codes() []Code {
	out := make([]Code, len(ds))
	for i, d := range ds {
		out[i] = d.Code
	}
	return out
}
