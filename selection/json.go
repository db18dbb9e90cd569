package selection

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/llehouerou/gqlselect/schema"
)

// envelope is the wire shape of every node: a kind tag plus the union of
// all variant fields.
type envelope struct {
	Kind        Kind            `json:"kind"`
	Pos         *Pos            `json:"pos,omitempty"`
	Receiver    string          `json:"receiver,omitempty"`
	Field       string          `json:"field,omitempty"`
	Fragment    string          `json:"fragment,omitempty"`
	Method      string          `json:"method,omitempty"`
	Symbol      SymbolKind      `json:"symbol,omitempty"`
	Name        string          `json:"name,omitempty"`
	Member      string          `json:"member,omitempty"`
	Type        *schema.TypeRef `json:"type,omitempty"`
	TypeName    string          `json:"typeName,omitempty"`
	LiteralKind LiteralKind     `json:"literalKind,omitempty"`
	Text        *string         `json:"text,omitempty"`
	Candidate   string          `json:"candidate,omitempty"`
	Parameter   string          `json:"parameter,omitempty"`
	Arguments   []argEnvelope   `json:"arguments,omitempty"`
	Values      []*envelope     `json:"values,omitempty"`
	Members     []*envelope     `json:"members,omitempty"`
	Selection   *envelope       `json:"selection,omitempty"`
	Body        *envelope       `json:"body,omitempty"`
}

type argEnvelope struct {
	Name  string    `json:"name,omitempty"`
	Value *envelope `json:"value"`
}

func posPtr(p Pos) *Pos {
	if p == (Pos{}) {
		return nil
	}
	return &p
}

func encode(n Node) (*envelope, error) {
	if n == nil {
		return nil, nil
	}
	e := &envelope{Kind: n.Kind(), Pos: posPtr(n.Position())}
	var err error
	switch n := n.(type) {
	case *FieldAccess:
		e.Receiver, e.Field = n.Receiver, n.Field
	case *FieldSelectorCall:
		e.Receiver, e.Field = n.Receiver, n.Field
		for _, a := range n.Arguments {
			v, err := encode(a.Value)
			if err != nil {
				return nil, err
			}
			e.Arguments = append(e.Arguments, argEnvelope{Name: a.Name, Value: v})
		}
		if n.Selection != nil {
			if e.Selection, err = encode(n.Selection); err != nil {
				return nil, err
			}
		}
	case *FragmentCall:
		e.Receiver, e.Fragment = n.Receiver, n.Fragment
		if e.Values, err = encodeList(n.Arguments); err != nil {
			return nil, err
		}
	case *ObjectConstruction:
		if e.Members, err = encodeList(n.Members); err != nil {
			return nil, err
		}
	case *VariableReference:
		e.Symbol, e.Name, e.Member, e.Type = n.Symbol, n.Name, n.Member, n.Type
	case *Literal:
		text := n.Text
		e.LiteralKind, e.Text = n.Type, &text
	case *UnionNarrow:
		e.Receiver, e.Candidate = n.Receiver, n.Candidate
		if n.Selection != nil {
			if e.Selection, err = encode(n.Selection); err != nil {
				return nil, err
			}
		}
	case *EnumValue:
		e.TypeName, e.Member = n.Type, n.Member
	case *ObjectCreation:
		e.TypeName = n.Type
		if e.Members, err = encodeList(n.Members); err != nil {
			return nil, err
		}
	case *Invocation:
		e.Receiver, e.Method = n.Receiver, n.Method
		if e.Values, err = encodeList(n.Arguments); err != nil {
			return nil, err
		}
	case *Selector:
		e.Parameter = n.Parameter
		if e.Body, err = encode(n.Body); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("cannot encode node %T", n)
	}
	return e, nil
}

func encodeList(nodes []Node) ([]*envelope, error) {
	out := make([]*envelope, 0, len(nodes))
	for _, n := range nodes {
		e, err := encode(n)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func decode(e *envelope) (Node, error) {
	if e == nil {
		return nil, nil
	}
	var pos Pos
	if e.Pos != nil {
		pos = *e.Pos
	}
	switch e.Kind {
	case KindFieldAccess:
		return &FieldAccess{Pos: pos, Receiver: e.Receiver, Field: e.Field}, nil
	case KindFieldSelectorCall:
		n := &FieldSelectorCall{Pos: pos, Receiver: e.Receiver, Field: e.Field}
		for _, a := range e.Arguments {
			v, err := decode(a.Value)
			if err != nil {
				return nil, err
			}
			n.Arguments = append(n.Arguments, Argument{Name: a.Name, Value: v})
		}
		sel, err := decodeSelector(e.Selection)
		if err != nil {
			return nil, err
		}
		n.Selection = sel
		return n, nil
	case KindFragmentCall:
		args, err := decodeList(e.Values)
		if err != nil {
			return nil, err
		}
		return &FragmentCall{Pos: pos, Receiver: e.Receiver, Fragment: e.Fragment, Arguments: args}, nil
	case KindObjectConstruction:
		members, err := decodeList(e.Members)
		if err != nil {
			return nil, err
		}
		return &ObjectConstruction{Pos: pos, Members: members}, nil
	case KindVariableReference:
		return &VariableReference{Pos: pos, Symbol: e.Symbol, Name: e.Name, Member: e.Member, Type: e.Type}, nil
	case KindLiteral:
		n := &Literal{Pos: pos, Type: e.LiteralKind}
		if e.Text != nil {
			n.Text = *e.Text
		}
		return n, nil
	case KindUnionNarrow:
		sel, err := decodeSelector(e.Selection)
		if err != nil {
			return nil, err
		}
		return &UnionNarrow{Pos: pos, Receiver: e.Receiver, Candidate: e.Candidate, Selection: sel}, nil
	case KindEnumValue:
		return &EnumValue{Pos: pos, Type: e.TypeName, Member: e.Member}, nil
	case KindObjectCreation:
		members, err := decodeList(e.Members)
		if err != nil {
			return nil, err
		}
		return &ObjectCreation{Pos: pos, Type: e.TypeName, Members: members}, nil
	case KindInvocation:
		args, err := decodeList(e.Values)
		if err != nil {
			return nil, err
		}
		return &Invocation{Pos: pos, Receiver: e.Receiver, Method: e.Method, Arguments: args}, nil
	case KindSelector:
		body, err := decode(e.Body)
		if err != nil {
			return nil, err
		}
		return &Selector{Pos: pos, Parameter: e.Parameter, Body: body}, nil
	}
	return nil, fmt.Errorf("unknown node kind %q", e.Kind)
}

func decodeSelector(e *envelope) (*Selector, error) {
	if e == nil {
		return nil, nil
	}
	if e.Kind != KindSelector {
		return nil, fmt.Errorf("expected %s, got %q", KindSelector, e.Kind)
	}
	n, err := decode(e)
	if err != nil {
		return nil, err
	}
	return n.(*Selector), nil
}

func decodeList(es []*envelope) ([]Node, error) {
	out := make([]Node, 0, len(es))
	for _, e := range es {
		n, err := decode(e)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// MarshalNode encodes a node as JSON.
func MarshalNode(n Node) ([]byte, error) {
	e, err := encode(n)
	if err != nil {
		return nil, err
	}
	return json.Marshal(e)
}

// UnmarshalNode decodes a node from JSON.
func UnmarshalNode(data []byte) (Node, error) {
	var e envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode selection node: %w", err)
	}
	return decode(&e)
}

type rootEnvelope struct {
	Operation          OperationKind              `json:"operation,omitempty"`
	ArgumentsParameter string                     `json:"argumentsParameter,omitempty"`
	Parameter          string                     `json:"parameter"`
	Locals             map[string]*schema.TypeRef `json:"locals,omitempty"`
	Source             string                     `json:"source,omitempty"`
	Body               *envelope                  `json:"body"`
}

// MarshalJSON implements json.Marshaler.
func (r *Root) MarshalJSON() ([]byte, error) {
	body, err := encode(r.Body)
	if err != nil {
		return nil, err
	}
	return json.Marshal(rootEnvelope{
		Operation:          r.Operation,
		ArgumentsParameter: r.ArgumentsParameter,
		Parameter:          r.Parameter,
		Locals:             r.Locals,
		Source:             r.Source,
		Body:               body,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Root) UnmarshalJSON(data []byte) error {
	var e rootEnvelope
	if err := json.Unmarshal(data, &e); err != nil {
		return err
	}
	body, err := decode(e.Body)
	if err != nil {
		return err
	}
	*r = Root{
		Operation:          e.Operation,
		ArgumentsParameter: e.ArgumentsParameter,
		Parameter:          e.Parameter,
		Locals:             e.Locals,
		Source:             e.Source,
		Body:               body,
	}
	return nil
}

type fragmentEnvelope struct {
	ID            string    `json:"id"`
	RootParameter string    `json:"rootParameter,omitempty"`
	Parameters    []string  `json:"parameters,omitempty"`
	Body          *envelope `json:"body,omitempty"`
	Template      string    `json:"template,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (f *Fragment) MarshalJSON() ([]byte, error) {
	body, err := encode(f.Body)
	if err != nil {
		return nil, err
	}
	return json.Marshal(fragmentEnvelope{
		ID:            f.ID,
		RootParameter: f.RootParameter,
		Parameters:    f.Parameters,
		Body:          body,
		Template:      f.Template,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Fragment) UnmarshalJSON(data []byte) error {
	var e fragmentEnvelope
	if err := json.Unmarshal(data, &e); err != nil {
		return err
	}
	body, err := decode(e.Body)
	if err != nil {
		return err
	}
	*f = Fragment{
		ID:            e.ID,
		RootParameter: e.RootParameter,
		Parameters:    e.Parameters,
		Body:          body,
		Template:      e.Template,
	}
	return nil
}

// Bundle is the unit exchanged with out-of-process front ends: named
// selections plus the fragments they reference.
type Bundle struct {
	Operations map[string]*Root `json:"operations"`
	Fragments  []*Fragment      `json:"fragments,omitempty"`
}

// FragmentSet indexes the bundle's fragments.
func (b *Bundle) FragmentSet() Fragments {
	fs := make(Fragments, len(b.Fragments))
	for _, f := range b.Fragments {
		fs.Add(f)
	}
	return fs
}

// Key returns the normalized cache key of r: its whitespace-collapsed
// source text when the front end supplied one, otherwise its canonical
// JSON encoding.
func Key(r *Root) (string, error) {
	if r.Source != "" {
		return strings.Join(strings.Fields(r.Source), " "), nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("selection key: %w", err)
	}
	return string(data), nil
}
