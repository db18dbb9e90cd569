package tagparser

import (
	"reflect"
	"testing"
)

func TestParse_SimpleName(t *testing.T) {
	parsed := Parse("avatar")

	if parsed.Name != "avatar" {
		t.Errorf("expected Name 'avatar', got '%s'", parsed.Name)
	}
	if parsed.Skip {
		t.Error("expected Skip to be false")
	}
	if parsed.OmitEmpty {
		t.Error("expected OmitEmpty to be false")
	}
}

func TestParse_WithOptions(t *testing.T) {
	parsed := Parse("avatar,omitempty")

	if parsed.Name != "avatar" {
		t.Errorf("expected Name 'avatar', got '%s'", parsed.Name)
	}
	if !parsed.OmitEmpty {
		t.Error("expected OmitEmpty to be true")
	}
}

func TestParse_OptionsOnly(t *testing.T) {
	parsed := Parse(",omitempty")

	if parsed.Name != "" {
		t.Errorf("expected empty Name, got '%s'", parsed.Name)
	}
	if !parsed.OmitEmpty {
		t.Error("expected OmitEmpty to be true")
	}
}

func TestParse_Skip(t *testing.T) {
	parsed := Parse("-")

	if !parsed.Skip {
		t.Error("expected Skip to be true")
	}
}

func TestParse_WithWhitespace(t *testing.T) {
	parsed := Parse("  users , omitempty ")

	if parsed.Name != "users" {
		t.Errorf("expected Name 'users', got '%s'", parsed.Name)
	}
	if !parsed.OmitEmpty {
		t.Error("expected OmitEmpty to be true")
	}
}

func TestParse_EmptyString(t *testing.T) {
	parsed := Parse("")

	if parsed != (ParsedTag{}) {
		t.Errorf("expected zero value, got %+v", parsed)
	}
}

func TestMemberName(t *testing.T) {
	type input struct {
		Plain    string
		JSON     string `json:"jsonName,omitempty"`
		GraphQL  string `graphql:"gqlName" json:"ignored"`
		Skipped  string `json:"-"`
		OnlyOpts string `json:",omitempty"`
		hidden   string
	}
	typ := reflect.TypeOf(input{})

	tests := []struct {
		field  string
		want   string
		wantOK bool
	}{
		{field: "Plain", want: "Plain", wantOK: true},
		{field: "JSON", want: "jsonName", wantOK: true},
		{field: "GraphQL", want: "gqlName", wantOK: true},
		{field: "Skipped", want: "", wantOK: false},
		{field: "OnlyOpts", want: "OnlyOpts", wantOK: true},
		{field: "hidden", want: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			f, _ := typ.FieldByName(tt.field)
			got, ok := MemberName(f)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
