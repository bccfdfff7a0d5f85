package validation

import (
	"errors"
	"testing"
)

type sample struct {
	Name    string   `validate:"required,name"`
	Agents  int      `validate:"gte=1"`
	Turns   int      `validate:"gt=0"`
	Policy  string   `validate:"omitempty,oneof=right-hand greedy random"`
	Starts  []string `validate:"dive,name"`
	Workers int      `validate:"gte=0,lte=64"`
}

func TestStruct(t *testing.T) {
	valid := sample{Name: "five-cycle", Agents: 2, Turns: 20, Starts: []string{"A", "C"}}

	tests := []struct {
		name      string
		mutate    func(*sample)
		wantField string
		wantRule  string
	}{
		{"valid", func(*sample) {}, "", ""},
		{"missing name", func(s *sample) { s.Name = "" }, "sample.Name", "required"},
		{"bad name", func(s *sample) { s.Name = "five cycle" }, "sample.Name", "name"},
		{"no agents", func(s *sample) { s.Agents = 0 }, "sample.Agents", "gte"},
		{"zero turns", func(s *sample) { s.Turns = 0 }, "sample.Turns", "gt"},
		{"unknown policy", func(s *sample) { s.Policy = "spiral" }, "sample.Policy", "oneof"},
		{"bad start", func(s *sample) { s.Starts = []string{"A", "C D"} }, "sample.Starts[1]", "name"},
		{"too many workers", func(s *sample) { s.Workers = 65 }, "sample.Workers", "lte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := Struct(&s)
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			var fe *FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("Expected *FieldError, got %v", err)
			}
			if fe.Field != tt.wantField || fe.Rule != tt.wantRule {
				t.Errorf("Got field %s rule %s, want %s %s", fe.Field, fe.Rule, tt.wantField, tt.wantRule)
			}
		})
	}
}

func TestStruct_Nil(t *testing.T) {
	if err := Struct(nil); err == nil {
		t.Error("Expected error for nil value")
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"A", true},
		{"junction_12", true},
		{"r0c1", true},
		{"pipe:main-3.b", true},
		{"", false},
		{"has space", false},
		{"slash/name", false},
		{string(make([]byte, 65)), false},
	}

	for _, tt := range tests {
		err := ValidateName(tt.name)
		if (err == nil) != tt.valid {
			t.Errorf("ValidateName(%q) = %v, want valid=%v", tt.name, err, tt.valid)
		}
	}
}
