package core

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSerialize(t *testing.T) {
	tests := []struct {
		name string
		obj  Object
		want string
	}{
		{"null", Null{}, "null"},
		{"bool", Bool(false), "false"},
		{"int", Int(-3), "-3"},
		{"real", Real(0.25), "0.25"},
		{"whole real", Real(2), "2"},
		{"string escapes", String("a(b)\\c\n"), `(a\(b\)\\c\n)`},
		{"binary string", String("\x00\xff"), `(\000\377)`},
		{"name escapes", Name("A B#"), "/A#20B#23"},
		{"array", Array{Int(1), Name("X")}, "[1 /X]"},
		{"dict sorted", Dict{"b": Int(2), "a": Int(1)}, "<</a 1/b 2>>"},
		{"ref", IndirectRef{Number: 4, Generation: 1}, "4 1 R"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Serialize(tt.obj)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSerializeStreamSetsLength(t *testing.T) {
	got, err := Serialize(&Stream{Dict: Dict{"Length": Int(99)}, Data: []byte("abc")})
	if err != nil {
		t.Fatal(err)
	}
	want := "<</Length 3>>\nstream\nabc\nendstream"
	if string(got) != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSerializeParsesBack(t *testing.T) {
	original := Dict{
		"Type": Name("ExtGState"),
		"D":    Array{Array{Int(3), Real(1.5)}, Int(0)},
		"Odd":  String("(\\)\r\x01"),
		"N#me": Name("x y"),
		"Ref":  IndirectRef{Number: 8},
	}
	data, err := Serialize(original)
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := NewParser(strings.NewReader(string(data))).ParseObject()
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	if diff := cmp.Diff(Object(original), parsed); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
