package resolver

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tsawler/pdfreveal/core"
)

type objects map[int]core.Object

func (o objects) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	obj, ok := o[ref.Number]
	if !ok {
		return nil, fmt.Errorf("object %d not found", ref.Number)
	}
	return obj, nil
}

func ref(n int) core.IndirectRef { return core.IndirectRef{Number: n} }

func TestResolve(t *testing.T) {
	store := objects{
		1: core.Int(42),
		2: ref(1),
		3: core.Dict{"Inner": ref(1)},
	}
	tests := []struct {
		name string
		in   core.Object
		want core.Object
	}{
		{"direct", core.Name("X"), core.Name("X")},
		{"reference", ref(1), core.Int(42)},
		{"chain", ref(2), core.Int(42)},
		{"shallow dict", ref(3), core.Dict{"Inner": ref(1)}},
		{"array untouched", core.Array{ref(1)}, core.Array{ref(1)}},
	}

	r := NewResolver(store)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveDeep(t *testing.T) {
	store := objects{
		1: core.Real(0.5),
		2: core.Array{ref(1), core.Dict{"K": ref(1)}},
		3: core.Dict{"Shared": ref(1), "Again": ref(1)},
	}
	in := core.Dict{
		"A":      ref(2),
		"B":      ref(3),
		"Direct": core.Int(7),
	}
	want := core.Dict{
		"A":      core.Array{core.Real(0.5), core.Dict{"K": core.Real(0.5)}},
		"B":      core.Dict{"Shared": core.Real(0.5), "Again": core.Real(0.5)},
		"Direct": core.Int(7),
	}

	got, err := NewResolver(store).ResolveDict(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if in["A"] != ref(2) {
		t.Error("input was modified")
	}
}

func TestResolveDeepStream(t *testing.T) {
	store := objects{1: core.Int(3)}
	stream := &core.Stream{Dict: core.Dict{"Length": ref(1)}, Data: []byte("abc")}

	got, err := NewResolver(store).ResolveDeep(stream)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := got.(*core.Stream)
	if s == stream {
		t.Fatal("expected a copy of the stream")
	}
	if n, _ := s.Dict.GetInt("Length"); n != 3 {
		t.Errorf("Length = %d, want 3", n)
	}
	if string(s.Data) != "abc" {
		t.Errorf("data = %q", s.Data)
	}
}

func TestResolveErrors(t *testing.T) {
	store := objects{
		1: ref(2),
		2: ref(1),
		3: core.Dict{"Self": ref(3)},
	}
	tests := []struct {
		name string
		deep bool
		in   core.Object
		want string
	}{
		{"chain cycle", false, ref(1), "circular reference"},
		{"dict cycle", true, ref(3), "circular reference"},
		{"missing", false, ref(9), "object 9 not found"},
		{"missing nested", true, core.Array{core.Int(1), ref(9)}, "array element 1"},
	}

	r := NewResolver(store)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.deep {
				_, err = r.ResolveDeep(tt.in)
			} else {
				_, err = r.Resolve(tt.in)
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestMaxDepth(t *testing.T) {
	store := objects{}
	for i := 1; i < 10; i++ {
		store[i] = ref(i + 1)
	}
	store[10] = core.Null{}

	if _, err := NewResolver(store).Resolve(ref(1)); err != nil {
		t.Fatalf("default depth: unexpected error: %v", err)
	}
	_, err := NewResolver(store, WithMaxDepth(5)).Resolve(ref(1))
	if err == nil || !strings.Contains(err.Error(), "maximum recursion depth (5)") {
		t.Errorf("error = %v", err)
	}
}
