package contentstream

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tsawler/pdfreveal/core"
)

func TestEncode(t *testing.T) {
	ops := []Operation{
		{Operator: "q"},
		NewOperation("rg", core.Int(0), core.Int(0), core.Int(1)),
		NewOperation("Tf", core.Name("F1"), core.Real(9.5)),
		NewOperation("TJ", core.Array{core.String("a(b"), core.Int(-50)}),
		{Operator: "Q"},
	}

	got, err := Encode(ops)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := "q\n0 0 1 rg\n/F1 9.5 Tf\n[(a\\(b) -50] TJ\nQ\n"
	if string(got) != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	input := "q 1 0 0 1 10 20 cm /GS0 gs 0.5 g BT /F1 12 Tf 72 700 Td (Hi\\)) Tj ET " +
		"BI /W 1 /H 1 /BPC 8 /CS /G ID \x7f EI 0 0 10 10 re f* Q"

	first, err := Decode([]byte(input))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	encoded, err := Encode(first)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	second, err := Decode(encoded)
	if err != nil {
		t.Fatalf("re-Decode failed: %v\n%s", err, encoded)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("round trip changed operations (-first +second):\n%s", diff)
	}
}

func TestEncodeErrors(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
	}{
		{"empty operator", Operation{}},
		{"operator with space", Operation{Operator: "r g"}},
		{"indirect operand", NewOperation("gs", core.IndirectRef{Number: 3})},
		{"nested stream", NewOperation("TJ", core.Array{&core.Stream{}})},
		{"inline image without dict", Operation{Operator: "BI"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode([]Operation{{Operator: "q"}, tt.op})
			var encodeErr *core.EncodeError
			if !errors.As(err, &encodeErr) {
				t.Fatalf("expected *core.EncodeError, got %v", err)
			}
			if encodeErr.Index != 1 {
				t.Errorf("Index = %d, want 1", encodeErr.Index)
			}
		})
	}
}

func TestOperationAccessors(t *testing.T) {
	op := NewOperation("Tf", core.Name("F2"), core.Real(11))

	if name, ok := op.Name(0); !ok || name != "F2" {
		t.Errorf("Name(0) = %q, %v", name, ok)
	}
	if size, ok := op.Number(1); !ok || size != 11 {
		t.Errorf("Number(1) = %v, %v", size, ok)
	}
	if n, ok := op.Int(1); !ok || n != 11 {
		t.Errorf("Int(1) = %v, %v", n, ok)
	}
	if _, ok := op.Numbers(); ok {
		t.Error("Numbers should fail with a name operand")
	}
	if _, ok := op.Number(5); ok {
		t.Error("Number out of range should fail")
	}
	if got := op.String(); got != "/F2 11 Tf" {
		t.Errorf("String() = %q", got)
	}
}
