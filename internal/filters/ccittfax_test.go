package filters

import "testing"

func TestFaxParams(t *testing.T) {
	defaults := newFaxParams(nil)
	if defaults != (faxParams{columns: 1728}) {
		t.Errorf("defaults = %+v", defaults)
	}

	fp := newFaxParams(Params{"K": -1, "Columns": 100, "Rows": 50, "BlackIs1": true, "EncodedByteAlign": true})
	want := faxParams{k: -1, columns: 100, rows: 50, align: true, blackIs1: true}
	if fp != want {
		t.Errorf("newFaxParams() = %+v, want %+v", fp, want)
	}
}

func TestCCITTFaxDecodeRejects(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{"mixed group 3", Params{"K": 4}},
		{"no columns", Params{"K": -1, "Columns": 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CCITTFaxDecode([]byte{0xFF}, tt.params); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
