package filters

import "testing"

func TestLZWDecode(t *testing.T) {
	// codes 256 45 258 258 65 259 66 257 with early change
	data := []byte{0x80, 0x0B, 0x60, 0x50, 0x22, 0x0C, 0x0C, 0x85, 0x01}

	got, err := LZWDecode(data, nil)
	if err != nil {
		t.Fatalf("LZWDecode error = %v", err)
	}
	if string(got) != "-----A---B" {
		t.Errorf("LZWDecode = %q", got)
	}
}

func TestLZWDecodeEarlyChangeZero(t *testing.T) {
	if _, err := LZWDecode([]byte{0x80}, Params{"EarlyChange": 0}); err == nil {
		t.Error("expected an error for /EarlyChange 0")
	}
}
