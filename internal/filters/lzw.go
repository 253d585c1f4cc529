package filters

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/image/tiff/lzw"
)

// LZWDecode decompresses LZW data. PDF's default EarlyChange of 1 matches
// the TIFF flavour of LZW; streams that set /EarlyChange 0 are rejected.
// Predictors are applied the same way as for FlateDecode.
func LZWDecode(data []byte, params Params) ([]byte, error) {
	if params.Int("EarlyChange", 1) != 1 {
		return nil, fmt.Errorf("LZWDecode with /EarlyChange 0 is not supported")
	}

	r := lzw.NewReader(bytes.NewReader(data), lzw.MSB, 8)
	defer r.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, fmt.Errorf("lzw decompression failed: %w", err)
	}

	out, err := newPredictor(params).undo(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("predictor failed: %w", err)
	}
	return out, nil
}
