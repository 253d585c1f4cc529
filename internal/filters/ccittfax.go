package filters

import (
	"bytes"
	"errors"
	"io"

	"golang.org/x/image/ccitt"
)

// faxParams are the CCITTFaxDecode entries of /DecodeParms.
type faxParams struct {
	k        int // <0 Group 4, 0 Group 3 1-D, >0 mixed Group 3
	columns  int
	rows     int // 0 when unknown
	align    bool
	blackIs1 bool
}

func newFaxParams(p Params) faxParams {
	return faxParams{
		k:        p.Int("K", 0),
		columns:  p.Int("Columns", 1728),
		rows:     p.Int("Rows", 0),
		align:    p.Bool("EncodedByteAlign", false),
		blackIs1: p.Bool("BlackIs1", false),
	}
}

// CCITTFaxDecode decodes Group 3 one-dimensional and Group 4 fax data into
// packed 1-bit rows. Mixed one- and two-dimensional Group 3 (K > 0) is not
// supported.
func CCITTFaxDecode(data []byte, params Params) ([]byte, error) {
	fp := newFaxParams(params)
	if fp.k > 0 {
		return nil, errors.New("CCITTFaxDecode: mixed 1-D/2-D Group 3 (K > 0) is not supported")
	}
	if fp.columns <= 0 {
		return nil, errors.New("CCITTFaxDecode: /Columns must be positive")
	}

	format := ccitt.Group3
	if fp.k < 0 {
		format = ccitt.Group4
	}
	rows := fp.rows
	if rows <= 0 {
		rows = ccitt.AutoDetectHeight
	}

	r := ccitt.NewReader(bytes.NewReader(data), ccitt.MSB, format, fp.columns, rows,
		&ccitt.Options{Align: fp.align, Invert: fp.blackIs1})
	return io.ReadAll(r)
}
