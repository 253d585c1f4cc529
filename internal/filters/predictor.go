package filters

import "fmt"

// predictor undoes the row prediction named by /Predictor: 1 is none, 2 is
// TIFF predictor 2 and 10 to 15 are the PNG filters, chosen per row.
type predictor struct {
	kind    int
	colors  int
	bpc     int
	columns int
}

func newPredictor(p Params) predictor {
	return predictor{
		kind:    p.Int("Predictor", 1),
		colors:  p.Int("Colors", 1),
		bpc:     p.Int("BitsPerComponent", 8),
		columns: p.Int("Columns", 1),
	}
}

// bytesPerPixel is the distance to the byte holding the same component of
// the pixel to the left, at least 1.
func (pr predictor) bytesPerPixel() int {
	if n := (pr.colors*pr.bpc + 7) / 8; n > 1 {
		return n
	}
	return 1
}

func (pr predictor) rowBytes() int {
	return (pr.columns*pr.colors*pr.bpc + 7) / 8
}

func (pr predictor) undo(data []byte) ([]byte, error) {
	switch {
	case pr.kind <= 1:
		return data, nil
	case pr.kind == 2:
		return pr.undoTIFF(data)
	case pr.kind >= 10 && pr.kind <= 15:
		return pr.undoPNG(data)
	}
	return nil, fmt.Errorf("unsupported predictor: %d", pr.kind)
}

func (pr predictor) undoTIFF(data []byte) ([]byte, error) {
	if pr.bpc != 8 {
		return nil, fmt.Errorf("TIFF predictor 2 needs 8 bits per component, got %d", pr.bpc)
	}
	width := pr.rowBytes()
	if width <= 0 || len(data)%width != 0 {
		return nil, fmt.Errorf("data size %d is not a multiple of row size %d", len(data), width)
	}

	out := append([]byte(nil), data...)
	for start := 0; start < len(out); start += width {
		row := out[start : start+width]
		for i := pr.colors; i < len(row); i++ {
			row[i] += row[i-pr.colors]
		}
	}
	return out, nil
}

func (pr predictor) undoPNG(data []byte) ([]byte, error) {
	width := pr.rowBytes()
	stride := width + 1 // filter type byte
	if width <= 0 || len(data)%stride != 0 {
		return nil, fmt.Errorf("data size %d is not a multiple of row size %d", len(data), stride)
	}

	rows := len(data) / stride
	out := make([]byte, 0, rows*width)
	prev := make([]byte, width)
	bpp := pr.bytesPerPixel()

	for r := 0; r < rows; r++ {
		line := data[r*stride : (r+1)*stride]
		cur := append([]byte(nil), line[1:]...)
		if err := unfilterPNGRow(line[0], cur, prev, bpp); err != nil {
			return nil, fmt.Errorf("row %d: %w", r, err)
		}
		out = append(out, cur...)
		prev = cur
	}
	return out, nil
}

// unfilterPNGRow reverses one PNG filter in place. prev is the decoded row
// above, all zero for the first row.
func unfilterPNGRow(filter byte, cur, prev []byte, bpp int) error {
	switch filter {
	case 0: // None
	case 1: // Sub
		for i := bpp; i < len(cur); i++ {
			cur[i] += cur[i-bpp]
		}
	case 2: // Up
		for i := range cur {
			cur[i] += prev[i]
		}
	case 3: // Average
		for i := range cur {
			var left int
			if i >= bpp {
				left = int(cur[i-bpp])
			}
			cur[i] += byte((left + int(prev[i])) / 2)
		}
	case 4: // Paeth
		for i := range cur {
			var left, upLeft byte
			if i >= bpp {
				left, upLeft = cur[i-bpp], prev[i-bpp]
			}
			cur[i] += paeth(left, prev[i], upLeft)
		}
	default:
		return fmt.Errorf("unknown PNG filter type: %d", filter)
	}
	return nil
}

// paeth picks whichever of left, up and upLeft is closest to
// left + up - upLeft, preferring them in that order on ties.
func paeth(left, up, upLeft byte) byte {
	p := int(left) + int(up) - int(upLeft)
	pa, pb, pc := absInt(p-int(left)), absInt(p-int(up)), absInt(p-int(upLeft))
	switch {
	case pa <= pb && pa <= pc:
		return left
	case pb <= pc:
		return up
	}
	return upLeft
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
