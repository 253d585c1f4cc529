package reader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// headerWindow is how far into the file the %PDF- marker may appear.
const headerWindow = 1024

var headerMarker = []byte("%PDF-")

// PDFVersion is the major.minor version from the file header.
type PDFVersion struct {
	Major int
	Minor int
}

func (v PDFVersion) String() string {
	return strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor)
}

// parseHeader finds "%PDF-x.y" in the first headerWindow bytes. Junk
// before the marker is tolerated.
func (r *Reader) parseHeader() (PDFVersion, error) {
	buf := make([]byte, min(int64(headerWindow), r.fileSize))
	n, err := r.src.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return PDFVersion{}, fmt.Errorf("failed to read header: %w", err)
	}

	at := bytes.Index(buf[:n], headerMarker)
	if at < 0 {
		return PDFVersion{}, errors.New("missing %PDF- marker")
	}
	rest := buf[at+len(headerMarker) : n]

	major, rest, ok := leadingInt(rest)
	if !ok || len(rest) == 0 || rest[0] != '.' {
		return PDFVersion{}, errors.New("invalid version format")
	}
	minor, _, ok := leadingInt(rest[1:])
	if !ok {
		return PDFVersion{}, errors.New("invalid version format")
	}
	return PDFVersion{Major: major, Minor: minor}, nil
}

// leadingInt parses the decimal digits at the start of b.
func leadingInt(b []byte) (int, []byte, bool) {
	i := 0
	for i < len(b) && '0' <= b[i] && b[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, b, false
	}
	n, err := strconv.Atoi(string(b[:i]))
	return n, b[i:], err == nil
}
