package core

import (
	"bufio"
	"fmt"
	"io"
	"sort"
)

// countingWriter tracks the number of bytes written so object offsets can
// be recorded for the cross-reference table.
type countingWriter struct {
	w *bufio.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// DocumentWriter writes a complete PDF file: header, every object as a
// top-level indirect object, a classic xref table, trailer and startxref.
// Object streams and xref streams are never produced.
type DocumentWriter struct {
	version string
	objects map[int]*IndirectObject
	trailer Dict
}

// NewDocumentWriter creates a writer emitting the given header version,
// e.g. "1.7".
func NewDocumentWriter(version string) *DocumentWriter {
	if version == "" {
		version = "1.7"
	}
	return &DocumentWriter{version: version, objects: make(map[int]*IndirectObject)}
}

// Add registers an object under ref. Adding the same number twice replaces
// the earlier object.
func (d *DocumentWriter) Add(ref IndirectRef, obj Object) {
	d.objects[ref.Number] = &IndirectObject{Ref: ref, Object: obj}
}

// Len returns the number of registered objects.
func (d *DocumentWriter) Len() int {
	return len(d.objects)
}

// WriteTo writes the document. The trailer set with SetTrailer supplies
// /Root, /Info and /ID; /Size is computed.
func (d *DocumentWriter) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	cw := &countingWriter{w: bw}

	// binary comment marks the file as containing 8-bit data
	fmt.Fprintf(cw, "%%PDF-%s\n%%\xe2\xe3\xcf\xd3\n", d.version)

	nums := make([]int, 0, len(d.objects))
	for num := range d.objects {
		nums = append(nums, num)
	}
	sort.Ints(nums)

	offsets := make(map[int]int64, len(nums))
	for _, num := range nums {
		obj := d.objects[num]
		offsets[num] = cw.n
		fmt.Fprintf(cw, "%d %d obj\n", obj.Ref.Number, obj.Ref.Generation)
		body, err := Serialize(obj.Object)
		if err != nil {
			return cw.n, fmt.Errorf("object %d: %w", num, err)
		}
		cw.Write(body)
		io.WriteString(cw, "\nendobj\n")
	}

	size := 1
	if len(nums) > 0 {
		size = nums[len(nums)-1] + 1
	}

	xrefOffset := cw.n
	fmt.Fprintf(cw, "xref\n0 %d\n", size)
	d.writeEntries(cw, size, offsets)

	out := d.trailer.Clone()
	out.Set("Size", Int(size))
	io.WriteString(cw, "trailer\n")
	body, err := Serialize(out)
	if err != nil {
		return cw.n, fmt.Errorf("trailer: %w", err)
	}
	cw.Write(body)
	fmt.Fprintf(cw, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset)

	if err := bw.Flush(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

func (d *DocumentWriter) writeEntries(w io.Writer, size int, offsets map[int]int64) {
	// free entries form a linked list headed by object 0
	var free []int
	for num := 1; num < size; num++ {
		if _, ok := offsets[num]; !ok {
			free = append(free, num)
		}
	}
	next := func(i int) int {
		if i < len(free) {
			return free[i]
		}
		return 0
	}

	fmt.Fprintf(w, "%010d 65535 f \n", next(0))
	freeIdx := 0
	for num := 1; num < size; num++ {
		if off, ok := offsets[num]; ok {
			fmt.Fprintf(w, "%010d %05d n \n", off, d.objects[num].Ref.Generation)
			continue
		}
		freeIdx++
		fmt.Fprintf(w, "%010d 00001 f \n", next(freeIdx))
	}
}

// SetTrailer sets the trailer entries to carry over. Keys that only make
// sense for the source file's cross-reference layout are dropped.
func (d *DocumentWriter) SetTrailer(trailer Dict) {
	d.trailer = make(Dict, len(trailer))
	for k, v := range trailer {
		switch k {
		case "Size", "Prev", "XRefStm", "Length", "Filter", "DecodeParms", "W", "Index", "Type":
			continue
		}
		d.trailer[k] = v
	}
}
