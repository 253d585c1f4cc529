package core

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// ObjectStream holds the objects packed into a /Type /ObjStm stream.
// The stream is decoded once; each object is parsed on first access.
type ObjectStream struct {
	body    []byte // decoded data from /First on
	entries []objStmEntry
	cache   map[int]Object // by index
}

type objStmEntry struct {
	num    int
	offset int // relative to /First
}

// NewObjectStream decodes s and reads its header of /N object number and
// offset pairs.
func NewObjectStream(s *Stream) (*ObjectStream, error) {
	if s == nil {
		return nil, errors.New("object stream is nil")
	}
	if typ, _ := s.Dict.Get("Type").(Name); typ != "ObjStm" {
		return nil, fmt.Errorf("stream /Type is %v, not /ObjStm", s.Dict.Get("Type"))
	}
	n, err := objStmCount(s.Dict, "N")
	if err != nil {
		return nil, err
	}
	first, err := objStmCount(s.Dict, "First")
	if err != nil {
		return nil, err
	}

	data, err := s.Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode object stream: %w", err)
	}
	if first > len(data) {
		return nil, fmt.Errorf("/First %d is past the end of %d decoded bytes", first, len(data))
	}

	entries, err := parseObjStmHeader(data[:first], n)
	if err != nil {
		return nil, err
	}
	return &ObjectStream{
		body:    data[first:],
		entries: entries,
		cache:   make(map[int]Object),
	}, nil
}

func objStmCount(d Dict, key string) (int, error) {
	v, ok := ToInt(d.Get(key))
	if !ok {
		return 0, fmt.Errorf("object stream /%s is missing or not an integer", key)
	}
	if v < 0 {
		return 0, fmt.Errorf("object stream /%s is negative: %d", key, v)
	}
	return int(v), nil
}

// parseObjStmHeader reads n pairs of plain integers.
func parseObjStmHeader(header []byte, n int) ([]objStmEntry, error) {
	fields := bytes.Fields(header)
	if len(fields) < 2*n {
		return nil, fmt.Errorf("object stream header has %d numbers, want %d", len(fields), 2*n)
	}

	entries := make([]objStmEntry, n)
	for i := range entries {
		num, err1 := strconv.Atoi(string(fields[2*i]))
		offset, err2 := strconv.Atoi(string(fields[2*i+1]))
		if err1 != nil || err2 != nil || num < 0 || offset < 0 {
			return nil, fmt.Errorf("object stream header pair %d is invalid: %s %s", i, fields[2*i], fields[2*i+1])
		}
		entries[i] = objStmEntry{num: num, offset: offset}
	}
	return entries, nil
}

// Len returns the number of objects in the stream.
func (os *ObjectStream) Len() int {
	return len(os.entries)
}

// Numbers returns the object numbers in header order.
func (os *ObjectStream) Numbers() []int {
	nums := make([]int, len(os.entries))
	for i, e := range os.entries {
		nums[i] = e.num
	}
	return nums
}

// Object parses the index'th object and returns its object number with it.
func (os *ObjectStream) Object(index int) (int, Object, error) {
	if index < 0 || index >= len(os.entries) {
		return 0, nil, fmt.Errorf("index %d out of range [0, %d)", index, len(os.entries))
	}
	num := os.entries[index].num
	if obj, ok := os.cache[index]; ok {
		return num, obj, nil
	}

	start := os.entries[index].offset
	end := len(os.body)
	if index+1 < len(os.entries) && os.entries[index+1].offset >= start {
		end = min(os.entries[index+1].offset, end)
	}
	if start >= end {
		return 0, nil, fmt.Errorf("object %d offset %d is outside the stream body", num, start)
	}

	obj, err := NewParser(bytes.NewReader(os.body[start:end])).ParseObject()
	if err != nil {
		return 0, nil, fmt.Errorf("failed to parse object %d: %w", num, err)
	}
	os.cache[index] = obj
	return num, obj, nil
}

// Find returns the object with the given number.
func (os *ObjectStream) Find(num int) (Object, error) {
	for i, e := range os.entries {
		if e.num == num {
			_, obj, err := os.Object(i)
			return obj, err
		}
	}
	return nil, fmt.Errorf("object %d is not in this object stream", num)
}
