package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsawler/pdfreveal"
	"github.com/tsawler/pdfreveal/graphicsstate"
	"github.com/tsawler/pdfreveal/internal/pdftest"
	"github.com/tsawler/pdfreveal/redact"
)

func TestParsePages(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{"1", []int{1}, false},
		{"1,3-5", []int{1, 3, 4, 5}, false},
		{" 2 , 2 ", []int{2, 2}, false},
		{"x", nil, true},
		{"5-3", nil, true},
		{"1-", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePages(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseArgs(t *testing.T) {
	var stderr bytes.Buffer
	opts, err := parseArgs([]string{"-r", "-e", "10..50", "-c", "gray(1)", "-c", "rgb(1,1,1)", "-strict", "-legacy", "-pages", "2-3", "in.pdf", "out.pdf"}, &stderr)
	require.NoError(t, err)

	assert.Equal(t, "in.pdf", opts.input)
	assert.Equal(t, "out.pdf", opts.output)
	assert.Equal(t, []int{2, 3}, opts.pages)

	cfg := opts.config()
	assert.Equal(t, pdfreveal.ModeRectangle, cfg.Mode)
	assert.True(t, cfg.RemoveRectangles)
	assert.Equal(t, 10.0, cfg.EdgeLower)
	assert.Equal(t, 50.0, cfg.EdgeUpper)
	assert.True(t, cfg.StrictRectangle)
	assert.Equal(t, graphicsstate.EmitLegacy, cfg.EmitMode)
	require.Len(t, cfg.TargetColors, 2)
	assert.NoError(t, cfg.Validate())
}

func TestParseArgsDefaults(t *testing.T) {
	opts, err := parseArgs([]string{"-b", "in.pdf", "out.pdf"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, redact.DefaultRange(), opts.edges)

	cfg := opts.config()
	assert.Equal(t, pdfreveal.ModeBackground, cfg.Mode)
	assert.Equal(t, graphicsstate.EmitCorrected, cfg.EmitMode)
}

func TestParseArgsErrors(t *testing.T) {
	tests := map[string][]string{
		"missing output": {"in.pdf"},
		"bad range":      {"-e", "50..10", "in.pdf", "out.pdf"},
		"bad color":      {"-c", "purple", "in.pdf", "out.pdf"},
		"mixed modes":    {"-b", "-r", "in.pdf", "out.pdf"},
		"bad pages":      {"-pages", "a", "in.pdf", "out.pdf"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parseArgs(args, &bytes.Buffer{})
			assert.Error(t, err)
		})
	}
}

func TestRun(t *testing.T) {
	in := pdftest.WriteFile(t, pdftest.Build(t,
		pdftest.Page{Content: "BT 1 g 10 10 Td (secret) Tj ET 1 g 0 0 40 40 re f"},
	))
	dir := t.TempDir()
	out := filepath.Join(dir, "out.pdf")
	htmlReport := filepath.Join(dir, "report.html")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-b", "-report", htmlReport, in, out}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	assert.FileExists(t, out)
	data, err := os.ReadFile(htmlReport)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fill removed")
	assert.Contains(t, stderr.String(), "removed=1")

	stdout.Reset()
	code = run(context.Background(), []string{"-b", "-report", "-", in, out}, &stdout, &stderr)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "total: 1 fill removed, 0 texts recolored, 0 warnings")
}

func TestRunFailures(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), []string{"only-one.pdf"}, &stdout, &stderr))

	missing := filepath.Join(t.TempDir(), "missing.pdf")
	assert.Equal(t, 1, run(context.Background(), []string{"-b", missing, filepath.Join(t.TempDir(), "out.pdf")}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Error:")

	assert.Equal(t, 2, run(context.Background(), []string{"-workers", "0", missing, "out.pdf"}, &stdout, &stderr))

	assert.Equal(t, 0, run(context.Background(), []string{"-h"}, &stdout, &stderr))
}
