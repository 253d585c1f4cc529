package pdfreveal

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsawler/pdfreveal/contentstream"
	"github.com/tsawler/pdfreveal/core"
	"github.com/tsawler/pdfreveal/document"
	"github.com/tsawler/pdfreveal/graphicsstate"
	"github.com/tsawler/pdfreveal/internal/pdftest"
	"github.com/tsawler/pdfreveal/redact"
)

const (
	// text later covered by a white box
	coveredPage = "BT 1 g 10 10 Td (secret) Tj ET 1 g 0 0 40 40 re f"
	// white text on a white box
	camouflagedPage = "1 g 0 0 40 40 re f BT 10 10 Td (hidden) Tj ET"
	cleanPage       = "0 g BT 10 700 Td (hello) Tj ET"
)

func writeFixture(t *testing.T, contents ...string) string {
	t.Helper()
	pages := make([]pdftest.Page, len(contents))
	for i, c := range contents {
		pages[i] = pdftest.Page{Content: c}
	}
	return pdftest.WriteFile(t, pdftest.Build(t, pages...))
}

// operators loads path and returns the operators of the given page.
func operators(t *testing.T, path string, page int) []string {
	t.Helper()
	doc, err := document.Load(path)
	require.NoError(t, err)
	defer doc.Close()

	data, err := doc.Content(doc.PageIDs()[page])
	require.NoError(t, err)
	ops, err := contentstream.Decode(data)
	require.NoError(t, err)

	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = op.Operator
	}
	return names
}

func loadDocument(t *testing.T, content string) *document.Document {
	t.Helper()
	data := pdftest.Build(t, pdftest.Page{Content: content})
	doc, err := document.New(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	t.Cleanup(func() { doc.Close() })
	return doc
}

func decodeOps(t *testing.T, content string) []contentstream.Operation {
	t.Helper()
	ops, err := contentstream.Decode([]byte(content))
	require.NoError(t, err)
	return ops
}

func TestSaveBackground(t *testing.T) {
	in := writeFixture(t, coveredPage, camouflagedPage, cleanPage)
	out := filepath.Join(t.TempDir(), "out.pdf")

	summary, err := Open(in).Background().Save(context.Background(), out)
	require.NoError(t, err)

	assert.Equal(t, in, summary.Input)
	assert.Equal(t, out, summary.Output)
	assert.Equal(t, "background", summary.Mode)
	assert.Equal(t, "Test Document", summary.Title)
	require.Len(t, summary.Pages, 3)

	removed, recolored, warnings := summary.Totals()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, recolored)
	assert.Equal(t, 0, warnings)

	require.Len(t, summary.Pages[0].Findings.Removed, 1)
	require.Len(t, summary.Pages[1].Findings.Recolored, 1)
	assert.Equal(t, []byte("hidden"), summary.Pages[1].Findings.Recolored[0].Raw)
	assert.False(t, summary.Pages[2].Findings.Changed())

	assert.Equal(t, []string{"BT", "g", "Td", "Tj", "ET", "g", "re", "n"}, operators(t, out, 0))
	assert.Equal(t, []string{"g", "re", "f", "BT", "Td", "rg", "Tj", "g", "ET"}, operators(t, out, 1))
	assert.Equal(t, []string{"g", "BT", "Td", "Tj", "ET"}, operators(t, out, 2))
}

func TestSaveRectangles(t *testing.T) {
	in := writeFixture(t, "0 g 0 0 10 10 re f 0 0 50 50 re f 0 0 500 500 re f", camouflagedPage)
	out := filepath.Join(t.TempDir(), "out.pdf")

	summary, err := Open(in).
		RemoveRectangles(redact.DefaultRange()).
		TargetColors(graphicsstate.Gray(1)).
		Save(context.Background(), out)
	require.NoError(t, err)

	assert.Equal(t, "rectangle", summary.Mode)
	require.Len(t, summary.Pages[0].Findings.Removed, 1)
	assert.Equal(t, 50.0, summary.Pages[0].Findings.Removed[0].BBox.Width)
	assert.Equal(t, []string{"g", "re", "f", "re", "n", "re", "f"}, operators(t, out, 0))

	// the camouflaged page has a 40x40 box, which is inside the range too
	require.Len(t, summary.Pages[1].Findings.Removed, 1)
	require.Len(t, summary.Pages[1].Findings.Recolored, 1)
}

func TestDefaultConfigChangesNothing(t *testing.T) {
	in := writeFixture(t, coveredPage, camouflagedPage)
	out := filepath.Join(t.TempDir(), "out.pdf")

	summary, err := Open(in).Save(context.Background(), out)
	require.NoError(t, err)
	assert.False(t, summary.Changed())

	assert.Equal(t, []string{"BT", "g", "Td", "Tj", "ET", "g", "re", "f"}, operators(t, out, 0))
}

func TestPagesLeavesOthersUnchanged(t *testing.T) {
	in := writeFixture(t, coveredPage, coveredPage, coveredPage)
	out := filepath.Join(t.TempDir(), "out.pdf")

	summary, err := Open(in).Pages(3, 2).Pages(2).Background().Save(context.Background(), out)
	require.NoError(t, err)

	require.Len(t, summary.Pages, 2)
	assert.Equal(t, 1, summary.Pages[0].Index)
	assert.Equal(t, 2, summary.Pages[1].Index)

	assert.Equal(t, "f", last(operators(t, out, 0)))
	assert.Equal(t, "n", last(operators(t, out, 1)))
	assert.Equal(t, "n", last(operators(t, out, 2)))
}

func last(s []string) string {
	return s[len(s)-1]
}

func TestPageSelectionErrors(t *testing.T) {
	in := writeFixture(t, cleanPage)
	ctx := context.Background()

	_, err := Open(in).Pages(2).Analyze(ctx)
	assert.EqualError(t, err, "page 2 out of range (1-1)")

	_, err = Open(in).Pages(0).Analyze(ctx)
	assert.Error(t, err)

	_, err = Open(in).PageRange(3, 1).Analyze(ctx)
	assert.EqualError(t, err, "invalid page range 3-1")
}

func TestPageRange(t *testing.T) {
	in := writeFixture(t, coveredPage, coveredPage, coveredPage, coveredPage)

	summary, err := Open(in).PageRange(2, 3).Background().Analyze(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Pages, 2)
	assert.Equal(t, 1, summary.Pages[0].Index)
	assert.Equal(t, 2, summary.Pages[1].Index)
}

func TestAnalyzeDoesNotModify(t *testing.T) {
	doc := loadDocument(t, coveredPage)

	summary, err := FromDocument(doc).Background().Analyze(context.Background())
	require.NoError(t, err)
	assert.True(t, summary.Changed())

	content, err := doc.Content(doc.PageIDs()[0])
	require.NoError(t, err)
	assert.Equal(t, coveredPage, string(content))
}

func TestRevealModifiesDocument(t *testing.T) {
	doc := loadDocument(t, coveredPage)

	summary, err := FromDocument(doc).Background().Reveal(context.Background())
	require.NoError(t, err)
	assert.True(t, summary.Changed())
	assert.Empty(t, summary.Input)

	content, err := doc.Content(doc.PageIDs()[0])
	require.NoError(t, err)
	assert.NotEqual(t, coveredPage, string(content))

	// FromDocument never closes the caller's document
	_, err = doc.Content(doc.PageIDs()[0])
	assert.NoError(t, err)
}

func TestImmutableChaining(t *testing.T) {
	base := Open("unused.pdf")
	bg := base.Background()
	rect := base.TargetColors(graphicsstate.Gray(1)).Pages(1)
	legacy := rect.LegacyEmit()

	assert.Equal(t, ModeRectangle, base.config.Mode)
	assert.Equal(t, ModeBackground, bg.config.Mode)
	assert.Empty(t, base.config.TargetColors)
	assert.Len(t, rect.config.TargetColors, 1)
	assert.Empty(t, base.pages)
	assert.Equal(t, []int{1}, rect.pages)
	assert.Equal(t, graphicsstate.EmitCorrected, rect.config.EmitMode)
	assert.Equal(t, graphicsstate.EmitLegacy, legacy.config.EmitMode)
}

func TestInvalidConfig(t *testing.T) {
	in := writeFixture(t, cleanPage)
	_, err := Open(in).Workers(0).Analyze(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestDecodeErrorCarriesPage(t *testing.T) {
	in := writeFixture(t, cleanPage, "BT (unterminated Tj ET")
	out := filepath.Join(t.TempDir(), "out.pdf")

	_, err := Open(in).Background().Save(context.Background(), out)

	var decodeErr *core.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, 1, decodeErr.Page)

	_, statErr := os.Stat(out)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "no output on failure")
}

func TestEncodeErrorCarriesPage(t *testing.T) {
	doc := loadDocument(t, coveredPage)
	job := &pageJob{
		index: 4,
		ops: []contentstream.Operation{
			contentstream.NewOperation("Do", core.IndirectRef{Number: 1}),
		},
	}
	job.ops = append(job.ops, decodeOps(t, coveredPage)...)

	r := FromDocument(doc).Background()
	err := r.analyze(context.Background(), []*pageJob{job}, true)

	var encodeErr *core.EncodeError
	require.ErrorAs(t, err, &encodeErr)
	assert.Equal(t, 4, encodeErr.Page)
	assert.Equal(t, 0, encodeErr.Index)
}

func TestResourceWarningsReported(t *testing.T) {
	data := pdftest.Build(t, pdftest.Page{
		Content: "/Bad gs " + coveredPage,
		Resources: core.Dict{"ExtGState": core.Dict{
			"Bad": core.Dict{"LW": core.Int(1)},
		}},
	})
	in := pdftest.WriteFile(t, data)

	summary, err := Open(in).Background().Analyze(context.Background())
	require.NoError(t, err)

	_, _, warnings := summary.Totals()
	assert.GreaterOrEqual(t, warnings, 1)
	var invalid *core.InvalidResourceError
	assert.ErrorAs(t, summary.Pages[0].Findings.Warnings[0], &invalid)
}

func TestCancelledContext(t *testing.T) {
	in := writeFixture(t, coveredPage)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Open(in).Background().Analyze(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPageCountAndClose(t *testing.T) {
	r := Open(writeFixture(t, cleanPage, cleanPage))
	assert.Equal(t, 2, Must(r.PageCount()))
	assert.NoError(t, r.Close())
	assert.NoError(t, r.Close())

	_, err := Open(filepath.Join(t.TempDir(), "missing.pdf")).PageCount()
	var ioErr *core.IOError
	assert.ErrorAs(t, err, &ioErr)
}

func TestMustPanics(t *testing.T) {
	assert.Panics(t, func() {
		Must(0, errors.New("boom"))
	})
}
