// pdfreveal - reveal text hidden under redaction boxes or drawn in the
// color of its background
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tsawler/pdfreveal"
	"github.com/tsawler/pdfreveal/graphicsstate"
	"github.com/tsawler/pdfreveal/logger"
	"github.com/tsawler/pdfreveal/redact"
	"github.com/tsawler/pdfreveal/report"
	"github.com/tsawler/pdfreveal/tracer"
)

// options holds the parsed command line.
type options struct {
	input, output string

	background       bool
	removeRectangles bool
	edges            redact.Range
	colors           redact.ColorList
	strict           bool
	legacy           bool
	pages            []int
	workers          int
	report           string
	verbose          bool
	trace            bool
}

func usage(fs *flag.FlagSet) func() {
	return func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage: pdfreveal [options] <input.pdf> <output.pdf>\n")
		fmt.Fprintf(out, "\nColors are written gray(g), rgb(r,g,b) or cmyk(c,m,y,k) with components in 0..1.\n")
		fmt.Fprintf(out, "\nOptions:\n")
		fs.PrintDefaults()
	}
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	opts := &options{edges: redact.DefaultRange()}

	fs := flag.NewFlagSet("pdfreveal", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = usage(fs)

	fs.BoolVar(&opts.background, "b", false, "background mode: remove fills drawn over text and reveal text drawn on its own color")
	fs.BoolVar(&opts.removeRectangles, "r", false, "remove rectangular fills whose sides fall in the -e range")
	fs.Var(&opts.edges, "e", "rectangle side range `lower..upper`")
	fs.Var(&opts.colors, "c", "reveal text drawn in this `color` (repeatable)")
	fs.BoolVar(&opts.strict, "strict", false, "only remove fills with four perpendicular edges")
	fs.BoolVar(&opts.legacy, "legacy", false, "write colors the way older releases did")
	pages := fs.String("pages", "", "pages to process, e.g. `1,3-5` (default all)")
	fs.IntVar(&opts.workers, "workers", pdfreveal.NewDefaultConfig().Workers, "pages analysed at once")
	fs.StringVar(&opts.report, "report", "", "write a report to `file` (.html for HTML, - for stdout)")
	fs.BoolVar(&opts.verbose, "v", false, "log debug messages")
	fs.BoolVar(&opts.trace, "trace", false, "print a processing trace to stderr at exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if fs.NArg() != 2 {
		fs.Usage()
		return nil, errors.New("expected an input and an output file")
	}
	opts.input, opts.output = fs.Arg(0), fs.Arg(1)

	if opts.background && (opts.removeRectangles || len(opts.colors) > 0) {
		return nil, errors.New("-b cannot be combined with -r or -c")
	}

	if *pages != "" {
		selected, err := parsePages(*pages)
		if err != nil {
			return nil, err
		}
		opts.pages = selected
	}
	return opts, nil
}

// parsePages parses a comma separated list of pages and inclusive ranges.
func parsePages(s string) ([]int, error) {
	var pages []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")

		first, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("invalid page %q", part)
		}
		last := first
		if isRange {
			if last, err = strconv.Atoi(hi); err != nil || last < first {
				return nil, fmt.Errorf("invalid page range %q", part)
			}
		}
		for p := first; p <= last; p++ {
			pages = append(pages, p)
		}
	}
	return pages, nil
}

func (o *options) config() *pdfreveal.Config {
	cfg := pdfreveal.NewDefaultConfig()
	if o.background {
		cfg.Mode = pdfreveal.ModeBackground
	}
	cfg.RemoveRectangles = o.removeRectangles
	cfg.EdgeLower = o.edges.Lower
	cfg.EdgeUpper = o.edges.Upper
	cfg.StrictRectangle = o.strict
	cfg.TargetColors = o.colors
	if o.legacy {
		cfg.EmitMode = graphicsstate.EmitLegacy
	}
	cfg.Workers = o.workers
	return cfg
}

// slogFunc routes library log calls to l.
func slogFunc(l *slog.Logger) logger.LogFunc {
	return func(level logger.LogLevel, msg string, keyvals ...interface{}) {
		switch level {
		case logger.ErrorLevel:
			l.Error(msg, keyvals...)
		default:
			l.Debug(msg, keyvals...)
		}
	}
}

func writeReport(path string, stdout io.Writer, summary report.Summary) error {
	write := report.WriteText
	if strings.EqualFold(filepath.Ext(path), ".html") {
		write = report.WriteHTML
	}
	if path == "-" {
		return write(stdout, summary)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, summary); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	logger.SetLogger(slogFunc(log))
	defer logger.SetLogger(nil)

	if opts.trace {
		defer tracer.Flush(stderr)
	}

	cfg := opts.config()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: invalid options: %v\n", err)
		return 2
	}

	summary, err := pdfreveal.Open(opts.input).
		WithConfig(*cfg).
		Pages(opts.pages...).
		Save(ctx, opts.output)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	removed, recolored, warnings := summary.Totals()
	log.Info("done", "output", opts.output, "removed", removed, "recolored", recolored, "warnings", warnings)

	if opts.report != "" {
		if err := writeReport(opts.report, stdout, summary); err != nil {
			fmt.Fprintf(stderr, "Error: writing report: %v\n", err)
			return 1
		}
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
