package pdfreveal_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/tsawler/pdfreveal"
	"github.com/tsawler/pdfreveal/document"
	"github.com/tsawler/pdfreveal/graphicsstate"
	"github.com/tsawler/pdfreveal/redact"
	"github.com/tsawler/pdfreveal/report"
)

func ExampleOpen() {
	summary, err := pdfreveal.Open("redacted.pdf").
		Background().
		Save(context.Background(), "revealed.pdf")
	if err != nil {
		log.Fatal(err)
	}
	if err := report.WriteText(os.Stdout, summary); err != nil {
		log.Fatal(err)
	}
}

func ExampleRevealer_RemoveRectangles() {
	white, err := redact.ParseColor("gray(1)")
	if err != nil {
		log.Fatal(err)
	}

	summary, err := pdfreveal.Open("redacted.pdf").
		PageRange(1, 3).
		RemoveRectangles(redact.DefaultRange()).
		TargetColors(white).
		Highlight(graphicsstate.RGB(1, 0, 0)).
		Save(context.Background(), "revealed.pdf")
	if err != nil {
		log.Fatal(err)
	}
	removed, recolored, _ := summary.Totals()
	fmt.Printf("%d fills removed, %d texts recolored\n", removed, recolored)
}

func ExampleRevealer_Analyze() {
	summary, err := pdfreveal.Open("redacted.pdf").Background().Analyze(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	if summary.Changed() {
		fmt.Println("document contains hidden content")
	}
}

func ExampleFromDocument() {
	doc, err := document.Load("redacted.pdf")
	if err != nil {
		log.Fatal(err)
	}
	defer doc.Close()

	if _, err := pdfreveal.FromDocument(doc).Background().Reveal(context.Background()); err != nil {
		log.Fatal(err)
	}
	if err := doc.Save("revealed.pdf"); err != nil {
		log.Fatal(err)
	}
}

func ExampleProcessor() {
	cfg := pdfreveal.NewDefaultConfig()
	cfg.Mode = pdfreveal.ModeBackground
	cfg.MaxConcurrentDocs = 4

	p, err := pdfreveal.NewProcessor(cfg)
	if err != nil {
		log.Fatal(err)
	}

	results := p.ProcessAll(context.Background(), []pdfreveal.Job{
		{Input: "a.pdf", Output: "a.revealed.pdf"},
		{Input: "b.pdf", Output: "b.revealed.pdf"},
	})
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("%s: %v\n", r.Job.Input, r.Err)
		}
	}
}
