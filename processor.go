package pdfreveal

import (
	"context"
	"fmt"

	"github.com/tsawler/pdfreveal/logger"
	"github.com/tsawler/pdfreveal/report"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Processor reveals many documents with one configuration, keeping at most
// MaxConcurrentDocs of them open at a time.
type Processor struct {
	cfg *Config
	sem *semaphore.Weighted
}

// Job names one input file and where its output goes.
type Job struct {
	Input  string
	Output string
}

// Result is the outcome of one Job.
type Result struct {
	Job     Job
	Summary report.Summary
	Err     error
}

// NewProcessor validates cfg and installs its logger. A nil cfg uses
// NewDefaultConfig.
func NewProcessor(cfg *Config) (*Processor, error) {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if cfg.Logger != nil {
		logger.SetLogger(cfg.Logger)
	}

	logger.Debug("processor initialized", "mode", cfg.Mode, "workers", cfg.Workers,
		"max_concurrent_docs", cfg.MaxConcurrentDocs, true)

	return &Processor{
		cfg: cfg,
		sem: semaphore.NewWeighted(int64(cfg.MaxConcurrentDocs)),
	}, nil
}

// Process reveals the file at in and writes the result to out. It waits
// for a free slot first and gives up if ctx is done.
func (p *Processor) Process(ctx context.Context, in, out string) (report.Summary, error) {
	if err := p.acquireSlot(ctx); err != nil {
		logger.Debug("failed to acquire slot", "path", in, "error", err, true)
		return report.Summary{}, err
	}
	defer p.sem.Release(1)

	logger.Debug("slot acquired", "path", in)
	return Open(in).WithConfig(*p.cfg).Save(ctx, out)
}

// ProcessAll runs every job and returns the results in job order. A failed
// job does not stop the others.
func (p *Processor) ProcessAll(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))

	// errors stay in results, so the group never cancels
	var g errgroup.Group
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			summary, err := p.Process(ctx, job.Input, job.Output)
			results[i] = Result{Job: job, Summary: summary, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (p *Processor) acquireSlot(ctx context.Context) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire slot: %w", err)
	}
	return nil
}
