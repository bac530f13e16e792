package pipeline

import (
	"context"
	"runtime"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/nvr-ai/go-imagekit/images"
)

// Job is one independent image in a batch.
type Job struct {
	// Name identifies the job in results, usually the source file name.
	Name    string
	Image   *images.RasterImage
	Request Request
}

// JobResult pairs a job with its outcome.
type JobResult struct {
	Name   string
	Result *Result
	Err    error
}

// BatchOptions controls fan-out.
type BatchOptions struct {
	// Concurrency caps the images processed at once; 0 uses GOMAXPROCS.
	Concurrency int
	// FailFast cancels the remaining jobs on the first failure.
	FailFast bool
}

// Batch processes independent images in parallel, each on its own buffer.
// Results keep the order of jobs.
//
// Without FailFast every job runs and failures are reported per job; the
// returned error is only set when ctx itself is done. With FailFast the first
// failure cancels the rest and is returned.
//
// Arguments:
//   - ctx: Cancels all jobs.
//   - jobs: The images and their requests.
//   - opts: Fan-out limits.
//
// Returns:
//   - []JobResult: One entry per job, in input order.
//   - error: The first failure with FailFast, or ctx.Err().
func (p *Processor) Batch(ctx context.Context, jobs []Job, opts BatchOptions) ([]JobResult, error) {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([]JobResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, job := range jobs {
		g.Go(func() error {
			res, err := p.Process(gctx, job.Image, job.Request)
			results[i] = JobResult{Name: job.Name, Result: res, Err: err}
			if opts.FailFast {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

// Failed returns the results that carry an error.
func Failed(results []JobResult) []JobResult {
	return lo.Filter(results, func(r JobResult, _ int) bool { return r.Err != nil })
}

// Succeeded returns the results that carry an encoded image.
func Succeeded(results []JobResult) []JobResult {
	return lo.Filter(results, func(r JobResult, _ int) bool { return r.Err == nil && r.Result != nil })
}
