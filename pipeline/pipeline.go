// Package pipeline - Runs the transform stages over one image in a fixed
// order and encodes the result, or over many independent images at once.
package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-imagekit/codec"
	"github.com/nvr-ai/go-imagekit/filters"
	"github.com/nvr-ai/go-imagekit/geometry"
	"github.com/nvr-ai/go-imagekit/images"
	"github.com/nvr-ai/go-imagekit/overlay"
	"github.com/nvr-ai/go-imagekit/profiler"
	"github.com/nvr-ai/go-imagekit/segmentation"
)

// Stage names reported in Result.Stages and log fields.
const (
	StageRemoveBackground = "remove-background"
	StageGeometry         = "geometry"
	StageFilters          = "filters"
	StagePixelate         = "pixelate"
	StageMeme             = "meme"
	StageWatermark        = "watermark"
	StageEncode           = "encode"
	StageCompress         = "compress"
)

// Request selects the stages of one run. Nil or zero fields are skipped.
type Request struct {
	RemoveBackground *segmentation.Options
	Geometry         []geometry.Op
	Filters          *filters.Settings
	// Pixelate is the block size; values below 2 are skipped.
	Pixelate  int
	Meme      *overlay.MemeOptions
	Watermark *overlay.WatermarkOptions
	// Compression replaces Encode with the size-constrained loop when set.
	Compression *codec.CompressionOptions
	Encode      codec.EncodeRequest
}

// Result is the outcome of one run.
type Result struct {
	Encoded *codec.EncodedImage
	// Quality, Iterations and BudgetMet are filled by the compression loop.
	Quality    float64
	Iterations int
	BudgetMet  bool
	// Stages lists the stages that ran, in order.
	Stages []string
}

// Processor runs requests. It holds only shared, read-mostly collaborators;
// every run works on its own copy of the pixels.
type Processor struct {
	renderer  *overlay.Renderer
	segmenter segmentation.Segmenter
	log       logrus.FieldLogger
	workers   int
	rand      filters.RandSource
	profiler  *profiler.Profiler
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger used for per-stage debug entries.
func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Processor) { p.log = log }
}

// WithSegmenter enables background removal.
func WithSegmenter(seg segmentation.Segmenter) Option {
	return func(p *Processor) { p.segmenter = seg }
}

// WithRenderer replaces the default font renderer.
func WithRenderer(r *overlay.Renderer) Option {
	return func(p *Processor) { p.renderer = r }
}

// WithWorkers sets row parallelism inside filter stages.
func WithWorkers(n int) Option {
	return func(p *Processor) { p.workers = n }
}

// WithProfiler records every stage duration into prof.
func WithProfiler(prof *profiler.Profiler) Option {
	return func(p *Processor) { p.profiler = prof }
}

// WithRand sets the noise source, mainly for reproducible output.
func WithRand(r filters.RandSource) Option {
	return func(p *Processor) { p.rand = r }
}

// New builds a Processor with the built-in fonts.
//
// Arguments:
//   - opts: Optional collaborators.
//
// Returns:
//   - *Processor: The processor.
//   - error: An error if the built-in fonts fail to load.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{log: logrus.StandardLogger(), workers: 1}
	for _, opt := range opts {
		opt(p)
	}
	if p.renderer == nil {
		r, err := overlay.NewRenderer()
		if err != nil {
			return nil, errors.Wrap(err, "load fonts")
		}
		p.renderer = r
	}
	return p, nil
}

// Process runs every requested stage and encodes the result.
//
// Stages run in a fixed order: background removal, geometry, filters,
// pixelate, meme, watermark, then encode or compress. ctx is checked before
// each stage; a canceled run returns ctx.Err() and no partial result.
//
// Arguments:
//   - ctx: Cancels the run between stages.
//   - img: The source raster; it is not modified.
//   - req: The stages to run.
//
// Returns:
//   - *Result: The encoded image and run metadata.
//   - error: The first stage error.
func (p *Processor) Process(ctx context.Context, img *images.RasterImage, req Request) (*Result, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	cur := img.Clone()
	res := &Result{}

	run := func(stage string, fn func() error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		done := func() {}
		if p.profiler != nil {
			done = p.profiler.StartOperation(stage)
		}
		if err := fn(); err != nil {
			return err
		}
		done()
		res.Stages = append(res.Stages, stage)
		p.log.WithFields(logrus.Fields{
			"op":       stage,
			"width":    cur.Width,
			"height":   cur.Height,
			"duration": time.Since(start),
		}).Debug("stage complete")
		return nil
	}

	var err error
	if req.RemoveBackground != nil {
		if err := run(StageRemoveBackground, func() error {
			if p.segmenter == nil {
				return images.WrapOp(StageRemoveBackground, "segmenter", nil, images.ErrSegmentationFailure,
					errors.New("no segmentation model configured"))
			}
			cur, err = segmentation.RemoveBackground(ctx, p.segmenter, cur, *req.RemoveBackground)
			return err
		}); err != nil {
			return nil, err
		}
	}

	if len(req.Geometry) > 0 {
		if err := run(StageGeometry, func() error {
			cur, err = geometry.Apply(cur, req.Geometry...)
			return err
		}); err != nil {
			return nil, err
		}
	}

	if req.Filters != nil && !req.Filters.IsNeutral() {
		if err := run(StageFilters, func() error {
			cur, err = filters.Apply(cur, *req.Filters, filters.Options{Workers: p.workers, Rand: p.rand})
			return err
		}); err != nil {
			return nil, err
		}
	}

	if req.Pixelate > 1 {
		if err := run(StagePixelate, func() error {
			cur, err = filters.Pixelate(cur, req.Pixelate)
			return err
		}); err != nil {
			return nil, err
		}
	}

	if req.Meme != nil {
		if err := run(StageMeme, func() error {
			cur, err = p.renderer.Meme(cur, *req.Meme)
			return err
		}); err != nil {
			return nil, err
		}
	}

	if req.Watermark != nil {
		if err := run(StageWatermark, func() error {
			cur, err = p.renderer.Watermark(cur, *req.Watermark)
			return err
		}); err != nil {
			return nil, err
		}
	}

	if req.Compression != nil {
		err = run(StageCompress, func() error {
			opts := *req.Compression
			if opts.Format == 0 {
				opts.Format = req.Encode.Format
			}
			if opts.Background == nil {
				opts.Background = req.Encode.Background
			}
			cr, err := codec.Compress(cur, opts)
			if err != nil {
				return err
			}
			res.Encoded, res.Quality, res.Iterations, res.BudgetMet = cr.Encoded, cr.Quality, cr.Iterations, cr.BudgetMet
			return nil
		})
	} else {
		err = run(StageEncode, func() error {
			enc, err := codec.Encode(cur, req.Encode)
			if err != nil {
				return err
			}
			res.Encoded, res.Quality = enc, req.Encode.Quality
			if res.Quality <= 0 {
				res.Quality = codec.DefaultConvertQuality
			}
			return nil
		})
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}
