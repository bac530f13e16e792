package main

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/nvr-ai/go-imagekit/filters"
	"github.com/nvr-ai/go-imagekit/geometry"
	"github.com/nvr-ai/go-imagekit/images"
	"github.com/nvr-ai/go-imagekit/pipeline"
	"github.com/nvr-ai/go-imagekit/profiler"
	"github.com/nvr-ai/go-imagekit/util"
)

func newBatchCmd(a *app) *cobra.Command {
	var (
		resize    geometry.Resize
		preset    string
		maxSizeMB float64
		to        string
		failFast  bool
	)
	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Resize, filter and compress every image in a directory",
		Long: "Loads every png, jpeg, webp, gif and bmp file in <dir>, runs the same\n" +
			"stages on each with --workers images in flight and writes\n" +
			"<stem>_batch.<ext> files to --out. A failed image is reported and the\n" +
			"rest still run unless --fail-fast is set.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := pipeline.Request{}
			if resize.Width > 0 || resize.Height > 0 {
				req.Geometry = []geometry.Op{resize}
			}
			if preset != "" {
				s, ok := filters.Preset(preset)
				if !ok {
					return errors.Errorf("unknown preset %q, want one of %v", preset, filters.PresetNames())
				}
				req.Filters = &s
			}
			var format images.ImageFormat
			if to != "" {
				f, err := images.ParseFormat(to)
				if err != nil {
					return err
				}
				format = f
			}
			if maxSizeMB > 0 {
				opts := a.cfg.CompressionOptions()
				opts.MaxSizeMB = maxSizeMB
				opts.Format = format
				req.Compression = &opts
			}
			return a.runBatch(cmd, args[0], req, format, failFast)
		},
	}
	f := cmd.Flags()
	f.IntVar(&resize.Width, "width", 0, "resize to this width")
	f.IntVar(&resize.Height, "height", 0, "resize to this height")
	f.BoolVar(&resize.KeepAspect, "keep-aspect", true, "derive the missing dimension from the source ratio")
	f.StringVar(&preset, "filter-preset", "", "apply a filter preset")
	f.Float64Var(&maxSizeMB, "max-size-mb", 0, "compress each image under this budget")
	f.StringVar(&to, "to", "", "output format (default: each source format)")
	f.BoolVar(&failFast, "fail-fast", false, "stop at the first failed image")
	return cmd
}

func (a *app) runBatch(cmd *cobra.Command, dir string, req pipeline.Request, format images.ImageFormat, failFast bool) error {
	files, err := util.LoadDirectoryImageFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.Errorf("no images in %s", dir)
	}

	var (
		jobs    []pipeline.Job
		results []pipeline.JobResult
	)
	for _, file := range files {
		img, srcFormat, err := decodeFileData(file)
		if err != nil {
			if failFast {
				return err
			}
			results = append(results, pipeline.JobResult{Name: file.Path, Err: err})
			continue
		}
		jobReq := req
		jobReq.Encode = a.encodeRequest(srcFormat)
		if format != 0 {
			jobReq.Encode.Format = format
		}
		jobs = append(jobs, pipeline.Job{Name: file.Path, Image: img, Request: jobReq})
	}

	prof := profiler.New(0)
	p, closeFn, err := a.processor(false, pipeline.WithProfiler(prof))
	if err != nil {
		return err
	}
	defer closeFn()

	processed, err := p.Batch(cmd.Context(), jobs, pipeline.BatchOptions{
		Concurrency: a.cfg.Workers,
		FailFast:    failFast,
	})
	if err != nil {
		return err
	}
	results = append(results, processed...)
	prof.Report(a.log)

	for _, res := range pipeline.Succeeded(results) {
		if err := a.write(res.Name, "batch", res.Result); err != nil {
			return err
		}
	}
	failed := pipeline.Failed(results)
	for _, res := range failed {
		a.log.WithError(res.Err).WithField("file", res.Name).Error("failed")
	}
	if len(failed) > 0 {
		return errors.Errorf("%d of %d images failed: %v", len(failed), len(results),
			lo.Map(failed, func(r pipeline.JobResult, _ int) string { return r.Name }))
	}
	return nil
}
