package main

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nvr-ai/go-imagekit/codec"
	"github.com/nvr-ai/go-imagekit/config"
	"github.com/nvr-ai/go-imagekit/images"
	"github.com/nvr-ai/go-imagekit/overlay"
	"github.com/nvr-ai/go-imagekit/pipeline"
	"github.com/nvr-ai/go-imagekit/segmentation"
	"github.com/nvr-ai/go-imagekit/util"
)

// app carries the state shared by every subcommand.
type app struct {
	v       *viper.Viper
	cfgPath string
	outDir  string

	cfg      *config.Config
	log      *logrus.Logger
	renderer *overlay.Renderer
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:           "imagekit",
		Short:         "Resize, crop, rotate, filter, caption and compress images",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgPath, "config", "", "config file (default ./imagekit.yaml)")
	flags.StringVarP(&a.outDir, "out", "o", ".", "output directory")
	flags.String("format", "", "output format: png, jpeg, webp, gif, bmp, svg (default: source format)")
	flags.Float64("quality", codec.DefaultConvertQuality, "output quality for lossy formats, 0-1")
	flags.String("background", "#ffffff", "color painted under transparency for formats without alpha")
	flags.String("log-level", "info", "log level")
	flags.String("log-format", "text", "log format: text or json")
	flags.Int("workers", 1, "row parallelism inside filters and batch concurrency")

	for key, flag := range map[string]string{
		"encode.format":     "format",
		"encode.quality":    "quality",
		"encode.background": "background",
		"log.level":         "log-level",
		"log.format":        "log-format",
		"workers":           "workers",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		newResizeCmd(a),
		newCropCmd(a),
		newRotateCmd(a),
		newFlipCmd(a),
		newFilterCmd(a),
		newPixelateCmd(a),
		newMemeCmd(a),
		newWatermarkCmd(a),
		newCompressCmd(a),
		newConvertCmd(a),
		newRemoveBgCmd(a),
		newPresetsCmd(a),
		newBatchCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.v, a.cfgPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = cfg.Logger()

	r, err := overlay.NewRenderer()
	if err != nil {
		return errors.Wrap(err, "load fonts")
	}
	if err := cfg.RegisterFonts(r.Fonts); err != nil {
		return err
	}
	a.renderer = r
	return nil
}

// processor builds a pipeline processor, opening the segmentation model only
// when it is needed.
func (a *app) processor(withSegmenter bool, extra ...pipeline.Option) (*pipeline.Processor, func(), error) {
	opts := append([]pipeline.Option{
		pipeline.WithLogger(a.log),
		pipeline.WithRenderer(a.renderer),
		pipeline.WithWorkers(a.cfg.Workers),
	}, extra...)
	closeFn := func() {}
	if withSegmenter {
		model, err := segmentation.Open(a.cfg.Segmentation.Backend, a.cfg.Segmentation.Config, a.log)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, pipeline.WithSegmenter(model))
		closeFn = func() { closeModel(a.log, model) }
	}
	p, err := pipeline.New(opts...)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return p, closeFn, nil
}

// closeModel logs the inference counters of m and releases it.
func closeModel(log logrus.FieldLogger, m segmentation.Model) {
	st := m.Stats()
	log.WithFields(logrus.Fields{
		"runs": st.Runs,
		"avg":  st.Average(),
	}).Info("segmentation stats")
	if err := m.Close(); err != nil {
		log.WithError(err).Warn("close segmentation model")
	}
}

// decodeFile reads and decodes one image.
func decodeFile(path string) (*images.RasterImage, images.ImageFormat, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "read %s", path)
	}
	return decodeFileData(util.ImageFile{Path: path, Data: data})
}

func decodeFileData(f util.ImageFile) (*images.RasterImage, images.ImageFormat, error) {
	img, format, err := codec.Decode(f.Data)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "decode %s", f.Path)
	}
	return img, format, nil
}

// encodeRequest resolves the output encoding for a source in srcFormat.
func (a *app) encodeRequest(srcFormat images.ImageFormat) codec.EncodeRequest {
	req := a.cfg.EncodeRequest()
	if req.Format == 0 {
		req.Format = srcFormat
	}
	return req
}

// runFile decodes path, runs req through the pipeline and writes the result
// as <stem>_<operation>.<ext> in the output directory.
func (a *app) runFile(ctx context.Context, path, operation string, req pipeline.Request) error {
	img, format, err := decodeFile(path)
	if err != nil {
		return err
	}
	if req.Encode.Format == 0 {
		enc := a.encodeRequest(format)
		req.Encode = enc
	}

	p, closeFn, err := a.processor(req.RemoveBackground != nil)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := p.Process(ctx, img, req)
	if err != nil {
		return errors.Wrap(err, operation)
	}
	return a.write(path, operation, res)
}

func (a *app) write(source, operation string, res *pipeline.Result) error {
	enc := res.Encoded
	out, err := util.WriteFile(a.outDir, codec.OutputName(source, operation, enc.Format), enc.Bytes)
	if err != nil {
		return err
	}

	fields := logrus.Fields{
		"file":   out,
		"width":  enc.Width,
		"height": enc.Height,
		"bytes":  enc.ByteSize,
		"stages": res.Stages,
	}
	if res.Iterations > 0 {
		fields["quality"] = res.Quality
		fields["iterations"] = res.Iterations
		fields["budget_met"] = res.BudgetMet
	}
	a.log.WithFields(fields).Info("written")
	return nil
}
