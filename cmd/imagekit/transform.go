package main

import (
	"image/color"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nvr-ai/go-imagekit/filters"
	"github.com/nvr-ai/go-imagekit/geometry"
	"github.com/nvr-ai/go-imagekit/images"
	"github.com/nvr-ai/go-imagekit/pipeline"
)

// colorFlag parses an optional color flag; empty returns nil.
func colorFlag(name, value string) (*color.NRGBA, error) {
	if value == "" {
		return nil, nil
	}
	c, err := images.ParseColor(value)
	if err != nil {
		return nil, errors.Wrapf(err, "--%s", name)
	}
	return &c, nil
}

// runEach runs req over every file argument.
func (a *app) runEach(cmd *cobra.Command, paths []string, operation string, req pipeline.Request) error {
	for _, path := range paths {
		if err := a.runFile(cmd.Context(), path, operation, req); err != nil {
			return err
		}
	}
	return nil
}

// presetAuto picks the resize preset per image.
const presetAuto = "auto"

// autoPreset resizes to the largest resize preset that fits inside the source.
type autoPreset struct {
	filter geometry.Filter
}

func (p autoPreset) Name() string { return "resize" }

func (p autoPreset) Apply(img *images.RasterImage) (*images.RasterImage, error) {
	res, ok := images.GetHighestResolutionUnderDimensions(img.Width, img.Height)
	if !ok {
		return nil, images.NewOpError("resize", "preset", presetAuto, images.ErrInvalidDimension)
	}
	return geometry.Resize{Width: res.Pixels.Width, Height: res.Pixels.Height, Filter: p.filter}.Apply(img)
}

func newResizeCmd(a *app) *cobra.Command {
	var (
		r      geometry.Resize
		filter string
		preset string
	)
	cmd := &cobra.Command{
		Use:   "resize <file>...",
		Short: "Resize to explicit dimensions or a named preset",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := geometry.ParseFilter(filter)
			if err != nil {
				return err
			}
			r.Filter = f
			var op geometry.Op = r
			switch {
			case preset == presetAuto:
				op = autoPreset{filter: f}
			case preset != "":
				res, ok := images.FindResolution(preset)
				if !ok {
					return errors.Errorf("unknown preset %q, see 'imagekit presets'", preset)
				}
				r.Width, r.Height = res.Pixels.Width, res.Pixels.Height
				op = r
			}
			return a.runEach(cmd, args, "resized", pipeline.Request{Geometry: []geometry.Op{op}})
		},
	}
	cmd.Flags().IntVar(&r.Width, "width", 0, "target width in pixels")
	cmd.Flags().IntVar(&r.Height, "height", 0, "target height in pixels")
	cmd.Flags().BoolVar(&r.KeepAspect, "keep-aspect", false, "derive the missing dimension from the source ratio")
	cmd.Flags().StringVar(&filter, "filter", "", "resampling kernel: bicubic, bilinear, mitchell, lanczos3")
	cmd.Flags().StringVar(&preset, "preset", "", "named size such as \"Instagram Post\" or \"Full HD\", or auto for the largest resize preset that fits")
	return cmd
}

// aspectCrop picks the largest centered crop at ratio for each image, so it
// cannot be expressed as a fixed rectangle up front.
type aspectCrop struct {
	ratio float64
}

func (c aspectCrop) Name() string { return "crop" }

func (c aspectCrop) Apply(img *images.RasterImage) (*images.RasterImage, error) {
	rect, err := geometry.CropToAspect(img.Width, img.Height, c.ratio)
	if err != nil {
		return nil, err
	}
	return geometry.Crop{Rect: rect}.Apply(img)
}

func newCropCmd(a *app) *cobra.Command {
	var (
		rect   images.PixelCrop
		aspect string
	)
	cmd := &cobra.Command{
		Use:   "crop <file>...",
		Short: "Crop to a rectangle or the largest centered area of an aspect ratio",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var op geometry.Op = geometry.Crop{Rect: rect}
			if aspect != "" {
				ratio, err := images.AspectRatio(aspect).Value()
				if err != nil {
					return err
				}
				op = aspectCrop{ratio: ratio}
			}
			return a.runEach(cmd, args, "cropped", pipeline.Request{Geometry: []geometry.Op{op}})
		},
	}
	cmd.Flags().IntVar(&rect.X, "x", 0, "left edge")
	cmd.Flags().IntVar(&rect.Y, "y", 0, "top edge")
	cmd.Flags().IntVar(&rect.Width, "width", 0, "crop width")
	cmd.Flags().IntVar(&rect.Height, "height", 0, "crop height")
	cmd.Flags().StringVar(&aspect, "aspect", "", "aspect ratio such as 16:9; overrides the rectangle")
	return cmd
}

func newRotateCmd(a *app) *cobra.Command {
	var (
		angle float64
		fill  string
	)
	cmd := &cobra.Command{
		Use:   "rotate <file>...",
		Short: "Rotate clockwise by any angle",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := colorFlag("fill", fill)
			if err != nil {
				return err
			}
			op := geometry.Rotate{Angle: angle, Fill: c}
			return a.runEach(cmd, args, "rotated", pipeline.Request{Geometry: []geometry.Op{op}})
		},
	}
	cmd.Flags().Float64Var(&angle, "angle", 90, "degrees, positive is clockwise")
	cmd.Flags().StringVar(&fill, "fill", "", "color for uncovered corners (default white)")
	return cmd
}

func newFlipCmd(a *app) *cobra.Command {
	var vertical bool
	cmd := &cobra.Command{
		Use:   "flip <file>...",
		Short: "Mirror horizontally, or vertically with --vertical",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var op geometry.Op = geometry.FlipH{}
			if vertical {
				op = geometry.FlipV{}
			}
			return a.runEach(cmd, args, "flipped", pipeline.Request{Geometry: []geometry.Op{op}})
		},
	}
	cmd.Flags().BoolVar(&vertical, "vertical", false, "flip top to bottom")
	return cmd
}

func newFilterCmd(a *app) *cobra.Command {
	var (
		s      filters.Settings
		preset string
	)
	cmd := &cobra.Command{
		Use:   "filter <file>...",
		Short: "Apply slider adjustments or a preset look",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := s
			if preset != "" {
				p, ok := filters.Preset(preset)
				if !ok {
					return errors.Errorf("unknown preset %q, want one of %v", preset, filters.PresetNames())
				}
				settings = overrideSettings(cmd, p, s)
			}
			return a.runEach(cmd, args, "filtered", pipeline.Request{Filters: &settings})
		},
	}
	f := cmd.Flags()
	f.StringVar(&preset, "preset", "", "preset look; explicit slider flags override it")
	f.Float64Var(&s.Brightness, "brightness", 0, "-100 to 100")
	f.Float64Var(&s.Contrast, "contrast", 0, "-100 to 100")
	f.Float64Var(&s.Saturation, "saturation", 0, "-100 to 100")
	f.Float64Var(&s.Blur, "blur", 0, "0 to 20")
	f.Float64Var(&s.Grayscale, "grayscale", 0, "0 to 100")
	f.Float64Var(&s.Sepia, "sepia", 0, "0 to 100")
	f.Float64Var(&s.Invert, "invert", 0, "0 to 100")
	f.Float64Var(&s.HueRotate, "hue-rotate", 0, "degrees")
	f.Float64Var(&s.Opacity, "opacity", 0, "0 to 100, 0 leaves alpha alone")
	f.Float64Var(&s.Sharpen, "sharpen", 0, "0 to 100")
	f.Float64Var(&s.Vignette, "vignette", 0, "0 to 100")
	f.Float64Var(&s.Noise, "noise", 0, "0 to 100")
	f.Float64Var(&s.Temperature, "temperature", 0, "-100 to 100")
	f.Float64Var(&s.Tint, "tint", 0, "-100 to 100")
	return cmd
}

// overrideSettings copies every slider flag the user set from explicit onto
// base.
func overrideSettings(cmd *cobra.Command, base, explicit filters.Settings) filters.Settings {
	fields := map[string]struct{ dst, src *float64 }{
		"brightness":  {&base.Brightness, &explicit.Brightness},
		"contrast":    {&base.Contrast, &explicit.Contrast},
		"saturation":  {&base.Saturation, &explicit.Saturation},
		"blur":        {&base.Blur, &explicit.Blur},
		"grayscale":   {&base.Grayscale, &explicit.Grayscale},
		"sepia":       {&base.Sepia, &explicit.Sepia},
		"invert":      {&base.Invert, &explicit.Invert},
		"hue-rotate":  {&base.HueRotate, &explicit.HueRotate},
		"opacity":     {&base.Opacity, &explicit.Opacity},
		"sharpen":     {&base.Sharpen, &explicit.Sharpen},
		"vignette":    {&base.Vignette, &explicit.Vignette},
		"noise":       {&base.Noise, &explicit.Noise},
		"temperature": {&base.Temperature, &explicit.Temperature},
		"tint":        {&base.Tint, &explicit.Tint},
	}
	for name, f := range fields {
		if cmd.Flags().Changed(name) {
			*f.dst = *f.src
		}
	}
	return base
}

func newPixelateCmd(a *app) *cobra.Command {
	var block int
	cmd := &cobra.Command{
		Use:   "pixelate <file>...",
		Short: "Replace each block with its average color",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if block < 1 {
				return images.NewOpError("pixelate", "block", block, images.ErrInvalidDimension)
			}
			return a.runEach(cmd, args, "pixelated", pipeline.Request{Pixelate: block})
		},
	}
	cmd.Flags().IntVar(&block, "block", 10, "block size in pixels")
	return cmd
}
