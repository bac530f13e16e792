package main

import (
	"github.com/spf13/cobra"

	"github.com/nvr-ai/go-imagekit/overlay"
	"github.com/nvr-ai/go-imagekit/pipeline"
)

func newMemeCmd(a *app) *cobra.Command {
	var (
		opts        overlay.MemeOptions
		fontColor   string
		strokeColor string
	)
	cmd := &cobra.Command{
		Use:   "meme <file>...",
		Short: "Draw outlined top and bottom captions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if opts.FontColor, err = colorFlag("color", fontColor); err != nil {
				return err
			}
			if opts.StrokeColor, err = colorFlag("stroke-color", strokeColor); err != nil {
				return err
			}
			return a.runEach(cmd, args, "meme", pipeline.Request{Meme: &opts})
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.TopText, "top", "", "top caption")
	f.StringVar(&opts.BottomText, "bottom", "", "bottom caption")
	f.Float64Var(&opts.FontSize, "size", 0, "font size in pixels (default width / 10)")
	f.StringVar(&opts.FontFamily, "font", "", "font family (default impact)")
	f.StringVar(&fontColor, "color", "", "caption color (default white)")
	f.StringVar(&strokeColor, "stroke-color", "", "outline color (default black)")
	f.Float64Var(&opts.StrokeWidth, "stroke-width", 0, "outline width, negative disables it")
	f.Float64Var(&opts.Padding, "padding", 0, "distance from the top and bottom edges")
	f.BoolVar(&opts.NoShadow, "no-shadow", false, "skip the drop shadow")
	return cmd
}

func newWatermarkCmd(a *app) *cobra.Command {
	var (
		opts      overlay.WatermarkOptions
		logo      string
		fontColor string
		position  string
	)
	cmd := &cobra.Command{
		Use:   "watermark <file>...",
		Short: "Stamp text or a logo into a corner",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := overlay.ParsePosition(position)
			if err != nil {
				return err
			}
			opts.Position = pos
			if opts.FontColor, err = colorFlag("color", fontColor); err != nil {
				return err
			}
			if logo != "" {
				if opts.Logo, _, err = decodeFile(logo); err != nil {
					return err
				}
			}
			return a.runEach(cmd, args, "watermarked", pipeline.Request{Watermark: &opts})
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.Text, "text", "", "watermark text")
	f.StringVar(&logo, "logo", "", "logo image drawn instead of text")
	f.StringVar(&position, "position", "", "top-left, top-right, bottom-left, bottom-right or center")
	f.Float64Var(&opts.Opacity, "opacity", 0, "0 to 1 (default 0.5)")
	f.Float64Var(&opts.FontSize, "size", 0, "font size in pixels (default 32)")
	f.StringVar(&opts.FontFamily, "font", "", "font family (default sans)")
	f.StringVar(&fontColor, "color", "", "text color (default white)")
	f.Float64Var(&opts.Padding, "padding", 0, "distance from the anchored edges")
	return cmd
}
