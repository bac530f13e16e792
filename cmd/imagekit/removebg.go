package main

import (
	"github.com/spf13/cobra"

	"github.com/nvr-ai/go-imagekit/images"
	"github.com/nvr-ai/go-imagekit/pipeline"
	"github.com/nvr-ai/go-imagekit/segmentation"
)

func newRemoveBgCmd(a *app) *cobra.Command {
	var (
		smooth     int
		background string
		model      string
		backend    string
	)
	cmd := &cobra.Command{
		Use:   "remove-bg <file>...",
		Short: "Cut out the foreground with a segmentation model",
		Long: "Runs a salient object segmentation model (u2net style, one input and one\n" +
			"output) and multiplies alpha by the predicted mask. The output keeps\n" +
			"transparency unless --background is set; formats without alpha are\n" +
			"flattened onto the configured background.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if model != "" {
				a.cfg.Segmentation.ModelPath = model
			}
			if backend != "" {
				a.cfg.Segmentation.Backend = backend
			}
			opts := &segmentation.Options{SmoothRadius: a.cfg.Segmentation.SmoothRadius}
			if cmd.Flags().Changed("smooth") {
				opts.SmoothRadius = smooth
			}
			var err error
			if opts.Background, err = colorFlag("background-color", background); err != nil {
				return err
			}

			req := pipeline.Request{RemoveBackground: opts}
			if a.cfg.Encode.Format == "" {
				// Keep the cut-out transparent unless a format was asked for.
				req.Encode = a.cfg.EncodeRequest()
				req.Encode.Format = images.FormatPNG
			}
			return a.runEach(cmd, args, "nobg", req)
		},
	}
	cmd.Flags().IntVar(&smooth, "smooth", 2, "edge feathering radius, 0 disables it")
	cmd.Flags().StringVar(&background, "background-color", "", "flatten onto this color instead of keeping transparency")
	cmd.Flags().StringVar(&model, "model", "", "ONNX model path (overrides segmentation.model_path)")
	cmd.Flags().StringVar(&backend, "backend", "", "ort or dnn (overrides segmentation.backend)")
	return cmd
}
