package main

import (
	"github.com/spf13/cobra"

	"github.com/nvr-ai/go-imagekit/images"
	"github.com/nvr-ai/go-imagekit/pipeline"
)

func newCompressCmd(a *app) *cobra.Command {
	var (
		maxSizeMB float64
		maxDim    int
		start     float64
	)
	cmd := &cobra.Command{
		Use:   "compress <file>...",
		Short: "Lower quality step by step until the file fits a size budget",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.cfg.CompressionOptions()
			if cmd.Flags().Changed("max-size-mb") {
				opts.MaxSizeMB = maxSizeMB
			}
			if cmd.Flags().Changed("max-dimension") {
				opts.MaxWidthOrHeight = maxDim
			}
			if cmd.Flags().Changed("start-quality") {
				opts.Quality = start
			}
			return a.runEach(cmd, args, "compressed", pipeline.Request{Compression: &opts})
		},
	}
	cmd.Flags().Float64Var(&maxSizeMB, "max-size-mb", 1, "size budget in megabytes, 0 disables it")
	cmd.Flags().IntVar(&maxDim, "max-dimension", 0, "fit within this many pixels on the longer side")
	cmd.Flags().Float64Var(&start, "start-quality", 0.8, "first quality tried")
	return cmd
}

func newConvertCmd(a *app) *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "convert <file>...",
		Short: "Re-encode in another format",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := images.ParseFormat(to)
			if err != nil {
				return err
			}
			enc := a.cfg.EncodeRequest()
			enc.Format = format
			return a.runEach(cmd, args, "converted", pipeline.Request{Encode: enc})
		},
	}
	cmd.Flags().StringVar(&to, "to", "png", "target format")
	return cmd
}
