package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nvr-ai/go-imagekit/filters"
	"github.com/nvr-ai/go-imagekit/images"
	"github.com/nvr-ai/go-imagekit/overlay"
)

func newPresetsCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List size presets, aspect ratios, filter looks, watermark positions and colors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, category := range []images.PresetCategory{images.PresetCategorySocial, images.PresetCategoryResize} {
				fmt.Fprintf(w, "%s sizes:\n", category)
				for _, r := range images.GetResolutionsByCategory(category) {
					fmt.Fprintf(w, "  %s\t%dx%d\t%.2f MP\n", r.Name, r.Pixels.Width, r.Pixels.Height, r.GetMegaPixels())
				}
			}
			fmt.Fprintln(w, "aspect ratios:")
			for _, ar := range images.AspectRatios {
				fmt.Fprintf(w, "  %s\n", ar)
			}
			fmt.Fprintln(w, "filter presets:")
			for _, name := range filters.PresetNames() {
				fmt.Fprintf(w, "  %s\n", name)
			}
			fmt.Fprintln(w, "watermark positions:")
			for _, pos := range overlay.Positions {
				fmt.Fprintf(w, "  %s\n", pos)
			}
			fmt.Fprintln(w, "colors:")
			for _, name := range images.ColorNames() {
				c, _ := images.ParseColor(name)
				fmt.Fprintf(w, "  %s\t%s\n", name, images.HexColor(c))
			}
			return w.Flush()
		},
	}
}
