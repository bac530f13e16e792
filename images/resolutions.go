// Package images - Preset tables used by the resize and crop tools: aspect
// ratios, social media sizes and common display resolutions.
package images

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// AspectRatio represents an aspect ratio by name (e.g., "16:9").
type AspectRatio string

// Defines the aspect ratios offered by the crop tool.
const (
	AspectRatio11  AspectRatio = "1:1"
	AspectRatio169 AspectRatio = "16:9"
	AspectRatio43  AspectRatio = "4:3"
	AspectRatio916 AspectRatio = "9:16"
	AspectRatio32  AspectRatio = "3:2"
	AspectRatio23  AspectRatio = "2:3"
)

// AspectRatios lists the crop tool ratios in display order.
var AspectRatios = []AspectRatio{
	AspectRatio11,
	AspectRatio169,
	AspectRatio43,
	AspectRatio916,
	AspectRatio32,
	AspectRatio23,
}

// Value returns width/height for the ratio.
//
// Returns:
//   - float64: The ratio as a number, e.g. 1.777 for "16:9".
//   - error: An error if the ratio is malformed.
func (a AspectRatio) Value() (float64, error) {
	parts := strings.Split(string(a), ":")
	if len(parts) != 2 {
		return 0, errors.Errorf("malformed aspect ratio %q", a)
	}
	w, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "malformed aspect ratio %q", a)
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "malformed aspect ratio %q", a)
	}
	if w <= 0 || h <= 0 {
		return 0, errors.Errorf("malformed aspect ratio %q", a)
	}
	return w / h, nil
}

// ResolutionType represents a common name for a preset size.
type ResolutionType string

// Social media presets.
const (
	ResolutionTypeInstagramPost      ResolutionType = "Instagram Post"
	ResolutionTypeInstagramStory     ResolutionType = "Instagram Story"
	ResolutionTypeInstagramLandscape ResolutionType = "Instagram Landscape"
	ResolutionTypeFacebookPost       ResolutionType = "Facebook Post"
	ResolutionTypeFacebookCover      ResolutionType = "Facebook Cover"
	ResolutionTypeTwitterPost        ResolutionType = "Twitter Post"
	ResolutionTypeTwitterHeader      ResolutionType = "Twitter Header"
	ResolutionTypeLinkedInPost       ResolutionType = "LinkedIn Post"
	ResolutionTypeLinkedInBanner     ResolutionType = "LinkedIn Banner"
	ResolutionTypeYouTubeThumbnail   ResolutionType = "YouTube Thumbnail"
	ResolutionTypeYouTubeBanner      ResolutionType = "YouTube Banner"
	ResolutionTypePinterestPin       ResolutionType = "Pinterest Pin"
)

// Display resize presets.
const (
	ResolutionTypeHD     ResolutionType = "HD"
	ResolutionTypeFullHD ResolutionType = "Full HD"
	ResolutionType2K     ResolutionType = "2K"
	ResolutionType4K     ResolutionType = "4K"
)

// PresetCategory groups presets for listing.
type PresetCategory string

// Preset categories.
const (
	PresetCategorySocial PresetCategory = "social"
	PresetCategoryResize PresetCategory = "resize"
)

// ResolutionPixels describes the exact dimensions of a resolution.
type ResolutionPixels struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Resolution describes a named preset size.
type Resolution struct {
	Name     ResolutionType   `json:"name"`
	Category PresetCategory   `json:"category"`
	Pixels   ResolutionPixels `json:"pixels"`
}

// GetMegaPixels calculates the megapixel value based on the resolution's pixel dimensions.
// It returns the value rounded to two decimal places (e.g., 2.07 for 1080p).
func (r Resolution) GetMegaPixels() float64 {
	if r.Pixels.Width <= 0 || r.Pixels.Height <= 0 {
		return 0.0
	}
	mp := float64(r.Pixels.Width*r.Pixels.Height) / 1_000_000.0
	return math.Round(mp*100) / 100
}

// String returns a human-readable summary of the resolution.
func (r Resolution) String() string {
	return fmt.Sprintf("%s (%dx%d, %.2fMP)", r.Name, r.Pixels.Width, r.Pixels.Height, r.GetMegaPixels())
}

// resolutions stores all presets keyed by their ResolutionType.
var resolutions = map[ResolutionType]Resolution{
	ResolutionTypeInstagramPost: {
		Name:     ResolutionTypeInstagramPost,
		Category: PresetCategorySocial,
		Pixels:   ResolutionPixels{Width: 1080, Height: 1080},
	},
	ResolutionTypeInstagramStory: {
		Name:     ResolutionTypeInstagramStory,
		Category: PresetCategorySocial,
		Pixels:   ResolutionPixels{Width: 1080, Height: 1920},
	},
	ResolutionTypeInstagramLandscape: {
		Name:     ResolutionTypeInstagramLandscape,
		Category: PresetCategorySocial,
		Pixels:   ResolutionPixels{Width: 1080, Height: 566},
	},
	ResolutionTypeFacebookPost: {
		Name:     ResolutionTypeFacebookPost,
		Category: PresetCategorySocial,
		Pixels:   ResolutionPixels{Width: 1200, Height: 630},
	},
	ResolutionTypeFacebookCover: {
		Name:     ResolutionTypeFacebookCover,
		Category: PresetCategorySocial,
		Pixels:   ResolutionPixels{Width: 820, Height: 312},
	},
	ResolutionTypeTwitterPost: {
		Name:     ResolutionTypeTwitterPost,
		Category: PresetCategorySocial,
		Pixels:   ResolutionPixels{Width: 1200, Height: 675},
	},
	ResolutionTypeTwitterHeader: {
		Name:     ResolutionTypeTwitterHeader,
		Category: PresetCategorySocial,
		Pixels:   ResolutionPixels{Width: 1500, Height: 500},
	},
	ResolutionTypeLinkedInPost: {
		Name:     ResolutionTypeLinkedInPost,
		Category: PresetCategorySocial,
		Pixels:   ResolutionPixels{Width: 1200, Height: 627},
	},
	ResolutionTypeLinkedInBanner: {
		Name:     ResolutionTypeLinkedInBanner,
		Category: PresetCategorySocial,
		Pixels:   ResolutionPixels{Width: 1584, Height: 396},
	},
	ResolutionTypeYouTubeThumbnail: {
		Name:     ResolutionTypeYouTubeThumbnail,
		Category: PresetCategorySocial,
		Pixels:   ResolutionPixels{Width: 1280, Height: 720},
	},
	ResolutionTypeYouTubeBanner: {
		Name:     ResolutionTypeYouTubeBanner,
		Category: PresetCategorySocial,
		Pixels:   ResolutionPixels{Width: 2560, Height: 1440},
	},
	ResolutionTypePinterestPin: {
		Name:     ResolutionTypePinterestPin,
		Category: PresetCategorySocial,
		Pixels:   ResolutionPixels{Width: 1000, Height: 1500},
	},
	ResolutionTypeHD: {
		Name:     ResolutionTypeHD,
		Category: PresetCategoryResize,
		Pixels:   ResolutionPixels{Width: 1280, Height: 720},
	},
	ResolutionTypeFullHD: {
		Name:     ResolutionTypeFullHD,
		Category: PresetCategoryResize,
		Pixels:   ResolutionPixels{Width: 1920, Height: 1080},
	},
	ResolutionType2K: {
		Name:     ResolutionType2K,
		Category: PresetCategoryResize,
		Pixels:   ResolutionPixels{Width: 2560, Height: 1440},
	},
	ResolutionType4K: {
		Name:     ResolutionType4K,
		Category: PresetCategoryResize,
		Pixels:   ResolutionPixels{Width: 3840, Height: 2160},
	},
}

// GetAllResolutions returns every preset ordered by category, then pixel count.
func GetAllResolutions() []Resolution {
	all := lo.Values(resolutions)
	sort.Slice(all, func(i, j int) bool {
		if all[i].Category != all[j].Category {
			return all[i].Category < all[j].Category
		}
		ai := all[i].Pixels.Width * all[i].Pixels.Height
		aj := all[j].Pixels.Width * all[j].Pixels.Height
		if ai != aj {
			return ai < aj
		}
		return all[i].Name < all[j].Name
	})
	return all
}

// GetResolutionsByCategory returns the presets of one category in GetAllResolutions order.
func GetResolutionsByCategory(category PresetCategory) []Resolution {
	return lo.Filter(GetAllResolutions(), func(r Resolution, _ int) bool {
		return r.Category == category
	})
}

// GetResolutionByType retrieves a specific resolution by its type.
// It returns the Resolution and true if found, otherwise an empty Resolution and false.
func GetResolutionByType(t ResolutionType) (Resolution, bool) {
	res, ok := resolutions[t]
	return res, ok
}

// FindResolution looks a preset up by case-insensitive name.
func FindResolution(name string) (Resolution, bool) {
	return lo.Find(GetAllResolutions(), func(r Resolution) bool {
		return strings.EqualFold(string(r.Name), strings.TrimSpace(name))
	})
}

// GetHighestResolutionUnderDimensions retrieves the largest resize preset that fits
// within the given width and height.
//
// Arguments:
//   - width: The maximum possible width of the image.
//   - height: The maximum possible height of the image.
//
// Returns:
//   - Resolution: The highest resolution that is under the given width and height.
//   - bool: True if a resolution was found, otherwise false.
func GetHighestResolutionUnderDimensions(width, height int) (Resolution, bool) {
	var highest Resolution
	var found bool

	for _, res := range GetResolutionsByCategory(PresetCategoryResize) {
		if res.Pixels.Width <= width && res.Pixels.Height <= height {
			if !found || res.GetMegaPixels() > highest.GetMegaPixels() {
				highest = res
				found = true
			}
		}
	}
	return highest, found
}
