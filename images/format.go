package images

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ImageFormat is the closed set of encodings the pipeline reads or writes.
type ImageFormat int

// ImageFormat constants.
const (
	// FormatPNG is the PNG image format.
	FormatPNG ImageFormat = iota + 1
	// FormatJPEG is the JPEG image format.
	FormatJPEG
	// FormatWebP is the WebP image format.
	FormatWebP
	// FormatGIF is the GIF image format.
	FormatGIF
	// FormatBMP is the BMP image format.
	FormatBMP
	// FormatSVG is an SVG document wrapping an embedded PNG.
	FormatSVG
)

var formatNames = map[ImageFormat]string{
	FormatPNG:  "png",
	FormatJPEG: "jpeg",
	FormatWebP: "webp",
	FormatGIF:  "gif",
	FormatBMP:  "bmp",
	FormatSVG:  "svg",
}

// ParseFormat is the single normalization point for format names coming from
// callers, file extensions, or MIME types ("jpg", ".JPEG", "image/jpeg", ...).
//
// Arguments:
//   - s: The format name, extension, or MIME type.
//
// Returns:
//   - ImageFormat: The canonical format.
//   - error: An error if the name is not recognized.
func ParseFormat(s string) (ImageFormat, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, "image/")
	name = strings.TrimPrefix(name, ".")
	name = strings.TrimSuffix(name, "+xml")

	switch name {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg", "jpe", "jfif":
		return FormatJPEG, nil
	case "webp":
		return FormatWebP, nil
	case "gif":
		return FormatGIF, nil
	case "bmp", "x-bmp", "x-ms-bmp":
		return FormatBMP, nil
	case "svg":
		return FormatSVG, nil
	default:
		return 0, errors.Errorf("unsupported image format: %q", s)
	}
}

// FormatFromPath derives the format from a file name extension.
func FormatFromPath(path string) (ImageFormat, error) {
	return ParseFormat(filepath.Ext(path))
}

// String returns the canonical lowercase name.
func (f ImageFormat) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// Extension returns the conventional file extension without the dot.
func (f ImageFormat) Extension() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return f.String()
}

// MIMEType returns the media type for the format.
func (f ImageFormat) MIMEType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/" + f.String()
}

// SupportsAlpha reports whether the encoding can carry per-pixel alpha.
// Targets without alpha get a background painted beneath transparent pixels.
func (f ImageFormat) SupportsAlpha() bool {
	switch f {
	case FormatPNG, FormatWebP, FormatSVG:
		return true
	default:
		return false
	}
}

// Lossy reports whether the encoder honours a quality setting.
func (f ImageFormat) Lossy() bool {
	return f == FormatJPEG || f == FormatWebP
}

// Valid reports whether f is one of the defined constants.
func (f ImageFormat) Valid() bool {
	_, ok := formatNames[f]
	return ok
}

// MarshalText implements encoding.TextMarshaler.
func (f ImageFormat) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, errors.Errorf("invalid image format %d", int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *ImageFormat) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
