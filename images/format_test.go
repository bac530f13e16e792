package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    ImageFormat
		wantErr bool
	}{
		{"png", FormatPNG, false},
		{"PNG", FormatPNG, false},
		{".png", FormatPNG, false},
		{"jpg", FormatJPEG, false},
		{"jpeg", FormatJPEG, false},
		{"image/jpeg", FormatJPEG, false},
		{" .JPG ", FormatJPEG, false},
		{"webp", FormatWebP, false},
		{"image/gif", FormatGIF, false},
		{"bmp", FormatBMP, false},
		{"image/x-ms-bmp", FormatBMP, false},
		{"image/svg+xml", FormatSVG, false},
		{"tiff", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("/tmp/holiday.photo.JPEG")
	require.NoError(t, err)
	assert.Equal(t, FormatJPEG, f)

	_, err = FormatFromPath("README")
	assert.Error(t, err)
}

func TestImageFormatProperties(t *testing.T) {
	tests := []struct {
		format ImageFormat
		ext    string
		mime   string
		alpha  bool
		lossy  bool
	}{
		{FormatPNG, "png", "image/png", true, false},
		{FormatJPEG, "jpg", "image/jpeg", false, true},
		{FormatWebP, "webp", "image/webp", true, true},
		{FormatGIF, "gif", "image/gif", false, false},
		{FormatBMP, "bmp", "image/bmp", false, false},
		{FormatSVG, "svg", "image/svg+xml", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			assert.True(t, tt.format.Valid())
			assert.Equal(t, tt.ext, tt.format.Extension())
			assert.Equal(t, tt.mime, tt.format.MIMEType())
			assert.Equal(t, tt.alpha, tt.format.SupportsAlpha())
			assert.Equal(t, tt.lossy, tt.format.Lossy())

			// The MIME type normalizes back to the same format.
			back, err := ParseFormat(tt.format.MIMEType())
			require.NoError(t, err)
			assert.Equal(t, tt.format, back)
		})
	}

	assert.False(t, ImageFormat(0).Valid())
	assert.Equal(t, "unknown", ImageFormat(42).String())
}

func TestImageFormatText(t *testing.T) {
	var f ImageFormat
	require.NoError(t, f.UnmarshalText([]byte("jpg")))
	assert.Equal(t, FormatJPEG, f)

	text, err := f.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(text))

	_, err = ImageFormat(0).MarshalText()
	assert.Error(t, err)
	assert.Error(t, f.UnmarshalText([]byte("heic")))
}
