package main

import (
	"bytes"
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-imagekit/codec"
	"github.com/nvr-ai/go-imagekit/images"
	"github.com/nvr-ai/go-imagekit/segmentation"
)

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img, err := images.NewFilledRaster(w, h, color.NRGBA{R: 200, G: 80, B: 40, A: 255})
	require.NoError(t, err)
	enc, err := codec.Encode(img, codec.EncodeRequest{Format: images.FormatPNG})
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, enc.Bytes, 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func decodeOutput(t *testing.T, path string) (*images.RasterImage, images.ImageFormat) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	img, format, err := codec.Decode(data)
	require.NoError(t, err)
	return img, format
}

func TestCommands(t *testing.T) {
	src := writePNG(t, t.TempDir(), "photo.png", 80, 40)

	tests := []struct {
		name       string
		args       []string
		file       string
		format     images.ImageFormat
		wantWidth  int
		wantHeight int
	}{
		{name: "resize", args: []string{"resize", src, "--width", "40", "--keep-aspect"}, file: "photo_resized.png", format: images.FormatPNG, wantWidth: 40, wantHeight: 20},
		{name: "resize lanczos", args: []string{"resize", src, "--width", "20", "--height", "10", "--filter", "lanczos"}, file: "photo_resized.png", format: images.FormatPNG, wantWidth: 20, wantHeight: 10},
		{name: "resize preset", args: []string{"resize", src, "--preset", "hd"}, file: "photo_resized.png", format: images.FormatPNG, wantWidth: 1280, wantHeight: 720},
		{name: "crop aspect", args: []string{"crop", src, "--aspect", "1:1"}, file: "photo_cropped.png", format: images.FormatPNG, wantWidth: 40, wantHeight: 40},
		{name: "crop rect", args: []string{"crop", src, "--x", "10", "--y", "5", "--width", "20", "--height", "10"}, file: "photo_cropped.png", format: images.FormatPNG, wantWidth: 20, wantHeight: 10},
		{name: "rotate", args: []string{"rotate", src, "--angle", "90"}, file: "photo_rotated.png", format: images.FormatPNG, wantWidth: 40, wantHeight: 80},
		{name: "flip", args: []string{"flip", src, "--vertical"}, file: "photo_flipped.png", format: images.FormatPNG, wantWidth: 80, wantHeight: 40},
		{name: "filter", args: []string{"filter", src, "--preset", "noir", "--contrast", "10"}, file: "photo_filtered.png", format: images.FormatPNG, wantWidth: 80, wantHeight: 40},
		{name: "pixelate", args: []string{"pixelate", src, "--block", "8"}, file: "photo_pixelated.png", format: images.FormatPNG, wantWidth: 80, wantHeight: 40},
		{name: "meme", args: []string{"meme", src, "--top", "hello"}, file: "photo_meme.png", format: images.FormatPNG, wantWidth: 80, wantHeight: 40},
		{name: "watermark", args: []string{"watermark", src, "--text", "(c)"}, file: "photo_watermarked.png", format: images.FormatPNG, wantWidth: 80, wantHeight: 40},
		{name: "convert", args: []string{"convert", src, "--to", "jpg"}, file: "photo_converted.jpg", format: images.FormatJPEG, wantWidth: 80, wantHeight: 40},
		{name: "compress", args: []string{"compress", src, "--format", "jpeg", "--max-dimension", "40"}, file: "photo_compressed.jpg", format: images.FormatJPEG, wantWidth: 40, wantHeight: 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := t.TempDir()
			_, err := execute(t, append(tt.args, "-o", out)...)
			require.NoError(t, err)

			img, format := decodeOutput(t, filepath.Join(out, tt.file))
			assert.Equal(t, tt.format, format)
			assert.Equal(t, tt.wantWidth, img.Width)
			assert.Equal(t, tt.wantHeight, img.Height)
		})
	}
}

func TestCommandErrors(t *testing.T) {
	dir := t.TempDir()
	src := writePNG(t, dir, "photo.png", 20, 20)
	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o600))

	tests := []struct {
		name string
		args []string
	}{
		{name: "missing file", args: []string{"resize", filepath.Join(dir, "nope.png"), "--width", "10"}},
		{name: "undecodable", args: []string{"resize", bad, "--width", "10"}},
		{name: "unknown preset", args: []string{"resize", src, "--preset", "8K"}},
		{name: "auto preset larger than source", args: []string{"resize", src, "--preset", "auto"}},
		{name: "nearest filter", args: []string{"resize", src, "--width", "10", "--filter", "nearest"}},
		{name: "bad aspect", args: []string{"crop", src, "--aspect", "5:0"}},
		{name: "bad filter preset", args: []string{"filter", src, "--preset", "sparkly"}},
		{name: "bad block", args: []string{"pixelate", src, "--block", "0"}},
		{name: "no watermark content", args: []string{"watermark", src}},
		{name: "bad position", args: []string{"watermark", src, "--text", "x", "--position", "middle"}},
		{name: "bad format", args: []string{"convert", src, "--to", "tiff"}},
		{name: "remove-bg without model", args: []string{"remove-bg", src, "--model", filepath.Join(dir, "missing.onnx")}},
		{name: "no args", args: []string{"resize"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, append(tt.args, "-o", t.TempDir())...)
			assert.Error(t, err)
		})
	}
}

func TestResizeAutoPreset(t *testing.T) {
	src := writePNG(t, t.TempDir(), "wide.png", 1300, 800)
	out := t.TempDir()
	_, err := execute(t, "resize", src, "--preset", "auto", "-o", out)
	require.NoError(t, err)

	img, _ := decodeOutput(t, filepath.Join(out, "wide_resized.png"))
	assert.Equal(t, 1280, img.Width)
	assert.Equal(t, 720, img.Height)
}

type countingModel struct {
	stats    segmentation.Stats
	closeErr error
	closed   bool
}

func (m *countingModel) Segment(context.Context, *images.RasterImage) (*segmentation.Mask, error) {
	return nil, errors.New("not used")
}

func (m *countingModel) Stats() segmentation.Stats { return m.stats }

func (m *countingModel) Close() error {
	m.closed = true
	return m.closeErr
}

func TestCloseModel(t *testing.T) {
	log, hook := test.NewNullLogger()
	m := &countingModel{stats: segmentation.Stats{Runs: 4, TotalTime: 200 * time.Millisecond}}

	closeModel(log, m)
	assert.True(t, m.closed)
	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	assert.Equal(t, "segmentation stats", entry.Message)
	assert.Equal(t, int64(4), entry.Data["runs"])
	assert.Equal(t, 50*time.Millisecond, entry.Data["avg"])

	hook.Reset()
	closeModel(log, &countingModel{closeErr: errors.New("busy")})
	require.Len(t, hook.AllEntries(), 2)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestBatchCommand(t *testing.T) {
	in := t.TempDir()
	writePNG(t, in, "a.png", 60, 30)
	writePNG(t, in, "b.png", 30, 60)
	require.NoError(t, os.WriteFile(filepath.Join(in, "broken.png"), []byte("nope"), 0o600))

	out := t.TempDir()
	_, err := execute(t, "batch", in, "--width", "20", "--to", "jpeg", "-o", out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 images failed")

	a, format := decodeOutput(t, filepath.Join(out, "a_batch.jpg"))
	assert.Equal(t, images.FormatJPEG, format)
	assert.Equal(t, 20, a.Width)
	assert.Equal(t, 10, a.Height)

	b, _ := decodeOutput(t, filepath.Join(out, "b_batch.jpg"))
	assert.Equal(t, 20, b.Width)
	assert.Equal(t, 40, b.Height)
}

func TestPresetsCommand(t *testing.T) {
	out, err := execute(t, "presets")
	require.NoError(t, err)
	assert.Contains(t, out, "Instagram Post")
	assert.Contains(t, out, "1080x1080")
	assert.Contains(t, out, "16:9")
	assert.Contains(t, out, "vintage")
	assert.Contains(t, out, "bottom-right")
	assert.Regexp(t, `white\s+#ffffff\n`, out)
	assert.Regexp(t, `transparent\s+#00000000\n`, out)
}
