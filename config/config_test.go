package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-imagekit/images"
	"github.com/nvr-ai/go-imagekit/overlay"
	"github.com/nvr-ai/go-imagekit/segmentation"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "imagekit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "text", c.Log.Format)
	assert.Empty(t, c.Encode.Format)
	assert.Equal(t, 1, c.Workers)
	assert.Equal(t, segmentation.BackendORT, c.Segmentation.Backend)
	assert.Equal(t, segmentation.DefaultInputSize, c.Segmentation.InputSize)
	assert.Equal(t, 2, c.Segmentation.SmoothRadius)

	req := c.EncodeRequest()
	assert.Zero(t, req.Format)
	require.NotNil(t, req.Background)
	assert.Equal(t, images.White, *req.Background)

	opts := c.CompressionOptions()
	assert.Equal(t, 1.0, opts.MaxSizeMB)
	assert.InDelta(t, 0.8, opts.Quality, 1e-9)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: json
encode:
  format: jpg
  quality: 0.75
  background: "#000000"
compression:
  max_size_mb: 0.5
  max_width_or_height: 1920
segmentation:
  backend: dnn
  model_path: /models/u2net.onnx
  input_size: 512
workers: 4
`)
	c, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, images.FormatJPEG, c.EncodeRequest().Format)
	assert.InDelta(t, 0.75, c.EncodeRequest().Quality, 1e-9)
	assert.Equal(t, images.Black, c.Background())
	assert.Equal(t, 1920, c.CompressionOptions().MaxWidthOrHeight)
	assert.Equal(t, segmentation.BackendDNN, c.Segmentation.Backend)
	assert.Equal(t, "/models/u2net.onnx", c.Segmentation.ModelPath)
	assert.Equal(t, 512, c.Segmentation.InputSize)
	assert.Equal(t, 4, c.Workers)

	log := c.Logger()
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("IMAGEKIT_LOG_LEVEL", "warn")
	t.Setenv("IMAGEKIT_WORKERS", "8")
	t.Setenv("IMAGEKIT_SEGMENTATION_MODEL_PATH", "/env/model.onnx")

	path := writeConfig(t, "workers: 2\n")
	c, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "warn", c.Log.Level)
	assert.Equal(t, 8, c.Workers)
	assert.Equal(t, "/env/model.onnx", c.Segmentation.ModelPath)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "log level", body: "log:\n  level: loud\n"},
		{name: "log format", body: "log:\n  format: xml\n"},
		{name: "format", body: "encode:\n  format: tiff\n"},
		{name: "background", body: "encode:\n  background: not-a-color\n"},
		{name: "quality", body: "encode:\n  quality: 2\n"},
		{name: "compression quality", body: "compression:\n  quality: -0.5\n"},
		{name: "budget", body: "compression:\n  max_size_mb: -1\n"},
		{name: "workers", body: "workers: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(New(), writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRegisterFonts(t *testing.T) {
	reg, err := overlay.NewFontRegistry()
	require.NoError(t, err)

	c := &Config{Fonts: FontsConfig{Files: map[string]string{"brand": filepath.Join(t.TempDir(), "missing.ttf")}}}
	assert.Error(t, c.RegisterFonts(reg))
	assert.False(t, reg.Has("brand"))

	assert.NoError(t, (&Config{}).RegisterFonts(reg))
}
