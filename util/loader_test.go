package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-imagekit/images"
)

func TestLoadDirectoryImageFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"frame-10.png", "frame-2.jpg", "cover.webp", "logo.svg", "notes.txt", "frame-1.BMP"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.png"), 0o755))

	files, err := LoadDirectoryImageFiles(dir)
	require.NoError(t, err)

	names := lo.Map(files, func(f ImageFile, _ int) string { return filepath.Base(f.Path) })
	assert.Equal(t, []string{"frame-1.BMP", "frame-2.jpg", "frame-10.png", "cover.webp"}, names)
	assert.Equal(t, images.FormatBMP, files[0].Format)
	assert.Equal(t, 10, files[2].Frame)
	assert.Equal(t, -1, files[3].Frame)
	assert.Equal(t, []byte("frame-2.jpg"), files[1].Data)

	_, err = LoadDirectoryImageFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestFrameNumber(t *testing.T) {
	tests := map[string]int{
		"frame-12.png": 12,
		"img007.jpg":   7,
		"photo.png":    -1,
		"2024.gif":     2024,
	}
	for name, want := range tests {
		assert.Equal(t, want, frameNumber(name), name)
	}
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "nested")
	path, err := WriteFile(dir, "a_resized.png", []byte("x"))
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), data)
}
