package gallery_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chengyao-ihealth/ai-tools/gallery"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestMimeByExt(t *testing.T) {
	assert.Equal(t, "image/jpeg", gallery.MimeByExt(".jpg"))
	assert.Equal(t, "image/jpeg", gallery.MimeByExt(".JPEG"))
	assert.Equal(t, "image/png", gallery.MimeByExt(".png"))
	assert.Equal(t, "image/webp", gallery.MimeByExt(".webp"))
	assert.Equal(t, "image/jpeg", gallery.MimeByExt(".bmp"))
}

func TestDataURI(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meal.png")
	require.NoError(t, os.WriteFile(path, pngBytes(t, 4, 4), 0o644))

	uri, err := gallery.DataURI(path, 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
}

func TestDataURIMissingFile(t *testing.T) {
	_, err := gallery.DataURI(filepath.Join(t.TempDir(), "nope.jpg"), 0)
	assert.Error(t, err)
}

func TestThumbnailDownscalesWidePNG(t *testing.T) {
	data := gallery.Thumbnail(pngBytes(t, 100, 50), ".png", 40)
	img, _, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())
}

func TestThumbnailKeepsNarrowImage(t *testing.T) {
	src := pngBytes(t, 20, 20)
	assert.Equal(t, src, gallery.Thumbnail(src, ".png", 40))
}

func TestThumbnailPassesThroughOtherFormats(t *testing.T) {
	src := []byte("GIF89a-not-really")
	assert.Equal(t, src, gallery.Thumbnail(src, ".gif", 10))
}
