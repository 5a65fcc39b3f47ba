package gallery

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
)

// MimeByExt maps an image filename extension to its MIME type. Unknown
// extensions fall back to JPEG, matching how the fetcher names files.
func MimeByExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// DataURI reads a local image and inlines it as a base64 data URI so the
// generated gallery has no external asset references. thumbWidth > 0 caps
// the embedded width for JPEG/PNG files.
func DataURI(path string, thumbWidth uint) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	ext := filepath.Ext(path)
	if thumbWidth > 0 {
		data = Thumbnail(data, ext, thumbWidth)
	}
	return "data:" + MimeByExt(ext) + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// Thumbnail downscales JPEG/PNG bytes to at most maxWidth pixels wide,
// preserving aspect ratio. Other formats, images already narrow enough and
// anything that fails to decode come back untouched.
func Thumbnail(data []byte, ext string, maxWidth uint) []byte {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".png":
	default:
		return data
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}
	if uint(img.Bounds().Dx()) <= maxWidth {
		return data
	}

	m := resize.Resize(maxWidth, 0, img, resize.Lanczos3)

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, m, nil)
	case "png":
		err = png.Encode(&buf, m)
	default:
		return data
	}
	if err != nil {
		return data
	}
	return buf.Bytes()
}
