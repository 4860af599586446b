package qrstyle

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
)

// Format is a raster output format.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpg"
	FormatSVG  Format = "svg"
)

// ParseFormat accepts png, jpg, jpeg and svg in any case. Empty means png.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "svg":
		return FormatSVG, nil
	}
	return "", newError(KindValidation, "unsupported output format %q", s)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatSVG:
		return "image/svg+xml"
	default:
		return "image/png"
	}
}

// Extension returns the file extension of f including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

const jpegQuality = 92

// RenderedImage is the immutable result of a raster render.
type RenderedImage struct {
	img        *image.NRGBA
	cellSize   int
	quietZone  int
	moduleSize int
}

// Bounds returns the image bounds.
func (r *RenderedImage) Bounds() image.Rectangle { return r.img.Bounds() }

// At returns the color at (x, y).
func (r *RenderedImage) At(x, y int) color.Color { return r.img.At(x, y) }

// ColorModel implements image.Image.
func (r *RenderedImage) ColorModel() color.Model { return r.img.ColorModel() }

// CellSize is the side of one module in pixels.
func (r *RenderedImage) CellSize() int { return r.cellSize }

// QuietZone is the blank border width in pixels.
func (r *RenderedImage) QuietZone() int { return r.quietZone }

// ModuleCount is the symbol side in modules.
func (r *RenderedImage) ModuleCount() int { return r.moduleSize }

// PNG encodes the image as PNG.
func (r *RenderedImage) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, r.img); err != nil {
		return nil, wrapError(KindRender, err, "failed to encode PNG")
	}
	return buf.Bytes(), nil
}

// JPEG encodes the image as JPEG over an opaque background.
func (r *RenderedImage) JPEG() ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, r.img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, wrapError(KindRender, err, "failed to encode JPEG")
	}
	return buf.Bytes(), nil
}

// Encode serializes the image in the given raster format.
func (r *RenderedImage) Encode(f Format) ([]byte, error) {
	switch f {
	case FormatPNG:
		return r.PNG()
	case FormatJPEG:
		return r.JPEG()
	}
	return nil, newError(KindValidation, "format %q is not a raster format", f)
}

// DataURL encodes the image and wraps it in a base64 data URL.
func (r *RenderedImage) DataURL(f Format) (string, error) {
	data, err := r.Encode(f)
	if err != nil {
		return "", err
	}
	return DataURL(f.ContentType(), data), nil
}

// DataURL builds a base64 data URL.
func DataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
