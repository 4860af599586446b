package qrstyle

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

// LogoRatio is the logo side as a fraction of the target size. It is fixed.
const LogoRatio = 0.20

// logoGeometry locates the logo and its background patch on the surface.
type logoGeometry struct {
	region image.Rectangle
	patch  image.Rectangle
}

func logoSide(targetSize int) int {
	return int(math.Round(LogoRatio * float64(targetSize)))
}

func newLogoGeometry(l layout, targetSize int, cfg *logoConfig) logoGeometry {
	side := logoSide(targetSize)
	x0 := (l.side - side) / 2
	region := image.Rect(x0, x0, x0+side, x0+side)
	patch := region
	if cfg.border {
		patch = region.Inset(-cfg.borderWidth)
	}
	return logoGeometry{region: region, patch: patch.Intersect(image.Rect(0, 0, l.side, l.side))}
}

// compositeLogo paints the background patch and border onto dc, then blends
// the logo scaled to fill the region with the configured opacity. It must run
// after every module has been painted.
func compositeLogo(dc *gg.Context, geo logoGeometry, cfg *logoConfig, logo image.Image, patchColor color.Color) *image.NRGBA {
	p := geo.patch
	dc.SetColor(patchColor)
	dc.DrawRectangle(float64(p.Min.X), float64(p.Min.Y), float64(p.Dx()), float64(p.Dy()))
	dc.Fill()

	if cfg.border && cfg.borderColor != nil && cfg.borderWidth > 0 {
		bw := float64(cfg.borderWidth)
		r := geo.region
		dc.SetColor(*cfg.borderColor)
		dc.SetLineWidth(bw)
		dc.DrawRectangle(float64(r.Min.X)-bw/2, float64(r.Min.Y)-bw/2, float64(r.Dx())+bw, float64(r.Dy())+bw)
		dc.Stroke()
	}

	base := imaging.Clone(dc.Image())
	scaled := imaging.Resize(logo, geo.region.Dx(), geo.region.Dy(), imaging.Lanczos)
	return imaging.Overlay(base, scaled, geo.region.Min, cfg.opacity)
}
