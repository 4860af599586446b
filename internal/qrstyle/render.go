// Package qrstyle renders styled QR codes.
//
// A render encodes a URL payload with a standard QR encoder, recovers the
// module grid by sampling a plain reference raster, classifies every module
// into a finder-pattern zone, paints each dark module with the configured
// shape, and finally composites an optional centered logo. Renders share no
// mutable state and either return a complete image or fail with *Error.
//
//	img, err := qrstyle.Render(ctx, qrstyle.NewRequest("https://example.com"))
//	if err != nil {
//	    return err
//	}
//	data, err := img.PNG()
package qrstyle

import (
	"context"
	"image"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

// Renderer runs the pipeline. Its fields are read-only after construction,
// so one Renderer may serve concurrent calls.
type Renderer struct {
	logos LogoLoader
}

// NewRenderer returns a renderer resolving logos with loader. A nil loader
// accepts data: and http(s) logo sources only.
func NewRenderer(loader LogoLoader) *Renderer {
	if loader == nil {
		loader = NewSourceLoader("", 10*time.Second, DefaultMaxLogoBytes)
	}
	return &Renderer{logos: loader}
}

var defaultRenderer = NewRenderer(nil)

// Render renders req with the default renderer.
func Render(ctx context.Context, req Request) (*RenderedImage, error) {
	return defaultRenderer.Render(ctx, req)
}

// RenderSVG renders req as vector markup with the default renderer.
func RenderSVG(req Request) (string, error) {
	return defaultRenderer.RenderSVG(req)
}

// Render produces the styled raster for req.
func (r *Renderer) Render(ctx context.Context, req Request) (*RenderedImage, error) {
	cfg, err := req.validate()
	if err != nil {
		return nil, err
	}

	sym, err := Encode(cfg.payload, cfg.level)
	if err != nil {
		return nil, err
	}
	grid, err := ExtractGrid(sym, cfg.targetSize)
	if err != nil {
		return nil, err
	}
	l, err := newLayout(grid.Size(), cfg.margin, cfg.targetSize)
	if err != nil {
		return nil, err
	}

	// The logo is resolved before painting so a bad source aborts early.
	// It is still composited strictly after all modules.
	var (
		logoGeo logoGeometry
		logo    image.Image
	)
	if cfg.logo != nil {
		logoGeo = newLogoGeometry(l, cfg.targetSize, cfg.logo)
		logo, err = r.logos.Load(ctx, cfg.logo.source, logoGeo.region.Dx())
		if err != nil {
			if KindOf(err) == "" {
				err = wrapError(KindLogoDecode, err, "failed to load logo")
			}
			return nil, err
		}
		if logo == nil {
			return nil, newError(KindLogoDecode, "logo loader returned no image")
		}
	}

	dc := gg.NewContext(l.side, l.side)
	paintModules(dc, grid, l, cfg.style, cfg.dark, cfg.light)

	out := &RenderedImage{cellSize: l.cell, quietZone: l.origin(), moduleSize: l.modules}
	if cfg.logo == nil {
		out.img = imaging.Clone(dc.Image())
	} else {
		out.img = compositeLogo(dc, logoGeo, cfg.logo, logo, cfg.light)
	}
	return out, nil
}

// RenderSVG returns the encoder-native vector markup for req. Only the payload,
// error-correction level, margin, target size and colors apply; dot and corner
// shapes and logos are ignored on this path.
func (r *Renderer) RenderSVG(req Request) (string, error) {
	req.Logo = nil
	cfg, err := req.validate()
	if err != nil {
		return "", err
	}
	sym, err := Encode(cfg.payload, cfg.level)
	if err != nil {
		return "", err
	}
	w := &svgWriter{margin: cfg.margin, size: cfg.targetSize, dark: cfg.dark, light: cfg.light}
	if err := sym.Save(w); err != nil {
		return "", wrapError(KindRender, err, "failed to write vector output")
	}
	return w.sb.String(), nil
}
