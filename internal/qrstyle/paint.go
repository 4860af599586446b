package qrstyle

import (
	"image/color"

	"github.com/fogleman/gg"
)

// surface is the subset of a stateful drawing context the renderer needs.
// *gg.Context satisfies it.
type surface interface {
	SetColor(c color.Color)
	Clear()
	DrawRectangle(x, y, w, h float64)
	DrawRoundedRectangle(x, y, w, h, r float64)
	DrawCircle(x, y, r float64)
	Fill()
}

var _ surface = (*gg.Context)(nil)

// layout is the pixel geometry of one render.
type layout struct {
	modules int // module count of the symbol
	margin  int // quiet zone in modules
	cell    int // pixels per module
	side    int // surface side in pixels
}

// newLayout snaps the surface to a whole number of pixels per module so that
// module edges land on pixel boundaries.
func newLayout(modules, margin, targetSize int) (layout, error) {
	span := modules + 2*margin
	cell := targetSize / span
	if cell < 1 {
		return layout{}, newError(KindValidation,
			"target size %d is too small for %d modules with margin %d", targetSize, modules, margin)
	}
	return layout{modules: modules, margin: margin, cell: cell, side: cell * span}, nil
}

// origin is the pixel offset of module (0,0).
func (l layout) origin() int { return l.margin * l.cell }

// cellRect returns the top-left corner and size of module (row, col).
func (l layout) cellRect(row, col int) (x, y, size float64) {
	o := l.origin()
	return float64(o + col*l.cell), float64(o + row*l.cell), float64(l.cell)
}

type primitiveKind int

const (
	primRect primitiveKind = iota
	primRoundedRect
	primCircle
)

// primitive is a shape with its radius expressed as a fraction of the cell.
type primitive struct {
	kind   primitiveKind
	radius float64
}

// selectPrimitive picks the shape for a dark module in zone z.
func selectPrimitive(z Zone, style StyleConfig) primitive {
	switch {
	case z == ZoneCornerBlock && style.CornerShape == CornerRounded:
		return primitive{kind: primRoundedRect, radius: 1.0 / 3}
	case z == ZoneCornerDot && style.CornerDotStyle == CornerDotDot:
		return primitive{kind: primCircle, radius: 1.0 / 2}
	}
	switch style.DotShape {
	case DotRounded:
		return primitive{kind: primRoundedRect, radius: 1.0 / 4}
	case DotDots:
		return primitive{kind: primCircle, radius: 1.0 / 2}
	default:
		return primitive{kind: primRect}
	}
}

// paintModules fills the surface with light and paints one primitive per dark
// module. The fill color is set before every primitive.
func paintModules(s surface, grid *ModuleGrid, l layout, style StyleConfig, dark, light color.Color) {
	s.SetColor(light)
	s.Clear()

	n := grid.Size()
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			if !grid.Dark(r, c) {
				continue
			}
			x, y, size := l.cellRect(r, c)
			drawPrimitive(s, selectPrimitive(Classify(r, c, n), style), x, y, size, dark)
		}
	}
}

func drawPrimitive(s surface, p primitive, x, y, size float64, fill color.Color) {
	s.SetColor(fill)
	switch p.kind {
	case primRoundedRect:
		s.DrawRoundedRectangle(x, y, size, size, size*p.radius)
	case primCircle:
		s.DrawCircle(x+size/2, y+size/2, size*p.radius)
	default:
		s.DrawRectangle(x, y, size, size)
	}
	s.Fill()
}
