package qrstyle

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/yeqown/go-qrcode/v2"
)

// svgWriter is a qrcode.Writer that emits plain square modules in module
// units. Shapes and logos are not supported on this path.
type svgWriter struct {
	sb     strings.Builder
	margin int
	size   int
	dark   color.Color
	light  color.Color
}

func (w *svgWriter) Write(mat qrcode.Matrix) error {
	n := mat.Width()
	if n <= 0 || mat.Height() != n {
		return fmt.Errorf("invalid matrix %dx%d", n, mat.Height())
	}
	span := n + 2*w.margin

	w.sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	w.sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d" shape-rendering="crispEdges">`,
		span, span, w.size, w.size))
	w.sb.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" fill="%s"/>`, span, span, HexColor(w.light)))

	fill := HexColor(w.dark)
	mat.Iterate(qrcode.IterDirection_ROW, func(x, y int, v qrcode.QRValue) {
		if !v.IsSet() {
			return
		}
		w.sb.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="1" height="1" fill="%s"/>`,
			x+w.margin, y+w.margin, fill))
	})
	w.sb.WriteString(`</svg>`)
	return nil
}

func (w *svgWriter) Close() error { return nil }
