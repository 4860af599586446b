package qrstyle

import (
	"bytes"
	"image"
	_ "image/png" // decoder for the reference surface
	"math"

	"github.com/yeqown/go-qrcode/writer/standard"
)

// maxBlockWidth is the largest module width the standard writer accepts.
const maxBlockWidth = math.MaxUint8

// ModuleGrid is a square boolean matrix; true is a dark module.
type ModuleGrid struct {
	size  int
	cells []bool
}

// NewModuleGrid copies rows into a grid. rows must be square.
func NewModuleGrid(rows [][]bool) (*ModuleGrid, error) {
	n := len(rows)
	g := &ModuleGrid{size: n, cells: make([]bool, n*n)}
	for r, row := range rows {
		if len(row) != n {
			return nil, newError(KindRender, "module grid row %d has %d cells, want %d", r, len(row), n)
		}
		copy(g.cells[r*n:], row)
	}
	return g, nil
}

// Size is the module count per side.
func (g *ModuleGrid) Size() int { return g.size }

// Dark reports whether the module at (row, col) is dark.
func (g *ModuleGrid) Dark(row, col int) bool {
	return g.cells[row*g.size+col]
}

// DarkCount returns the number of dark modules.
func (g *ModuleGrid) DarkCount() int {
	n := 0
	for _, c := range g.cells {
		if c {
			n++
		}
	}
	return n
}

// ExtractGrid renders the plain symbol onto a private reference raster close
// to targetSize and samples the midpoint of every cell. The module count is
// always read from the symbol, never assumed.
func ExtractGrid(sym *Symbol, targetSize int) (*ModuleGrid, error) {
	n := sym.ModuleCount()
	block := targetSize / n
	if block < 1 {
		block = 1
	}
	if block > maxBlockWidth {
		block = maxBlockWidth
	}

	var buf bytes.Buffer
	w := standard.NewWithWriter(nopCloser{&buf},
		standard.WithQRWidth(uint8(block)),
		standard.WithBorderWidth(0),
		standard.WithBgColorRGBHex("#FFFFFF"),
		standard.WithFgColorRGBHex("#000000"),
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
	)
	if err := sym.Save(w); err != nil {
		return nil, wrapError(KindRender, err, "failed to render reference surface")
	}

	img, _, err := image.Decode(&buf)
	if err != nil {
		return nil, wrapError(KindRender, err, "failed to decode reference surface")
	}
	return sampleGrid(img, n)
}

// sampleGrid thresholds the pixel at the center of each of n×n cells of img.
func sampleGrid(img image.Image, n int) (*ModuleGrid, error) {
	b := img.Bounds()
	if b.Dx() != b.Dy() || b.Dx() < n {
		return nil, newError(KindRender, "reference surface is %dx%d, cannot hold %d modules", b.Dx(), b.Dy(), n)
	}
	cell := float64(b.Dx()) / float64(n)

	g := &ModuleGrid{size: n, cells: make([]bool, n*n)}
	for r := 0; r < n; r++ {
		y := b.Min.Y + int(math.Floor(float64(r)*cell+cell/2))
		for c := 0; c < n; c++ {
			x := b.Min.X + int(math.Floor(float64(c)*cell+cell/2))
			g.cells[r*n+c] = isDarkPixel(img.At(x, y))
		}
	}
	return g, nil
}

// isDarkPixel is true when every channel is below the midpoint of its range.
func isDarkPixel(c interface{ RGBA() (r, g, b, a uint32) }) bool {
	const mid = 0x8000
	r, g, b, _ := c.RGBA()
	return r < mid && g < mid && b < mid
}

type nopCloser struct {
	*bytes.Buffer
}

func (nopCloser) Close() error { return nil }
