package qrstyle

import (
	"image/color"
	"testing"
)

// recorder is a surface that logs calls instead of drawing.
type recorder struct {
	current color.Color
	colored bool // SetColor called since the last Fill
	fills   []recordedFill
	clears  []color.Color
	t       *testing.T
}

type recordedFill struct {
	kind   primitiveKind
	radius float64
	fill   color.Color
	x, y   float64
}

func (r *recorder) SetColor(c color.Color) { r.current = c; r.colored = true }
func (r *recorder) Clear()                 { r.clears = append(r.clears, r.current) }

func (r *recorder) DrawRectangle(x, y, w, h float64) {
	r.begin(primRect, 0, x, y)
}

func (r *recorder) DrawRoundedRectangle(x, y, w, h, rad float64) {
	r.begin(primRoundedRect, rad, x, y)
}

func (r *recorder) DrawCircle(x, y, rad float64) {
	r.begin(primCircle, rad, x-rad, y-rad)
}

func (r *recorder) begin(k primitiveKind, rad, x, y float64) {
	if !r.colored {
		r.t.Fatalf("primitive drawn at (%v,%v) without setting a color first", x, y)
	}
	r.fills = append(r.fills, recordedFill{kind: k, radius: rad, fill: r.current, x: x, y: y})
}

func (r *recorder) Fill() { r.colored = false }

func testGrid(t *testing.T, payload string) *ModuleGrid {
	t.Helper()
	sym, err := Encode(payload, LevelM)
	if err != nil {
		t.Fatal(err)
	}
	g, err := ExtractGrid(sym, 300)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestPaintModulesOnePrimitivePerDarkModule(t *testing.T) {
	grid := testGrid(t, "https://example.com")
	l, err := newLayout(grid.Size(), 1, 300)
	if err != nil {
		t.Fatal(err)
	}
	dark := color.NRGBA{R: 0x7e, G: 0x22, B: 0xce, A: 0xff}
	light := color.NRGBA{R: 0xfa, G: 0xf5, B: 0xff, A: 0xff}

	for _, style := range allStyles() {
		rec := &recorder{t: t}
		paintModules(rec, grid, l, style, dark, light)

		if len(rec.clears) != 1 || rec.clears[0] != color.Color(light) {
			t.Fatalf("%+v: background clears = %v, want one with light color", style, rec.clears)
		}
		if got, want := len(rec.fills), grid.DarkCount(); got != want {
			t.Fatalf("%+v: %d primitives painted, want %d", style, got, want)
		}
		for _, f := range rec.fills {
			if f.fill != color.Color(dark) {
				t.Fatalf("%+v: primitive filled with %v, want %v", style, f.fill, dark)
			}
		}
	}
}

func TestPaintModulesSkipsLightModules(t *testing.T) {
	grid := testGrid(t, "https://example.com")
	l, _ := newLayout(grid.Size(), 2, 300)
	rec := &recorder{t: t}
	paintModules(rec, grid, l, StyleConfig{DotShape: DotSquare}, color.Black, color.White)

	for _, f := range rec.fills {
		col := (int(f.x) - l.origin()) / l.cell
		row := (int(f.y) - l.origin()) / l.cell
		if !grid.Dark(row, col) {
			t.Fatalf("primitive painted on light module (%d,%d)", row, col)
		}
	}
}

func TestSelectPrimitive(t *testing.T) {
	tests := []struct {
		name  string
		zone  Zone
		style StyleConfig
		want  primitive
	}{
		{"regular square", ZoneRegular, StyleConfig{DotShape: DotSquare}, primitive{kind: primRect}},
		{"regular rounded", ZoneRegular, StyleConfig{DotShape: DotRounded}, primitive{primRoundedRect, 1.0 / 4}},
		{"regular dots", ZoneRegular, StyleConfig{DotShape: DotDots}, primitive{primCircle, 1.0 / 2}},
		{"block rounded", ZoneCornerBlock, StyleConfig{DotShape: DotDots, CornerShape: CornerRounded}, primitive{primRoundedRect, 1.0 / 3}},
		{"block square falls back to dot shape", ZoneCornerBlock, StyleConfig{DotShape: DotDots, CornerShape: CornerSquare}, primitive{primCircle, 1.0 / 2}},
		{"dot as circle", ZoneCornerDot, StyleConfig{DotShape: DotSquare, CornerDotStyle: CornerDotDot}, primitive{primCircle, 1.0 / 2}},
		{"dot square falls back to dot shape", ZoneCornerDot, StyleConfig{DotShape: DotRounded, CornerDotStyle: CornerDotSquare}, primitive{primRoundedRect, 1.0 / 4}},
		{"dot ignores corner shape", ZoneCornerDot, StyleConfig{DotShape: DotSquare, CornerShape: CornerRounded}, primitive{kind: primRect}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := selectPrimitive(tt.zone, tt.style); got != tt.want {
				t.Errorf("selectPrimitive = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNewLayout(t *testing.T) {
	l, err := newLayout(25, 1, 300)
	if err != nil {
		t.Fatal(err)
	}
	if l.cell != 11 || l.side != 297 || l.origin() != 11 {
		t.Errorf("layout = %+v (origin %d), want cell 11 side 297 origin 11", l, l.origin())
	}

	if _, err := newLayout(177, 5, 100); !IsKind(err, KindValidation) {
		t.Errorf("err = %v, want VALIDATION", err)
	}
}

func allStyles() []StyleConfig {
	var out []StyleConfig
	for _, d := range []DotShape{DotSquare, DotRounded, DotDots} {
		for _, c := range []CornerShape{CornerSquare, CornerRounded} {
			for _, cd := range []CornerDotStyle{CornerDotSquare, CornerDotDot} {
				out = append(out, StyleConfig{DotShape: d, CornerShape: c, CornerDotStyle: cd})
			}
		}
	}
	return out
}
