package qrstyle

import (
	"image"
	"image/color"
	"strings"
	"testing"
)

func TestExtractGridMatchesEncoder(t *testing.T) {
	payloads := []string{
		"https://example.com",
		"https://qrcreator.link/r/abc123",
		"https://example.com/" + strings.Repeat("path/", 40),
	}
	for _, p := range payloads {
		for _, level := range []Level{LevelL, LevelM, LevelQ, LevelH} {
			sym, err := Encode(p, level)
			if err != nil {
				t.Fatalf("Encode(%q, %s): %v", p, level, err)
			}
			want, err := sym.Modules()
			if err != nil {
				t.Fatal(err)
			}
			for _, size := range []int{100, 300, 1000} {
				grid, err := ExtractGrid(sym, size)
				if err != nil {
					t.Fatalf("ExtractGrid(size=%d): %v", size, err)
				}
				if grid.Size() != sym.ModuleCount() {
					t.Fatalf("grid size = %d, want %d", grid.Size(), sym.ModuleCount())
				}
				for r := range want {
					for c := range want[r] {
						if grid.Dark(r, c) != want[r][c] {
							t.Fatalf("%q level %s size %d: module (%d,%d) = %v, want %v",
								p, level, size, r, c, grid.Dark(r, c), want[r][c])
						}
					}
				}
			}
		}
	}
}

func TestModuleCountGrowsWithPayload(t *testing.T) {
	short, err := Encode("https://a.io", LevelM)
	if err != nil {
		t.Fatal(err)
	}
	long, err := Encode("https://example.com/"+strings.Repeat("x", 300), LevelM)
	if err != nil {
		t.Fatal(err)
	}
	if short.ModuleCount() != 21 {
		t.Errorf("short payload module count = %d, want 21", short.ModuleCount())
	}
	if long.ModuleCount() <= short.ModuleCount() {
		t.Errorf("long payload module count = %d, want > %d", long.ModuleCount(), short.ModuleCount())
	}
}

func TestSampleGridUsesMidpoints(t *testing.T) {
	// 3x3 modules of 4px. Each dark module only has its center pixel set, so
	// corner sampling would read every module as light.
	const n, cell = 3, 4
	img := image.NewNRGBA(image.Rect(0, 0, n*cell, n*cell))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	dark := [][]bool{
		{true, false, true},
		{false, true, false},
		{true, true, false},
	}
	for r := range dark {
		for c := range dark[r] {
			if dark[r][c] {
				img.Set(c*cell+cell/2, r*cell+cell/2, color.Black)
			}
		}
	}
	g, err := sampleGrid(img, n)
	if err != nil {
		t.Fatal(err)
	}
	for r := range dark {
		for c := range dark[r] {
			if g.Dark(r, c) != dark[r][c] {
				t.Errorf("module (%d,%d) = %v, want %v", r, c, g.Dark(r, c), dark[r][c])
			}
		}
	}
}

func TestIsDarkPixelThreshold(t *testing.T) {
	tests := []struct {
		c    color.Color
		want bool
	}{
		{color.Black, true},
		{color.White, false},
		{color.NRGBA{R: 0x7f, G: 0x7f, B: 0x7f, A: 0xff}, true},
		{color.NRGBA{R: 0x80, G: 0x00, B: 0x00, A: 0xff}, false},
		{color.NRGBA{R: 0x00, G: 0x00, B: 0xff, A: 0xff}, false},
	}
	for _, tt := range tests {
		if got := isDarkPixel(tt.c); got != tt.want {
			t.Errorf("isDarkPixel(%v) = %v, want %v", tt.c, got, tt.want)
		}
	}
}

func TestSampleGridRejectsBadSurface(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 12))
	if _, err := sampleGrid(img, 3); !IsKind(err, KindRender) {
		t.Fatalf("err = %v, want RENDER_FAILURE", err)
	}
}

func TestNewModuleGridRejectsRagged(t *testing.T) {
	_, err := NewModuleGrid([][]bool{{true, false}, {true}})
	if !IsKind(err, KindRender) {
		t.Fatalf("err = %v, want RENDER_FAILURE", err)
	}
}
