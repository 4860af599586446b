package qrstyle

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

func TestRenderSVGMatchesModules(t *testing.T) {
	req := NewRequest("https://example.com")
	req.TargetSize = 270
	req.Color = ColorConfig{Dark: "#7E22CE", Light: "#FAF5FF"}
	req.Style.DotShape = DotDots
	req.Logo = NewLogoConfig("ignored.png")

	svg, err := RenderSVG(req)
	if err != nil {
		t.Fatal(err)
	}
	sym, err := Encode("https://example.com", LevelM)
	if err != nil {
		t.Fatal(err)
	}
	modules, err := sym.Modules()
	if err != nil {
		t.Fatal(err)
	}
	dark := 0
	for _, row := range modules {
		for _, v := range row {
			if v {
				dark++
			}
		}
	}

	if got := strings.Count(svg, `width="1" height="1"`); got != dark {
		t.Errorf("svg has %d module rects, want %d", got, dark)
	}
	if !strings.Contains(svg, `fill="#7e22ce"`) || !strings.Contains(svg, `fill="#faf5ff"`) {
		t.Error("svg does not carry the configured colors")
	}
	if strings.Contains(svg, "<circle") || strings.Contains(svg, "<image") {
		t.Error("vector output must not apply shapes or logos")
	}

	// Rasterize the markup and check module centers.
	icon, err := oksvg.ReadIconStream(strings.NewReader(svg), oksvg.IgnoreErrorMode)
	if err != nil {
		t.Fatal(err)
	}
	const size = 270
	icon.SetTarget(0, 0, size, size)
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	icon.Draw(rasterx.NewDasher(size, size, rasterx.NewScannerGV(size, size, dst, dst.Bounds())), 1)

	cell := size / (len(modules) + 2)
	for r := range modules {
		for c := range modules[r] {
			x, y := cell+c*cell+cell/2, cell+r*cell+cell/2
			got := nrgbaAt(dst, x, y)
			want := mustHex(t, "#FAF5FF")
			if modules[r][c] {
				want = mustHex(t, "#7E22CE")
			}
			if !near(got, want, 4) {
				t.Fatalf("module (%d,%d) rasterized to %v, want %v", r, c, got, want)
			}
		}
	}
}

func TestRenderSVGValidation(t *testing.T) {
	if _, err := RenderSVG(NewRequest("")); !IsKind(err, KindValidation) {
		t.Errorf("err = %v, want VALIDATION", err)
	}
}

func TestRenderedImageEncodings(t *testing.T) {
	img, err := Render(context.Background(), NewRequest("https://example.com"))
	if err != nil {
		t.Fatal(err)
	}

	data, err := img.Encode(FormatPNG)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("decoded bounds = %v, want %v", decoded.Bounds(), img.Bounds())
	}

	jpg, err := img.Encode(FormatJPEG)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := jpeg.Decode(bytes.NewReader(jpg)); err != nil {
		t.Fatalf("jpeg decode: %v", err)
	}

	if _, err := img.Encode(FormatSVG); !IsKind(err, KindValidation) {
		t.Errorf("svg raster encode err = %v, want VALIDATION", err)
	}

	url, err := img.DataURL(FormatPNG)
	if err != nil {
		t.Fatal(err)
	}
	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(url, prefix) {
		t.Fatalf("data URL prefix = %q", url[:len(prefix)])
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, prefix))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(raw, data) {
		t.Error("data URL payload differs from PNG bytes")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"", FormatPNG, true},
		{"PNG", FormatPNG, true},
		{"jpeg", FormatJPEG, true},
		{"jpg", FormatJPEG, true},
		{"svg", FormatSVG, true},
		{"gif", "", false},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
	if FormatSVG.ContentType() != "image/svg+xml" || FormatJPEG.Extension() != ".jpg" {
		t.Error("unexpected format metadata")
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
		ok   bool
	}{
		{"#7E22CE", color.NRGBA{R: 0x7e, G: 0x22, B: 0xce, A: 0xff}, true},
		{"faf5ff", color.NRGBA{R: 0xfa, G: 0xf5, B: 0xff, A: 0xff}, true},
		{"#fff", color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, true},
		{" #000000 ", color.NRGBA{A: 0xff}, true},
		{"#12345", color.NRGBA{}, false},
		{"#gggggg", color.NRGBA{}, false},
		{"", color.NRGBA{}, false},
	}
	for _, tt := range tests {
		got, err := ParseHexColor(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseHexColor(%q) err = %v", tt.in, err)
			continue
		}
		if tt.ok && got != tt.want {
			t.Errorf("ParseHexColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if !tt.ok && !IsKind(err, KindValidation) {
			t.Errorf("ParseHexColor(%q) err kind = %q", tt.in, KindOf(err))
		}
	}
	if got := HexColor(color.NRGBA{R: 0x7e, G: 0x22, B: 0xce, A: 0xff}); got != "#7e22ce" {
		t.Errorf("HexColor = %q", got)
	}
}

func TestNormalizeURL(t *testing.T) {
	if got, err := NormalizeURL("  https://example.com/a?b=c  "); err != nil || got != "https://example.com/a?b=c" {
		t.Errorf("NormalizeURL = %q, %v", got, err)
	}
	for _, bad := range []string{"", "   ", "example.com", "mailto:a@b.c", "https://", "/relative", "https://example.com/" + strings.Repeat("a", MaxPayloadLength)} {
		if _, err := NormalizeURL(bad); !IsKind(err, KindValidation) {
			t.Errorf("NormalizeURL(%q) err = %v, want VALIDATION", bad, err)
		}
	}
	if got := DefaultScheme("example.com"); got != "https://example.com" {
		t.Errorf("DefaultScheme = %q", got)
	}
	if got := DefaultScheme("http://example.com"); got != "http://example.com" {
		t.Errorf("DefaultScheme = %q", got)
	}
}

func TestErrorChain(t *testing.T) {
	cause := bytes.ErrTooLarge
	err := wrapError(KindRender, cause, "surface %d", 3)
	if err.Error() != "RENDER_FAILURE: surface 3: "+cause.Error() {
		t.Errorf("Error() = %q", err.Error())
	}
	if Message(err) != "surface 3" {
		t.Errorf("Message = %q", Message(err))
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap lost the cause")
	}
	if KindOf(cause) != "" || IsKind(nil, KindRender) {
		t.Error("foreign errors must not carry a kind")
	}
}
