package qrstyle

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"  // logo decoder
	_ "image/jpeg" // logo decoder
	_ "image/png"  // logo decoder
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/webp" // logo decoder
)

// DefaultMaxLogoBytes caps logo payloads read from any source.
const DefaultMaxLogoBytes = 5 << 20

// LogoLoader resolves a logo image source. size is the side in pixels the
// logo will occupy; vector sources are rasterized at that size.
type LogoLoader interface {
	Load(ctx context.Context, source string, size int) (image.Image, error)
}

// SourceLoader reads logos from data: URLs, http(s) URLs, or file names
// inside Dir. Servers exposed to untrusted callers should set Client to
// NewPublicClient or set DisableRemote.
type SourceLoader struct {
	Client        *http.Client
	Dir           string
	MaxBytes      int64
	DisableRemote bool
}

// NewSourceLoader returns a loader that resolves file names inside dir
// (an empty dir disables file sources) and fetches remote logos with timeout.
func NewSourceLoader(dir string, timeout time.Duration, maxBytes int64) *SourceLoader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxLogoBytes
	}
	return &SourceLoader{
		Client:   &http.Client{Timeout: timeout},
		Dir:      dir,
		MaxBytes: maxBytes,
	}
}

// Load fetches and decodes source. Every failure is a LOGO_DECODE_FAILURE.
func (l *SourceLoader) Load(ctx context.Context, source string, size int) (image.Image, error) {
	data, err := l.read(ctx, source)
	if err != nil {
		return nil, wrapError(KindLogoDecode, err, "failed to read logo")
	}
	img, err := DecodeLogo(data, size)
	if err != nil {
		return nil, wrapError(KindLogoDecode, err, "failed to decode logo")
	}
	return img, nil
}

func (l *SourceLoader) read(ctx context.Context, source string) ([]byte, error) {
	switch {
	case strings.HasPrefix(source, "data:"):
		return decodeDataURL(source)
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		if l.DisableRemote {
			return nil, fmt.Errorf("remote logo sources are disabled")
		}
		return l.fetch(ctx, source)
	default:
		return l.readFile(source)
	}
}

func (l *SourceLoader) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, rawURL)
	}
	return l.readLimited(resp.Body)
}

func (l *SourceLoader) readFile(name string) ([]byte, error) {
	if l.Dir == "" {
		return nil, fmt.Errorf("file logo sources are disabled")
	}
	f, err := os.Open(filepath.Join(l.Dir, filepath.Base(name)))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return l.readLimited(f)
}

func (l *SourceLoader) readLimited(r io.Reader) ([]byte, error) {
	max := l.MaxBytes
	if max <= 0 {
		max = DefaultMaxLogoBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("logo exceeds %d bytes", max)
	}
	return data, nil
}

func decodeDataURL(s string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URL")
	}
	if strings.HasSuffix(meta, ";base64") {
		return base64.StdEncoding.DecodeString(payload)
	}
	v, err := url.PathUnescape(payload)
	if err != nil {
		return nil, err
	}
	return []byte(v), nil
}

// DecodeLogo decodes a raster image in any registered format, or rasterizes
// an SVG document at size×size.
func DecodeLogo(data []byte, size int) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty logo")
	}
	if isSVG(data) {
		return rasterizeSVG(data, size)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if b := img.Bounds(); b.Empty() {
		return nil, fmt.Errorf("logo has no pixels")
	}
	return img, nil
}

func isSVG(data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(bytes.ToLower(head), []byte("<svg"))
}

func rasterizeSVG(data []byte, size int) (image.Image, error) {
	if size < 1 {
		return nil, fmt.Errorf("invalid raster size %d", size)
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, err
	}
	if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
		return nil, fmt.Errorf("svg logo has no usable viewBox")
	}
	icon.SetTarget(0, 0, float64(size), float64(size))
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, dst, dst.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1)
	return dst, nil
}
