package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrstyle/internal/cache"
	"github.com/cristianadrielbraun/qrstyle/internal/qrstyle"
)

// qrQuery is the query string accepted by the QR endpoints. Optional numeric
// and boolean fields are pointers so an absent parameter keeps the engine
// default.
type qrQuery struct {
	URL    string `form:"url" binding:"required"`
	Format string `form:"format"`
	As     string `form:"as" binding:"omitempty,oneof=image dataurl"`

	Margin *int   `form:"margin"`
	Size   *int   `form:"size"`
	Level  string `form:"level"`

	Dark  string `form:"dark"`
	Light string `form:"light"`

	DotShape       string `form:"dotShape"`
	CornerShape    string `form:"cornerShape"`
	CornerDotStyle string `form:"cornerDotStyle"`

	Logo            string   `form:"logo"`
	LogoOpacity     *float64 `form:"logoOpacity"`
	LogoBorder      *bool    `form:"logoBorder"`
	LogoBorderWidth *int     `form:"logoBorderWidth"`
	LogoBorderColor string   `form:"logoBorderColor"`
}

// request converts the query into an engine request. Scheme-less URLs get
// https:// so "example.com" works from a browser form.
func (q qrQuery) request() qrstyle.Request {
	req := qrstyle.NewRequest(qrstyle.DefaultScheme(q.URL))
	if q.Margin != nil {
		req.Margin = *q.Margin
	}
	if q.Size != nil {
		req.TargetSize = *q.Size
	}
	if q.Level != "" {
		req.Level = qrstyle.Level(q.Level)
	}
	if q.Dark != "" {
		req.Color.Dark = q.Dark
	}
	if q.Light != "" {
		req.Color.Light = q.Light
	}
	if q.DotShape != "" {
		req.Style.DotShape = qrstyle.DotShape(strings.ToLower(q.DotShape))
	}
	if q.CornerShape != "" {
		req.Style.CornerShape = qrstyle.CornerShape(strings.ToLower(q.CornerShape))
	}
	if q.CornerDotStyle != "" {
		req.Style.CornerDotStyle = qrstyle.CornerDotStyle(strings.ToLower(q.CornerDotStyle))
	}

	if strings.TrimSpace(q.Logo) != "" {
		logo := qrstyle.NewLogoConfig(q.Logo)
		if q.LogoOpacity != nil {
			logo.Opacity = *q.LogoOpacity
		}
		if q.LogoBorder != nil {
			logo.Border = *q.LogoBorder
		}
		if q.LogoBorderWidth != nil {
			logo.BorderWidth = *q.LogoBorderWidth
		}
		if q.LogoBorderColor != "" {
			logo.BorderColor = q.LogoBorderColor
		}
		req.Logo = logo
	}
	return req
}

// rendered is one encoded output, possibly served from cache.
type rendered struct {
	data    []byte
	format  qrstyle.Format
	payload string
	cached  bool
}

// QRCodeHandler serves an inline preview. With as=dataurl the image is
// returned as JSON instead of raw bytes.
func (h *Handler) QRCodeHandler(c *gin.Context) {
	var q qrQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortBadQuery(c, err)
		return
	}
	out, err := h.render(c.Request.Context(), q)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	setCacheHeader(c, out.cached)
	c.Header("Cache-Control", "public, max-age=3600")
	if q.As == "dataurl" {
		c.JSON(http.StatusOK, gin.H{"dataUrl": qrstyle.DataURL(out.format.ContentType(), out.data)})
		return
	}
	c.Data(http.StatusOK, out.format.ContentType(), out.data)
}

// DownloadHandler serves the same output as QRCodeHandler as an attachment.
func (h *Handler) DownloadHandler(c *gin.Context) {
	var q qrQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortBadQuery(c, err)
		return
	}
	out, err := h.render(c.Request.Context(), q)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	setCacheHeader(c, out.cached)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadName(out.payload, out.format)))
	c.Data(http.StatusOK, out.format.ContentType(), out.data)
}

func (h *Handler) render(ctx context.Context, q qrQuery) (*rendered, error) {
	format, err := qrstyle.ParseFormat(q.Format)
	if err != nil {
		return nil, err
	}
	req, err := q.request().Canonical()
	if err != nil {
		return nil, err
	}
	out := &rendered{format: format, payload: req.Payload}

	key, err := cache.Key("qr", req, format)
	if err != nil {
		h.logger.Warn("uncacheable request", "err", err)
		key = ""
	}
	if key != "" {
		if data, ok, err := h.cache.Get(ctx, key); err != nil {
			h.logger.Warn("cache read failed", "err", err)
		} else if ok {
			out.data, out.cached = data, true
			return out, nil
		}
	}

	if format == qrstyle.FormatSVG {
		svg, err := h.renderer.RenderSVG(req)
		if err != nil {
			return nil, err
		}
		out.data = []byte(svg)
	} else {
		img, err := h.renderer.Render(ctx, req)
		if err != nil {
			return nil, err
		}
		if out.data, err = img.Encode(format); err != nil {
			return nil, err
		}
	}

	if key != "" {
		if err := h.cache.Set(ctx, key, out.data, h.cacheTTL); err != nil {
			h.logger.Warn("cache write failed", "err", err)
		}
	}
	return out, nil
}

func abortBadQuery(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error": "invalid query: " + err.Error(),
		"code":  string(qrstyle.KindValidation),
	})
}

func setCacheHeader(c *gin.Context, hit bool) {
	if hit {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
}

// downloadName builds "qrcode-<host><ext>" keeping only filename-safe
// characters of the host.
func downloadName(payload string, f qrstyle.Format) string {
	name := "qrcode"
	if u, err := url.Parse(payload); err == nil {
		host := strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
				return r
			case r >= 'A' && r <= 'Z':
				return r + ('a' - 'A')
			case r == '.':
				return '-'
			}
			return -1
		}, u.Hostname())
		if host != "" {
			name += "-" + host
		}
	}
	return name + f.Extension()
}
