package handlers

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrstyle/internal/cache"
	"github.com/cristianadrielbraun/qrstyle/internal/qrstyle"
)

// Handler holds the dependencies shared by the HTTP handlers.
type Handler struct {
	renderer  *qrstyle.Renderer
	cache     cache.Cache
	cacheTTL  time.Duration
	uploadDir string
	maxUpload int64
	logger    *log.Logger
}

// Options configures a Handler. Zero fields fall back to usable defaults.
type Options struct {
	Renderer  *qrstyle.Renderer
	Cache     cache.Cache
	CacheTTL  time.Duration
	UploadDir string
	MaxUpload int64
	Logger    *log.Logger
}

// New returns a Handler built from opts.
func New(opts Options) *Handler {
	h := &Handler{
		renderer:  opts.Renderer,
		cache:     opts.Cache,
		cacheTTL:  opts.CacheTTL,
		uploadDir: opts.UploadDir,
		maxUpload: opts.MaxUpload,
		logger:    opts.Logger,
	}
	if h.renderer == nil {
		h.renderer = qrstyle.NewRenderer(nil)
	}
	if h.cache == nil {
		h.cache = cache.NewNullCache()
	}
	if h.maxUpload <= 0 {
		h.maxUpload = qrstyle.DefaultMaxLogoBytes
	}
	if h.logger == nil {
		h.logger = log.Default()
	}
	return h
}

// Router returns a gin engine with middleware and every route registered.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(AccessLog(h.logger))

	r.GET("/healthz", h.Health)

	api := r.Group("/api")
	{
		api.GET("/qr", h.QRCodeHandler)
		api.GET("/qr/download", h.DownloadHandler)
		api.POST("/logo", h.UploadLogo)
	}
	return r
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// statusFor maps an engine error kind to an HTTP status.
func statusFor(kind qrstyle.Kind) int {
	switch kind {
	case qrstyle.KindValidation:
		return http.StatusBadRequest
	case qrstyle.KindEncoding, qrstyle.KindLogoDecode:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) abortWithError(c *gin.Context, err error) {
	kind := qrstyle.KindOf(err)
	if kind == "" {
		kind = qrstyle.KindRender
	}
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		h.logger.Error("render failed", "request_id", c.GetString(requestIDKey), "err", err)
	} else {
		h.logger.Debug("request rejected", "request_id", c.GetString(requestIDKey), "code", kind, "err", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": qrstyle.Message(err), "code": string(kind)})
}
