package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cristianadrielbraun/qrstyle/internal/qrstyle"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	url    string
	output string // file path, or "-" for stdout
	format string // overrides the output extension

	margin int
	size   int
	level  string
	dark   string
	light  string

	dotShape       string
	cornerShape    string
	cornerDotStyle string

	logo            string
	logoDir         string
	logoOpacity     float64
	logoBorder      bool
	logoBorderWidth int
	logoBorderColor string
}

func newRenderCmd() *cobra.Command {
	def := qrstyle.NewRequest("")
	defLogo := qrstyle.NewLogoConfig("")
	opts := renderOpts{
		margin:          def.Margin,
		size:            def.TargetSize,
		level:           string(def.Level),
		dark:            def.Color.Dark,
		light:           def.Color.Light,
		dotShape:        string(def.Style.DotShape),
		cornerShape:     string(def.Style.CornerShape),
		cornerDotStyle:  string(def.Style.CornerDotStyle),
		logoOpacity:     defLogo.Opacity,
		logoBorder:      defLogo.Border,
		logoBorderWidth: defLogo.BorderWidth,
		logoBorderColor: defLogo.BorderColor,
	}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a styled QR code to a file",
		Example: `  qrstyle render --url https://example.com --out code.png
  qrstyle render --url example.com --dots dots --corner rounded --out code.jpg
  qrstyle render --url https://example.com --logo logo.svg --logo-dir . --out code.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.url, "url", "u", "", "URL to encode (https:// is assumed when no scheme is given)")
	f.StringVarP(&opts.output, "out", "o", "", "output file (.png, .jpg or .svg), or - for stdout")
	f.StringVarP(&opts.format, "format", "f", "", "output format: png, jpg, svg (default from --out extension)")
	f.IntVar(&opts.margin, "margin", opts.margin, "quiet zone in modules (0-5)")
	f.IntVar(&opts.size, "size", opts.size, "target image size in pixels (100-1000)")
	f.StringVar(&opts.level, "level", opts.level, "error correction level: L, M, Q, H")
	f.StringVar(&opts.dark, "dark", opts.dark, "module color")
	f.StringVar(&opts.light, "light", opts.light, "background color")
	f.StringVar(&opts.dotShape, "dots", opts.dotShape, "module shape: square, rounded, dots")
	f.StringVar(&opts.cornerShape, "corner", opts.cornerShape, "finder ring shape: square, rounded")
	f.StringVar(&opts.cornerDotStyle, "corner-dot", opts.cornerDotStyle, "finder center style: square, dot")
	f.StringVar(&opts.logo, "logo", "", "logo source: data: URL, http(s) URL, or file name inside --logo-dir")
	f.StringVar(&opts.logoDir, "logo-dir", "", "directory file logos are resolved in")
	f.Float64Var(&opts.logoOpacity, "logo-opacity", opts.logoOpacity, "logo opacity (0-1)")
	f.BoolVar(&opts.logoBorder, "logo-border", opts.logoBorder, "pad the logo background patch by the border width")
	f.IntVar(&opts.logoBorderWidth, "logo-border-width", opts.logoBorderWidth, "logo border width in pixels")
	f.StringVar(&opts.logoBorderColor, "logo-border-color", opts.logoBorderColor, "logo border color")
	cmd.MarkFlagRequired("url")
	cmd.MarkFlagRequired("out")

	return cmd
}

func (o renderOpts) request() qrstyle.Request {
	req := qrstyle.Request{
		Payload:    qrstyle.DefaultScheme(o.url),
		Margin:     o.margin,
		TargetSize: o.size,
		Level:      qrstyle.Level(strings.ToUpper(o.level)),
		Color:      qrstyle.ColorConfig{Dark: o.dark, Light: o.light},
		Style: qrstyle.StyleConfig{
			DotShape:       qrstyle.DotShape(o.dotShape),
			CornerShape:    qrstyle.CornerShape(o.cornerShape),
			CornerDotStyle: qrstyle.CornerDotStyle(o.cornerDotStyle),
		},
	}
	if o.logo != "" {
		req.Logo = &qrstyle.LogoConfig{
			ImageSource: o.logo,
			Opacity:     o.logoOpacity,
			Border:      o.logoBorder,
			BorderWidth: o.logoBorderWidth,
			BorderColor: o.logoBorderColor,
		}
	}
	return req
}

// outputFormat picks the format from --format, then from the --out extension.
func (o renderOpts) outputFormat() (qrstyle.Format, error) {
	if o.format != "" {
		return qrstyle.ParseFormat(o.format)
	}
	if o.output == "-" {
		return qrstyle.FormatPNG, nil
	}
	ext := strings.TrimPrefix(filepath.Ext(o.output), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot infer format from %q; pass --format", o.output)
	}
	return qrstyle.ParseFormat(ext)
}

func runRender(ctx context.Context, opts renderOpts, stdout io.Writer) error {
	logger := loggerFromContext(ctx)
	start := time.Now()

	format, err := opts.outputFormat()
	if err != nil {
		return err
	}
	req := opts.request()

	var data []byte
	if format == qrstyle.FormatSVG {
		if req.Logo != nil {
			logger.Warn("vector output does not support logos; ignoring --logo")
		}
		svg, err := qrstyle.RenderSVG(req)
		if err != nil {
			return err
		}
		data = []byte(svg)
	} else {
		renderer := qrstyle.NewRenderer(qrstyle.NewSourceLoader(opts.logoDir, 10*time.Second, qrstyle.DefaultMaxLogoBytes))
		img, err := renderer.Render(ctx, req)
		if err != nil {
			return err
		}
		logger.Debug("rendered", "modules", img.ModuleCount(), "cell", img.CellSize(), "side", img.Bounds().Dx())
		if data, err = img.Encode(format); err != nil {
			return err
		}
	}

	if opts.output == "-" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	logger.Infof("Wrote %s (%d bytes, %s)", opts.output, len(data), time.Since(start).Round(time.Millisecond))
	return nil
}
