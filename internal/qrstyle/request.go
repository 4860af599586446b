package qrstyle

import (
	"image/color"
	"strings"

	"github.com/yeqown/go-qrcode/v2"
)

// Level is a QR error-correction level.
type Level string

const (
	LevelL Level = "L"
	LevelM Level = "M"
	LevelQ Level = "Q"
	LevelH Level = "H"
)

func (l Level) encoderOption() (qrcode.EncodeOption, bool) {
	switch l {
	case LevelL:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionLow), true
	case LevelM:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionMedium), true
	case LevelQ:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionQuart), true
	case LevelH:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionHighest), true
	}
	return nil, false
}

// DotShape is the shape painted for regular modules.
type DotShape string

const (
	DotSquare  DotShape = "square"
	DotRounded DotShape = "rounded"
	DotDots    DotShape = "dots"
)

// CornerShape is the shape painted for finder-pattern frame modules.
type CornerShape string

const (
	CornerSquare  CornerShape = "square"
	CornerRounded CornerShape = "rounded"
)

// CornerDotStyle is the shape painted for the 3x3 finder-pattern centers.
type CornerDotStyle string

const (
	CornerDotSquare CornerDotStyle = "square"
	CornerDotDot    CornerDotStyle = "dot"
)

// Request bounds.
const (
	MinMargin         = 0
	MaxMargin         = 5
	MinTargetSize     = 100
	MaxTargetSize     = 1000
	MaxLogoBorder     = 50
	DefaultMargin     = 1
	DefaultTargetSize = 300
	DefaultLevel      = LevelM
	DefaultDark       = "#000000"
	DefaultLight      = "#FFFFFF"
)

// StyleConfig selects a shape per structural zone.
type StyleConfig struct {
	DotShape       DotShape       `json:"dotShape"`
	CornerShape    CornerShape    `json:"cornerShape"`
	CornerDotStyle CornerDotStyle `json:"cornerDotStyle"`
}

// ColorConfig holds hex colors for dark modules and background.
type ColorConfig struct {
	Dark  string `json:"dark"`
	Light string `json:"light"`
}

// LogoConfig describes an optional centered logo. The footprint is always
// LogoRatio of the target size.
type LogoConfig struct {
	ImageSource string  `json:"imageSource"`
	Opacity     float64 `json:"opacity"`
	Border      bool    `json:"border"`
	BorderWidth int     `json:"borderWidth"`
	BorderColor string  `json:"borderColor"`
}

// NewLogoConfig returns a logo configuration with default opacity and border.
func NewLogoConfig(source string) *LogoConfig {
	return &LogoConfig{
		ImageSource: source,
		Opacity:     1,
		Border:      true,
		BorderWidth: 5,
		BorderColor: "#FFFFFF",
	}
}

// Request is a single render invocation.
type Request struct {
	Payload    string      `json:"payload"`
	Margin     int         `json:"margin"`
	TargetSize int         `json:"targetSize"`
	Level      Level       `json:"errorCorrectionLevel"`
	Color      ColorConfig `json:"color"`
	Style      StyleConfig `json:"style"`
	Logo       *LogoConfig `json:"logo,omitempty"`
}

// NewRequest returns a request for payload with every option at its default.
func NewRequest(payload string) Request {
	return Request{
		Payload:    payload,
		Margin:     DefaultMargin,
		TargetSize: DefaultTargetSize,
		Level:      DefaultLevel,
		Color:      ColorConfig{Dark: DefaultDark, Light: DefaultLight},
		Style:      StyleConfig{DotShape: DotSquare, CornerShape: CornerSquare, CornerDotStyle: CornerDotSquare},
	}
}

// config is a validated Request with parsed values.
type config struct {
	payload    string
	margin     int
	targetSize int
	level      Level
	dark       color.NRGBA
	light      color.NRGBA
	style      StyleConfig
	logo       *logoConfig
}

type logoConfig struct {
	source      string
	opacity     float64
	border      bool
	borderWidth int
	borderColor *color.NRGBA
}

// validate checks every field and fills empty enum and color fields with
// their defaults. Margin and TargetSize are taken as given.
func (r Request) validate() (*config, error) {
	payload, err := NormalizeURL(r.Payload)
	if err != nil {
		return nil, err
	}
	if r.Margin < MinMargin || r.Margin > MaxMargin {
		return nil, newError(KindValidation, "margin must be between %d and %d, got %d", MinMargin, MaxMargin, r.Margin)
	}
	if r.TargetSize < MinTargetSize || r.TargetSize > MaxTargetSize {
		return nil, newError(KindValidation, "target size must be between %d and %d, got %d", MinTargetSize, MaxTargetSize, r.TargetSize)
	}

	cfg := &config{payload: payload, margin: r.Margin, targetSize: r.TargetSize}

	cfg.level = Level(strings.ToUpper(string(r.Level)))
	if cfg.level == "" {
		cfg.level = DefaultLevel
	}
	if _, ok := cfg.level.encoderOption(); !ok {
		return nil, newError(KindValidation, "unsupported error correction level %q", r.Level)
	}

	if cfg.dark, err = parseColorOr(r.Color.Dark, DefaultDark); err != nil {
		return nil, err
	}
	if cfg.light, err = parseColorOr(r.Color.Light, DefaultLight); err != nil {
		return nil, err
	}

	if cfg.style, err = r.Style.normalize(); err != nil {
		return nil, err
	}

	if r.Logo != nil {
		if cfg.logo, err = r.Logo.validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Canonical validates r and returns it with defaults filled in, the payload
// normalized, the level upper-cased and colors as lowercase "#rrggbb". Two
// requests with equal canonical forms render identical output.
func (r Request) Canonical() (Request, error) {
	cfg, err := r.validate()
	if err != nil {
		return Request{}, err
	}
	out := Request{
		Payload:    cfg.payload,
		Margin:     cfg.margin,
		TargetSize: cfg.targetSize,
		Level:      cfg.level,
		Color:      ColorConfig{Dark: HexColor(cfg.dark), Light: HexColor(cfg.light)},
		Style:      cfg.style,
	}
	if l := cfg.logo; l != nil {
		out.Logo = &LogoConfig{
			ImageSource: l.source,
			Opacity:     l.opacity,
			Border:      l.border,
			BorderWidth: l.borderWidth,
		}
		if l.borderColor != nil {
			out.Logo.BorderColor = HexColor(*l.borderColor)
		}
	}
	return out, nil
}

func (s StyleConfig) normalize() (StyleConfig, error) {
	out := s
	switch out.DotShape {
	case "":
		out.DotShape = DotSquare
	case DotSquare, DotRounded, DotDots:
	default:
		return out, newError(KindValidation, "unsupported dot shape %q", s.DotShape)
	}
	switch out.CornerShape {
	case "":
		out.CornerShape = CornerSquare
	case CornerSquare, CornerRounded:
	default:
		return out, newError(KindValidation, "unsupported corner shape %q", s.CornerShape)
	}
	switch out.CornerDotStyle {
	case "":
		out.CornerDotStyle = CornerDotSquare
	case CornerDotSquare, CornerDotDot:
	default:
		return out, newError(KindValidation, "unsupported corner dot style %q", s.CornerDotStyle)
	}
	return out, nil
}

func (l *LogoConfig) validate() (*logoConfig, error) {
	if strings.TrimSpace(l.ImageSource) == "" {
		return nil, newError(KindValidation, "logo image source is required")
	}
	if !(l.Opacity >= 0 && l.Opacity <= 1) {
		return nil, newError(KindValidation, "logo opacity must be between 0 and 1, got %g", l.Opacity)
	}
	if l.BorderWidth < 0 || l.BorderWidth > MaxLogoBorder {
		return nil, newError(KindValidation, "logo border width must be between 0 and %d, got %d", MaxLogoBorder, l.BorderWidth)
	}
	out := &logoConfig{
		source:      strings.TrimSpace(l.ImageSource),
		opacity:     l.Opacity,
		border:      l.Border,
		borderWidth: l.BorderWidth,
	}
	if l.BorderColor != "" {
		c, err := ParseHexColor(l.BorderColor)
		if err != nil {
			return nil, err
		}
		out.borderColor = &c
	}
	return out, nil
}

func parseColorOr(s, fallback string) (color.NRGBA, error) {
	if strings.TrimSpace(s) == "" {
		s = fallback
	}
	return ParseHexColor(s)
}
