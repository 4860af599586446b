package qrstyle

import (
	"github.com/yeqown/go-qrcode/v2"
)

// Symbol is an encoded QR symbol. Module state is owned by the underlying
// encoder; callers reach it through Save or Modules.
type Symbol struct {
	qr    *qrcode.QRCode
	level Level
}

// Encode builds a symbol for payload at the given error-correction level.
// The encoder picks the smallest version that fits.
func Encode(payload string, level Level) (*Symbol, error) {
	opt, ok := level.encoderOption()
	if !ok {
		return nil, newError(KindValidation, "unsupported error correction level %q", level)
	}
	qrc, err := qrcode.NewWith(payload, opt, qrcode.WithEncodingMode(qrcode.EncModeByte))
	if err != nil {
		return nil, wrapError(KindEncoding, err, "payload of %d bytes does not fit error correction level %s", len(payload), level)
	}
	if qrc.Dimension() <= 0 {
		return nil, newError(KindEncoding, "encoder returned an empty symbol")
	}
	return &Symbol{qr: qrc, level: level}, nil
}

// ModuleCount is the side length of the symbol in modules, without quiet zone.
func (s *Symbol) ModuleCount() int {
	return s.qr.Dimension()
}

// Level returns the error-correction level the symbol was built with.
func (s *Symbol) Level() Level {
	return s.level
}

// Save hands the symbol's matrix to an encoder writer.
func (s *Symbol) Save(w qrcode.Writer) error {
	return s.qr.Save(w)
}

// Modules returns the encoder's own dark/light matrix, indexed [row][col].
func (s *Symbol) Modules() ([][]bool, error) {
	w := &matrixWriter{}
	if err := s.qr.Save(w); err != nil {
		return nil, wrapError(KindRender, err, "failed to read symbol matrix")
	}
	return w.rows, nil
}

// matrixWriter captures a matrix as booleans.
type matrixWriter struct {
	rows [][]bool
}

func (w *matrixWriter) Write(mat qrcode.Matrix) error {
	w.rows = make([][]bool, mat.Height())
	for i := range w.rows {
		w.rows[i] = make([]bool, mat.Width())
	}
	mat.Iterate(qrcode.IterDirection_ROW, func(x, y int, v qrcode.QRValue) {
		w.rows[y][x] = v.IsSet()
	})
	return nil
}

func (w *matrixWriter) Close() error { return nil }
