package qrstyle

// Zone is the structural role of a module.
type Zone int

const (
	ZoneRegular Zone = iota
	ZoneCornerBlock
	ZoneCornerDot
)

func (z Zone) String() string {
	switch z {
	case ZoneCornerBlock:
		return "CORNER_BLOCK"
	case ZoneCornerDot:
		return "CORNER_DOT"
	default:
		return "REGULAR"
	}
}

const (
	finderSize   = 7
	finderDotMin = 2
	finderDotMax = 4
)

// Classify maps a module position to its zone. Finder patterns sit at the
// top-left, top-right and bottom-left corners only.
func Classify(row, col, moduleCount int) Zone {
	for _, o := range finderOrigins(moduleCount) {
		dr, dc := row-o[0], col-o[1]
		if dr < 0 || dr >= finderSize || dc < 0 || dc >= finderSize {
			continue
		}
		if dr >= finderDotMin && dr <= finderDotMax && dc >= finderDotMin && dc <= finderDotMax {
			return ZoneCornerDot
		}
		return ZoneCornerBlock
	}
	return ZoneRegular
}

func finderOrigins(n int) [3][2]int {
	return [3][2]int{
		{0, 0},
		{0, n - finderSize},
		{n - finderSize, 0},
	}
}
