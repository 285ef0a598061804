package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/atelierframes/framery/internal/catalog"
)

var (
	one     = decimal.NewFromInt(1)
	two     = decimal.NewFromInt(2)
	eight   = decimal.NewFromInt(8)
	hundred = decimal.NewFromInt(100)
)

// SmallFrame classifies a frame against the settings envelope. Thresholds
// form an unordered pair, matching the frame's unordered dimensions, and the
// comparison is inclusive: a frame exactly at the envelope is small.
func SmallFrame(size Size, settings catalog.Settings) bool {
	return (size.W.LessThanOrEqual(settings.MaxSideA) && size.H.LessThanOrEqual(settings.MaxSideB)) ||
		(size.W.LessThanOrEqual(settings.MaxSideB) && size.H.LessThanOrEqual(settings.MaxSideA))
}

// moldingLength computes the strip length in metres needed to frame a
// picture: perimeter plus eight strip widths for the mitred corners.
// Frame dimensions arrive in centimetres, the stored strip width in metres;
// the centimetre conversion happens here and nowhere else.
func moldingLength(size Size, stripWidthM decimal.Decimal) decimal.Decimal {
	perimeterM := size.W.Add(size.H).Mul(two).Div(hundred)
	return perimeterM.Add(stripWidthM.Mul(eight))
}

// areaSqM converts a centimetre size to square metres, the unit glazing and
// stretch-film prices are stored in.
func areaSqM(size Size) decimal.Decimal {
	return size.W.Div(hundred).Mul(size.H.Div(hundred))
}
