package pricing

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/atelierframes/framery/internal/catalog"
)

// Frame is one physical frame within a multi-frame order. Molding,
// mat board and labor are bound to the frame; everything else is shared
// across the order.
type Frame struct {
	Size           Size            `json:"size"`
	MoldingID      int64           `json:"molding_id,omitempty"`
	MatBoardID     int64           `json:"mat_board_id,omitempty"`
	MatBoardLength decimal.Decimal `json:"mat_board_length"`
	MatBoardWidth  decimal.Decimal `json:"mat_board_width"`
	LaborID        int64           `json:"labor_id,omitempty"`
}

// effectiveSize resolves the size a frame is priced at: its own stated size
// when both dimensions are positive, the order's nominal size otherwise.
func (f Frame) effectiveSize(nominal Size) Size {
	if f.Size.Valid() {
		return f.Size
	}
	return nominal
}

// frameScoped restricts a frame to the selections priced per frame.
func (f Frame) frameScoped() Selections {
	return Selections{
		MoldingID:      f.MoldingID,
		MatBoardID:     f.MatBoardID,
		MatBoardLength: f.MatBoardLength,
		MatBoardWidth:  f.MatBoardWidth,
		LaborID:        f.LaborID,
	}
}

// isFrameScopedKey reports whether a breakdown key belongs to a single
// frame and gets namespaced with the frame number in multi-frame orders.
func isFrameScopedKey(key string) bool {
	return key == "molding" || key == "mat_board" || strings.HasPrefix(key, "labor")
}

// PriceOrder prices an order of one or more frames plus one shared
// component set. Frames carrying a molding selection are priced
// individually at their effective size; glazing and stretch-film are priced
// once on the summed effective area; the remaining shared components are
// priced once at the first frame's effective size (none of them depend on
// size today). Line items from different frames never collide: per-frame
// keys carry a _frame<N> suffix.
func (e *Engine) PriceOrder(ctx context.Context, frames []Frame, shared Selections, nominal Size) (Breakdown, error) {
	breakdown := newBreakdown()

	// Validate every size that will be priced before touching the catalog.
	var frameSizes []Size
	for _, frame := range frames {
		if frame.MoldingID == 0 {
			continue
		}
		eff := frame.effectiveSize(nominal)
		if err := eff.Validate(); err != nil {
			return Breakdown{}, err
		}
		frameSizes = append(frameSizes, eff)
	}
	if len(frameSizes) == 0 {
		if err := nominal.Validate(); err != nil {
			return Breakdown{}, err
		}
		frameSizes = []Size{nominal}
	}

	frameNum := 0
	for _, frame := range frames {
		if frame.MoldingID == 0 {
			continue
		}
		frameNum++
		eff := frame.effectiveSize(nominal)

		frameBreakdown, err := e.Calculate(ctx, eff, frame.frameScoped())
		if err != nil {
			return Breakdown{}, err
		}
		for key, line := range frameBreakdown.Components {
			if !isFrameScopedKey(key) {
				continue
			}
			line.Name = fmt.Sprintf("%s (frame %d)", line.Name, frameNum)
			breakdown.add(fmt.Sprintf("%s_frame%d", key, frameNum), line)
		}
	}

	// Shared components priced once. Glazing and stretch-film are held back
	// here: their per-call area formula must not apply on this path.
	sharedOnly := shared
	sharedOnly.MoldingID = 0
	sharedOnly.GlazingID = 0
	sharedOnly.StretchFilmID = 0
	sharedOnly.MatBoardID = 0
	sharedOnly.LaborID = 0

	sharedBreakdown, err := e.Calculate(ctx, frameSizes[0], sharedOnly)
	if err != nil {
		return Breakdown{}, err
	}
	for key, line := range sharedBreakdown.Components {
		breakdown.add(key, line)
	}

	// Glazing and stretch-film cover every frame: one line each, priced on
	// the sum of the priced frames' effective areas.
	totalArea := decimal.Zero
	for _, size := range frameSizes {
		totalArea = totalArea.Add(areaSqM(size))
	}

	if shared.GlazingID != 0 {
		item, err := e.catalog.Item(ctx, catalog.KindGlazing, shared.GlazingID)
		if err != nil {
			return Breakdown{}, err
		}
		breakdown.add("glazing", Line{
			Name:       item.Name,
			Area:       dec(totalArea),
			UnitPrice:  dec(item.Price),
			TotalPrice: totalArea.Mul(item.Price),
		})
	}

	if shared.StretchFilmID != 0 {
		item, err := e.catalog.Item(ctx, catalog.KindStretchFilm, shared.StretchFilmID)
		if err != nil {
			return Breakdown{}, err
		}
		breakdown.add("stretch_film", Line{
			Name:       item.Name,
			Area:       dec(totalArea),
			UnitPrice:  dec(item.Price),
			TotalPrice: totalArea.Mul(item.Price),
		})
	}

	return breakdown, nil
}
