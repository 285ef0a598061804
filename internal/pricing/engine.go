package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/atelierframes/framery/internal/catalog"
)

// Calculate prices a single frame. Every selection is independent: absent
// selections simply omit their line. Any identifier that fails to resolve
// aborts the whole calculation; a partial breakdown is never returned.
func (e *Engine) Calculate(ctx context.Context, size Size, sel Selections) (Breakdown, error) {
	if err := size.Validate(); err != nil {
		return Breakdown{}, err
	}

	settings, err := e.settings.CurrentSettings(ctx)
	if err != nil {
		return Breakdown{}, err
	}

	breakdown := newBreakdown()

	// Material kinds actually selected in this call; drives automatic
	// labor attachment. Packaging never triggers labor.
	var selected []catalog.Kind

	if sel.MoldingID != 0 {
		item, err := e.catalog.Item(ctx, catalog.KindMolding, sel.MoldingID)
		if err != nil {
			return Breakdown{}, err
		}
		length := moldingLength(size, item.StripWidth)
		breakdown.add("molding", Line{
			Name:       item.Name,
			Quantity:   dec(length),
			UnitPrice:  dec(item.Price),
			TotalPrice: length.Mul(item.Price),
		})
		selected = append(selected, catalog.KindMolding)
	}

	if sel.GlazingID != 0 {
		item, err := e.catalog.Item(ctx, catalog.KindGlazing, sel.GlazingID)
		if err != nil {
			return Breakdown{}, err
		}
		area := areaSqM(size)
		breakdown.add("glazing", Line{
			Name:       item.Name,
			Area:       dec(area),
			UnitPrice:  dec(item.Price),
			TotalPrice: area.Mul(item.Price),
		})
		selected = append(selected, catalog.KindGlazing)
	}

	if sel.BackingID != 0 {
		item, err := e.catalog.Item(ctx, catalog.KindBacking, sel.BackingID)
		if err != nil {
			return Breakdown{}, err
		}
		breakdown.add("backing", Line{Name: item.Name, TotalPrice: item.Price})
		selected = append(selected, catalog.KindBacking)
	}

	if sel.HardwareID != 0 {
		if sel.HardwareQuantity < 0 {
			return Breakdown{}, fmt.Errorf("%w: hardware quantity %d", ErrInvalidQuantity, sel.HardwareQuantity)
		}
		item, err := e.catalog.Item(ctx, catalog.KindHardware, sel.HardwareID)
		if err != nil {
			return Breakdown{}, err
		}
		qty := sel.HardwareQuantity
		if qty == 0 {
			qty = 1
		}
		qtyDec := decimal.NewFromInt(qty)
		breakdown.add("hardware", Line{
			Name:       item.Name,
			Quantity:   dec(qtyDec),
			UnitPrice:  dec(item.Price),
			TotalPrice: item.Price.Mul(qtyDec),
		})
		selected = append(selected, catalog.KindHardware)
	}

	if sel.StretcherBarID != 0 {
		item, err := e.catalog.Item(ctx, catalog.KindStretcherBar, sel.StretcherBarID)
		if err != nil {
			return Breakdown{}, err
		}
		breakdown.add("stretcher_bar", Line{Name: item.Name, TotalPrice: item.Price})
		selected = append(selected, catalog.KindStretcherBar)
	}

	if sel.PackagingID != 0 {
		item, err := e.catalog.Item(ctx, catalog.KindPackaging, sel.PackagingID)
		if err != nil {
			return Breakdown{}, err
		}
		breakdown.add("packaging", Line{Name: item.Name, TotalPrice: item.Price})
	}

	if sel.TrimMoldingID != 0 && sel.TrimMoldingLength.IsPositive() {
		item, err := e.catalog.Item(ctx, catalog.KindTrimMolding, sel.TrimMoldingID)
		if err != nil {
			return Breakdown{}, err
		}
		breakdown.add("trim_molding", Line{
			Name:       item.Name,
			Length:     dec(sel.TrimMoldingLength),
			UnitPrice:  dec(item.Price),
			TotalPrice: item.Price.Mul(sel.TrimMoldingLength),
		})
		selected = append(selected, catalog.KindTrimMolding)
	}

	if sel.WireID != 0 && sel.WireLength.IsPositive() {
		item, err := e.catalog.Item(ctx, catalog.KindWire, sel.WireID)
		if err != nil {
			return Breakdown{}, err
		}
		breakdown.add("wire", Line{
			Name:       item.Name,
			Length:     dec(sel.WireLength),
			UnitPrice:  dec(item.Price),
			TotalPrice: item.Price.Mul(sel.WireLength),
		})
		selected = append(selected, catalog.KindWire)
	}

	if sel.HangerID != 0 && sel.HangerQuantity > 0 {
		item, err := e.catalog.Item(ctx, catalog.KindHanger, sel.HangerID)
		if err != nil {
			return Breakdown{}, err
		}
		qtyDec := decimal.NewFromInt(sel.HangerQuantity)
		breakdown.add("hanger", Line{
			Name:       item.Name,
			Quantity:   dec(qtyDec),
			UnitPrice:  dec(item.Price),
			TotalPrice: item.Price.Mul(qtyDec),
		})
		selected = append(selected, catalog.KindHanger)
	}

	if sel.MatBoardID != 0 {
		item, err := e.catalog.Item(ctx, catalog.KindMatBoard, sel.MatBoardID)
		if err != nil {
			return Breakdown{}, err
		}
		// Flat price; the stated mat-board size is informational only.
		line := Line{Name: item.Name, TotalPrice: item.Price}
		if sel.MatBoardLength.IsPositive() {
			line.Length = dec(sel.MatBoardLength)
		}
		if sel.MatBoardWidth.IsPositive() {
			line.Width = dec(sel.MatBoardWidth)
		}
		breakdown.add("mat_board", line)
		selected = append(selected, catalog.KindMatBoard)
	}

	if sel.StretchFilmID != 0 {
		item, err := e.catalog.Item(ctx, catalog.KindStretchFilm, sel.StretchFilmID)
		if err != nil {
			return Breakdown{}, err
		}
		area := areaSqM(size)
		breakdown.add("stretch_film", Line{
			Name:       item.Name,
			Area:       dec(area),
			UnitPrice:  dec(item.Price),
			TotalPrice: area.Mul(item.Price),
		})
		selected = append(selected, catalog.KindStretchFilm)
	}

	if err := e.addLabor(ctx, &breakdown, size, settings, sel.LaborID, selected); err != nil {
		return Breakdown{}, err
	}

	return breakdown, nil
}

// addLabor prices labor for one call. An explicit labor selection is priced
// directly; otherwise every labor item tagged with a selected material kind
// is attached, at most once per catalog identifier. Large frames scale the
// base price by the settings multiplier.
func (e *Engine) addLabor(ctx context.Context, breakdown *Breakdown, size Size, settings catalog.Settings, laborID int64, selected []catalog.Kind) error {
	small := SmallFrame(size, settings)
	multiplier := one
	if !small {
		multiplier = settings.LargeMultiplier
	}

	laborLine := func(item catalog.Item) Line {
		isSmall := small
		return Line{
			Name:         item.Name,
			BasePrice:    dec(item.Price),
			Multiplier:   dec(multiplier),
			IsSmallFrame: &isSmall,
			TotalPrice:   item.Price.Mul(multiplier),
		}
	}

	if laborID != 0 {
		item, err := e.catalog.Item(ctx, catalog.KindLabor, laborID)
		if err != nil {
			return err
		}
		breakdown.add("labor", laborLine(item))
		return nil
	}

	if len(selected) == 0 {
		return nil
	}

	items, err := e.catalog.LaborFor(ctx, selected)
	if err != nil {
		return err
	}

	seen := make(map[int64]bool, len(items))
	idx := 0
	for _, item := range items {
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		idx++
		key := "labor"
		if idx > 1 {
			key = fmt.Sprintf("labor_%d", idx)
		}
		breakdown.add(key, laborLine(item))
	}
	return nil
}
