package receipt

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/atelierframes/framery/internal/orders"
	"github.com/atelierframes/framery/internal/pricing"
)

// ErrNoFrames is returned when an order carries no frame with a molding
// selection. Such an order cannot be printed.
var ErrNoFrames = errors.New("order has no frame with a molding selection")

// Generator reprices stored orders and renders print receipts. The stored
// total stays authoritative for payment; the itemized lines are recomputed
// from the order's selections at current catalog prices.
type Generator struct {
	engine *pricing.Engine
}

func NewGenerator(engine *pricing.Engine) *Generator {
	return &Generator{engine: engine}
}

// Reprice recomputes the order's itemized breakdown from its stored
// selections.
func (g *Generator) Reprice(ctx context.Context, order orders.Order) (pricing.Breakdown, error) {
	if !hasMolding(order.Frames) {
		return pricing.Breakdown{}, fmt.Errorf("order %d: %w", order.ID, ErrNoFrames)
	}
	return g.engine.PriceOrder(ctx, order.Frames, order.Shared, order.Size)
}

func hasMolding(frames []pricing.Frame) bool {
	for _, frame := range frames {
		if frame.MoldingID != 0 {
			return true
		}
	}
	return false
}

// Row is one printed line of the workshop part.
type Row struct {
	Label       string
	Name        string
	Size        string
	Consumption string
	UnitPrice   string
	Total       string
}

// sharedOrder fixes the print order of order-wide components.
var sharedOrder = []struct {
	key   string
	label string
	unit  string
}{
	{"glazing", "GLAZING", "sq m"},
	{"stretch_film", "STRETCHING", "sq m"},
	{"backing", "BACKING", ""},
	{"hardware", "HARDWARE", "pcs"},
	{"stretcher_bar", "STRETCHER BAR", ""},
	{"packaging", "PACKAGING", ""},
	{"trim_molding", "TRIM MOLDING", "m"},
	{"wire", "WIRE", "m"},
	{"hanger", "HANGERS", "pcs"},
}

// rows flattens a breakdown into print order: frame molding lines first,
// shared components next, mat board and labor lines last.
func rows(order orders.Order, breakdown pricing.Breakdown) []Row {
	out := make([]Row, 0, len(breakdown.Components))
	consumed := make(map[string]bool)

	frameNum := 0
	for _, frame := range order.Frames {
		if frame.MoldingID == 0 {
			continue
		}
		frameNum++
		key := fmt.Sprintf("molding_frame%d", frameNum)
		line, ok := breakdown.Components[key]
		if !ok {
			continue
		}
		consumed[key] = true

		eff := frame.Size
		if !eff.Valid() {
			eff = order.Size
		}
		row := Row{
			Label:     fmt.Sprintf("FRAME %d", frameNum),
			Name:      line.Name,
			Size:      fmt.Sprintf("%s x %s cm", eff.W, eff.H),
			UnitPrice: unitPrice(line),
			Total:     line.TotalPrice.String(),
		}
		if line.Quantity != nil {
			row.Consumption = fmt.Sprintf("%s m", line.Quantity)
		}
		out = append(out, row)
	}

	for _, shared := range sharedOrder {
		line, ok := breakdown.Components[shared.key]
		if !ok {
			continue
		}
		consumed[shared.key] = true
		out = append(out, Row{
			Label:       shared.label,
			Name:        line.Name,
			Consumption: consumption(line, shared.unit),
			UnitPrice:   unitPrice(line),
			Total:       line.TotalPrice.String(),
		})
	}

	rest := make([]string, 0)
	for key := range breakdown.Components {
		if !consumed[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		line := breakdown.Components[key]
		label := "LABOR"
		if strings.HasPrefix(key, "mat_board") {
			label = "MAT BOARD"
		}
		out = append(out, Row{
			Label:     label,
			Name:      line.Name,
			UnitPrice: unitPrice(line),
			Total:     line.TotalPrice.String(),
		})
	}

	return out
}

// unitPrice prefers the per-unit rate; labor lines carry a base price
// instead. Flat components print no rate.
func unitPrice(line pricing.Line) string {
	if line.UnitPrice != nil {
		return line.UnitPrice.String()
	}
	if line.BasePrice != nil {
		return line.BasePrice.String()
	}
	return ""
}

func consumption(line pricing.Line, unit string) string {
	var v *decimal.Decimal
	switch {
	case line.Area != nil:
		v = line.Area
	case line.Length != nil:
		v = line.Length
	case line.Quantity != nil:
		v = line.Quantity
	}
	if v == nil || unit == "" {
		return ""
	}
	return fmt.Sprintf("%s %s", v, unit)
}
