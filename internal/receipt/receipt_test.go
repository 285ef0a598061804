package receipt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atelierframes/framery/internal/catalog"
	"github.com/atelierframes/framery/internal/orders"
	"github.com/atelierframes/framery/internal/pricing"
)

type fakeCatalog struct {
	items map[catalog.Kind]map[int64]catalog.Item
}

func (f *fakeCatalog) Item(_ context.Context, kind catalog.Kind, id int64) (catalog.Item, error) {
	item, ok := f.items[kind][id]
	if !ok {
		return catalog.Item{}, fmt.Errorf("%s %d: %w", kind, id, catalog.ErrNotFound)
	}
	return item, nil
}

func (f *fakeCatalog) LaborFor(_ context.Context, kinds []catalog.Kind) ([]catalog.Item, error) {
	var out []catalog.Item
	for _, item := range f.items[catalog.KindLabor] {
		for _, k := range kinds {
			if item.AppliesTo == k {
				out = append(out, item)
			}
		}
	}
	return out, nil
}

func (f *fakeCatalog) CurrentSettings(context.Context) (catalog.Settings, error) {
	return catalog.DefaultSettings(), nil
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestGenerator() *Generator {
	fake := &fakeCatalog{items: map[catalog.Kind]map[int64]catalog.Item{
		catalog.KindMolding: {
			1: {ID: 1, Kind: catalog.KindMolding, Name: "Oak classic", Price: d("200"), StripWidth: d("0.05")},
		},
		catalog.KindGlazing: {
			1: {ID: 1, Kind: catalog.KindGlazing, Name: "Plain glass", Price: d("1500")},
		},
		catalog.KindBacking: {
			1: {ID: 1, Kind: catalog.KindBacking, Name: "Plain backing", Price: d("120")},
		},
		catalog.KindLabor: {
			1: {ID: 1, Kind: catalog.KindLabor, Name: "Frame assembly", Price: d("300"), AppliesTo: catalog.KindMolding},
		},
	}}
	return NewGenerator(pricing.NewEngine(fake, fake))
}

func testReceiptOrder() orders.Order {
	created := time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC)
	return orders.Order{
		ID:   7,
		Size: pricing.Size{W: d("100"), H: d("80")},
		Frames: []pricing.Frame{
			{Size: pricing.Size{W: d("100"), H: d("80")}, MoldingID: 1},
		},
		Shared:         pricing.Selections{GlazingID: 1, BackingID: 1},
		CustomerName:   "Anna K",
		CustomerPhone:  "+37455123456",
		Comment:        "handle with care",
		TotalPrice:     d("2870"),
		AdvancePayment: d("1000"),
		Debt:           d("1870"),
		Status:         orders.StatusNew,
		CreatedAt:      created,
		UpdatedAt:      created,
	}
}

func TestRepriceRecomputesBreakdownFromSelections(t *testing.T) {
	gen := newTestGenerator()

	breakdown, err := gen.Reprice(context.Background(), testReceiptOrder())
	if err != nil {
		t.Fatalf("Reprice returned error: %v", err)
	}

	// molding 800 + glazing 1200 + backing 120 + auto labor 750 (large frame).
	if !breakdown.TotalPrice.Equal(d("2870")) {
		t.Fatalf("repriced total = %s, want 2870", breakdown.TotalPrice)
	}
	if _, ok := breakdown.Components["molding_frame1"]; !ok {
		t.Fatal("expected frame-scoped molding line")
	}
}

func TestRepriceRejectsOrderWithoutMolding(t *testing.T) {
	gen := newTestGenerator()

	order := testReceiptOrder()
	order.Frames = []pricing.Frame{{Size: order.Size}}

	_, err := gen.Reprice(context.Background(), order)
	if !errors.Is(err, ErrNoFrames) {
		t.Fatalf("expected ErrNoFrames, got %v", err)
	}
}

func TestRepricePropagatesLookupFailures(t *testing.T) {
	gen := newTestGenerator()

	order := testReceiptOrder()
	order.Frames[0].MoldingID = 99

	_, err := gen.Reprice(context.Background(), order)
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected wrapped ErrNotFound, got %v", err)
	}
}

func TestRenderHTMLContainsBothReceiptParts(t *testing.T) {
	gen := newTestGenerator()

	var buf bytes.Buffer
	if err := gen.RenderHTML(context.Background(), testReceiptOrder(), &buf); err != nil {
		t.Fatalf("RenderHTML returned error: %v", err)
	}
	html := buf.String()

	for _, want := range []string{
		"Order receipt #7 of 20.08.2026",
		"TEAR-OFF PART",
		"Advance: 1000",
		"Due: 1870",
		"Customer: Anna K +37455123456",
		"Oak classic",
		"Plain glass",
		"Frame assembly",
		"Frame 1: 100 x 80 cm",
		"handle with care",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("receipt missing %q\n%s", want, html)
		}
	}

	// The stored total is printed twice: tear-off part and workshop part.
	if strings.Count(html, "Total: 2870") < 2 {
		t.Fatalf("expected stored total in both receipt parts\n%s", html)
	}
}

func TestRenderHTMLShowsDueDateForReadyOrders(t *testing.T) {
	gen := newTestGenerator()

	order := testReceiptOrder()
	order.Status = orders.StatusReady
	order.UpdatedAt = time.Date(2026, 8, 25, 15, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	if err := gen.RenderHTML(context.Background(), order, &buf); err != nil {
		t.Fatalf("RenderHTML returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "Ready by: 25.08.2026") {
		t.Fatal("expected ready date fallback from updated_at")
	}
}
