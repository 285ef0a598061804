package catalog

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

func newCatalogTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}

	_, err = db.Exec(`
		CREATE TABLE catalog_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			barcode TEXT,
			price TEXT NOT NULL,
			strip_width TEXT,
			applies_to TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		t.Fatalf("failed creating catalog_items table: %v", err)
	}

	_, err = db.Exec(`
		CREATE TABLE pricing_settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			max_side_a TEXT NOT NULL,
			max_side_b TEXT NOT NULL,
			large_multiplier TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		t.Fatalf("failed creating pricing_settings table: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

func d(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return v
}

func seedItem(t *testing.T, store *Store, item Item) int64 {
	t.Helper()
	id, err := store.Create(context.Background(), item)
	if err != nil {
		t.Fatalf("failed to seed %s item: %v", item.Kind, err)
	}
	return id
}

func TestItemRoundTripsThroughCreate(t *testing.T) {
	store := NewStore(newCatalogTestDB(t))

	id := seedItem(t, store, Item{
		Kind:       KindMolding,
		Name:       "Oak classic",
		Barcode:    "4850001",
		Price:      d(t, "200"),
		StripWidth: d(t, "0.05"),
	})

	item, err := store.Item(context.Background(), KindMolding, id)
	if err != nil {
		t.Fatalf("Item returned error: %v", err)
	}
	if item.Name != "Oak classic" || item.Barcode != "4850001" {
		t.Fatalf("item did not round-trip: %+v", item)
	}
	if !item.Price.Equal(d(t, "200")) || !item.StripWidth.Equal(d(t, "0.05")) {
		t.Fatalf("decimals did not round-trip: price=%s strip=%s", item.Price, item.StripWidth)
	}
}

func TestItemIsScopedByKind(t *testing.T) {
	store := NewStore(newCatalogTestDB(t))

	id := seedItem(t, store, Item{Kind: KindGlazing, Name: "Plain glass", Price: d(t, "1500")})

	// The same id under a different kind must not resolve.
	_, err := store.Item(context.Background(), KindMolding, id)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound across kinds, got %v", err)
	}
}

func TestListFiltersByNameAndBarcode(t *testing.T) {
	store := NewStore(newCatalogTestDB(t))
	ctx := context.Background()

	seedItem(t, store, Item{Kind: KindMolding, Name: "Oak classic", Barcode: "4850001", Price: d(t, "200")})
	seedItem(t, store, Item{Kind: KindMolding, Name: "Walnut slim", Barcode: "4850777", Price: d(t, "310")})
	seedItem(t, store, Item{Kind: KindGlazing, Name: "Oak-look acrylic", Price: d(t, "900")})

	all, err := store.List(ctx, KindMolding, "")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 moldings, got %d", len(all))
	}

	byName, err := store.List(ctx, KindMolding, "oak")
	if err != nil {
		t.Fatalf("List name filter returned error: %v", err)
	}
	if len(byName) != 1 || byName[0].Name != "Oak classic" {
		t.Fatalf("expected Oak classic by name filter, got %+v", byName)
	}

	byBarcode, err := store.List(ctx, KindMolding, "0777")
	if err != nil {
		t.Fatalf("List barcode filter returned error: %v", err)
	}
	if len(byBarcode) != 1 || byBarcode[0].Name != "Walnut slim" {
		t.Fatalf("expected Walnut slim by barcode filter, got %+v", byBarcode)
	}
}

func TestLaborForMatchesAppliesToTags(t *testing.T) {
	store := NewStore(newCatalogTestDB(t))
	ctx := context.Background()

	assembly := seedItem(t, store, Item{Kind: KindLabor, Name: "Frame assembly", Price: d(t, "300"), AppliesTo: KindMolding})
	seedItem(t, store, Item{Kind: KindLabor, Name: "Glass cutting", Price: d(t, "100"), AppliesTo: KindGlazing})
	seedItem(t, store, Item{Kind: KindLabor, Name: "Manual finishing", Price: d(t, "500")})

	items, err := store.LaborFor(ctx, []Kind{KindMolding, KindBacking})
	if err != nil {
		t.Fatalf("LaborFor returned error: %v", err)
	}
	if len(items) != 1 || items[0].ID != assembly {
		t.Fatalf("expected only the molding labor, got %+v", items)
	}

	none, err := store.LaborFor(ctx, nil)
	if err != nil {
		t.Fatalf("LaborFor with no kinds returned error: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no labor for empty selection, got %+v", none)
	}
}

func TestUpdateRewritesItemAndReportsMissing(t *testing.T) {
	store := NewStore(newCatalogTestDB(t))
	ctx := context.Background()

	id := seedItem(t, store, Item{Kind: KindHardware, Name: "Clip", Price: d(t, "8")})

	err := store.Update(ctx, Item{ID: id, Kind: KindHardware, Name: "Spring clip", Price: d(t, "12")})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	item, err := store.Item(ctx, KindHardware, id)
	if err != nil {
		t.Fatalf("Item returned error: %v", err)
	}
	if item.Name != "Spring clip" || !item.Price.Equal(d(t, "12")) {
		t.Fatalf("update did not apply: %+v", item)
	}

	err = store.Update(ctx, Item{ID: 999, Kind: KindHardware, Name: "Ghost", Price: d(t, "1")})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing item, got %v", err)
	}
}

func TestSettingsFallBackToDefaults(t *testing.T) {
	store := NewStore(newCatalogTestDB(t))

	settings, err := store.CurrentSettings(context.Background())
	if err != nil {
		t.Fatalf("CurrentSettings returned error: %v", err)
	}

	def := DefaultSettings()
	if !settings.MaxSideA.Equal(def.MaxSideA) || !settings.MaxSideB.Equal(def.MaxSideB) || !settings.LargeMultiplier.Equal(def.LargeMultiplier) {
		t.Fatalf("expected default settings, got %+v", settings)
	}
}

func TestUpdateSettingsUpsertsSingleton(t *testing.T) {
	store := NewStore(newCatalogTestDB(t))
	ctx := context.Background()

	if err := store.EnsureSettings(ctx); err != nil {
		t.Fatalf("EnsureSettings returned error: %v", err)
	}

	want := Settings{MaxSideA: d(t, "70"), MaxSideB: d(t, "55"), LargeMultiplier: d(t, "2")}
	if err := store.UpdateSettings(ctx, want); err != nil {
		t.Fatalf("UpdateSettings returned error: %v", err)
	}

	// EnsureSettings after an explicit update must not clobber it.
	if err := store.EnsureSettings(ctx); err != nil {
		t.Fatalf("EnsureSettings returned error: %v", err)
	}

	settings, err := store.CurrentSettings(ctx)
	if err != nil {
		t.Fatalf("CurrentSettings returned error: %v", err)
	}
	if !settings.MaxSideA.Equal(d(t, "70")) || !settings.LargeMultiplier.Equal(d(t, "2")) {
		t.Fatalf("settings were clobbered: %+v", settings)
	}
}
