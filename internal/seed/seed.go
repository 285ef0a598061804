package seed

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/atelierframes/framery/internal/catalog"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

type seedItem struct {
	kind      catalog.Kind
	name      string
	price     string
	strip     string
	appliesTo catalog.Kind
}

// defaultCatalog is the starter price list a fresh workshop opens with.
// Molding strip widths are in metres.
var defaultCatalog = []seedItem{
	{kind: catalog.KindMolding, name: "Standard molding", price: "150", strip: "0.05"},
	{kind: catalog.KindMolding, name: "Decorative molding", price: "250", strip: "0.05"},

	{kind: catalog.KindGlazing, name: "Plain glass", price: "1550"},
	{kind: catalog.KindGlazing, name: "Matte glass", price: "1550"},
	{kind: catalog.KindGlazing, name: "Clear acrylic", price: "2300"},
	{kind: catalog.KindGlazing, name: "Matte acrylic", price: "2300"},

	{kind: catalog.KindBacking, name: "Plain backing", price: "450"},
	{kind: catalog.KindBacking, name: "Fiberboard 6mm", price: "900"},
	{kind: catalog.KindBacking, name: "Foam board 5mm", price: "900"},

	{kind: catalog.KindHardware, name: "Large clip", price: "3"},
	{kind: catalog.KindHardware, name: "Small clip", price: "8"},
	{kind: catalog.KindHardware, name: "Corner plate", price: "5"},
	{kind: catalog.KindHardware, name: "Easel leg", price: "7"},

	{kind: catalog.KindStretcherBar, name: "Bar 40x18 small", price: "150"},
	{kind: catalog.KindStretcherBar, name: "Bar 50x18 medium", price: "275"},
	{kind: catalog.KindStretcherBar, name: "Bar 60x18 large", price: "330"},

	{kind: catalog.KindPackaging, name: "Standard packaging", price: "200"},
	{kind: catalog.KindPackaging, name: "Protective packaging", price: "400"},

	{kind: catalog.KindTrimMolding, name: "Trim molding", price: "150"},

	{kind: catalog.KindWire, name: "Brass wire No.1", price: "90"},
	{kind: catalog.KindWire, name: "Brass wire No.2", price: "100"},
	{kind: catalog.KindWire, name: "Steel wire No.1", price: "90"},

	{kind: catalog.KindHanger, name: "D-ring", price: "1"},
	{kind: catalog.KindHanger, name: "Large D-ring", price: "90"},
	{kind: catalog.KindHanger, name: "Decorative hanger", price: "40"},

	{kind: catalog.KindMatBoard, name: "Mat board white", price: "900"},
	{kind: catalog.KindMatBoard, name: "Mat board cream", price: "900"},

	{kind: catalog.KindStretchFilm, name: "Stretch film", price: "100"},

	{kind: catalog.KindLabor, name: "Frame assembly", price: "300", appliesTo: catalog.KindMolding},
	{kind: catalog.KindLabor, name: "Glass cutting", price: "100", appliesTo: catalog.KindGlazing},
	{kind: catalog.KindLabor, name: "Canvas stretching", price: "400", appliesTo: catalog.KindStretcherBar},
	{kind: catalog.KindLabor, name: "Mat cutting", price: "150", appliesTo: catalog.KindMatBoard},
}

// Run executes the startup seed in an idempotent way.
func Run(db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := seedAdmin(tx, cfg.AdminEmail, cfg.AdminPassword, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureSettings(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureCatalog(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedAdmin(tx *sql.Tx, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, hashPassword(password)); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func ensureSettings(tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM pricing_settings WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check pricing settings existence: %w", err)
	}
	if exists {
		return nil
	}

	def := catalog.DefaultSettings()
	if _, err := tx.Exec(`
		INSERT INTO pricing_settings (id, max_side_a, max_side_b, large_multiplier)
		VALUES (1, ?, ?, ?)
	`, def.MaxSideA.String(), def.MaxSideB.String(), def.LargeMultiplier.String()); err != nil {
		return fmt.Errorf("insert pricing settings singleton: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureCatalog(tx *sql.Tx, stats *Stats) error {
	for _, item := range defaultCatalog {
		var exists bool
		if err := tx.QueryRow(`
			SELECT EXISTS(SELECT 1 FROM catalog_items WHERE kind = ? AND name = ? LIMIT 1)
		`, string(item.kind), item.name).Scan(&exists); err != nil {
			return fmt.Errorf("check %s %q existence: %w", item.kind, item.name, err)
		}
		if exists {
			continue
		}

		strip := item.strip
		if strip == "" {
			strip = "0"
		}
		if _, err := tx.Exec(`
			INSERT INTO catalog_items (kind, name, price, strip_width, applies_to)
			VALUES (?, ?, ?, ?, ?)
		`, string(item.kind), item.name, item.price, strip, string(item.appliesTo)); err != nil {
			return fmt.Errorf("insert %s %q: %w", item.kind, item.name, err)
		}
		stats.Inserts++
	}
	return nil
}
