package seed

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

func newSeedTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}

	for _, stmt := range []string{
		`CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE catalog_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			barcode TEXT,
			price TEXT NOT NULL,
			strip_width TEXT,
			applies_to TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE pricing_settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			max_side_a TEXT NOT NULL,
			max_side_b TEXT NOT NULL,
			large_multiplier TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed creating seed tables: %v", err)
		}
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

func TestRunSeedsFreshDatabase(t *testing.T) {
	db := newSeedTestDB(t)

	stats, err := Run(db, Config{AdminEmail: "admin@example.com", AdminPassword: "secret"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	// Admin user, settings singleton, and the whole starter catalog.
	if want := 1 + 1 + len(defaultCatalog); stats.Inserts != want {
		t.Fatalf("stats.Inserts = %d, want %d", stats.Inserts, want)
	}

	var settings int
	if err := db.QueryRow(`SELECT COUNT(*) FROM pricing_settings WHERE id = 1`).Scan(&settings); err != nil {
		t.Fatalf("count settings: %v", err)
	}
	if settings != 1 {
		t.Fatalf("expected settings singleton, got %d rows", settings)
	}

	var labor int
	if err := db.QueryRow(`SELECT COUNT(*) FROM catalog_items WHERE kind = 'labor' AND applies_to != ''`).Scan(&labor); err != nil {
		t.Fatalf("count tagged labor: %v", err)
	}
	if labor == 0 {
		t.Fatal("expected tagged labor items for auto-attach")
	}
}

func TestRunIsIdempotent(t *testing.T) {
	db := newSeedTestDB(t)
	cfg := Config{AdminEmail: "admin@example.com", AdminPassword: "secret"}

	if _, err := Run(db, cfg); err != nil {
		t.Fatalf("first Run returned error: %v", err)
	}

	stats, err := Run(db, cfg)
	if err != nil {
		t.Fatalf("second Run returned error: %v", err)
	}
	if stats.Inserts != 0 {
		t.Fatalf("second Run inserted %d rows, want 0", stats.Inserts)
	}
}

func TestRunSkipsAdminWithoutCredentials(t *testing.T) {
	db := newSeedTestDB(t)

	if _, err := Run(db, Config{}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	var users int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&users); err != nil {
		t.Fatalf("count users: %v", err)
	}
	if users != 0 {
		t.Fatalf("expected no users without credentials, got %d", users)
	}
}
