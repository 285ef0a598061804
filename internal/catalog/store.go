package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Store persists catalog items and the settings singleton in SQLite.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const itemColumns = `id, kind, name, COALESCE(barcode, ''), price, COALESCE(strip_width, '0'), COALESCE(applies_to, '')`

// Item resolves one catalog entry by kind and identifier. A missing row is
// reported as a wrapped ErrNotFound naming the failing lookup.
func (s *Store) Item(ctx context.Context, kind Kind, id int64) (Item, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+`
		FROM catalog_items
		WHERE kind = ? AND id = ?
	`, string(kind), id)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	if err != nil {
		return Item{}, fmt.Errorf("query %s %d: %w", kind, id, err)
	}
	return item, nil
}

// List returns all items of a kind, optionally filtered by a name or
// barcode substring, ordered by name.
func (s *Store) List(ctx context.Context, kind Kind, search string) ([]Item, error) {
	search = strings.TrimSpace(search)
	pattern := "%" + search + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM catalog_items
		WHERE kind = ?
		  AND (? = '' OR name LIKE ? OR COALESCE(barcode, '') LIKE ?)
		ORDER BY name, id
	`, string(kind), search, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("query %s items: %w", kind, err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s item: %w", kind, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s items: %w", kind, err)
	}
	return items, nil
}

// LaborFor returns every labor item whose AppliesTo tag matches one of the
// selected material kinds, ordered by id so breakdown keys are stable.
func (s *Store) LaborFor(ctx context.Context, kinds []Kind) ([]Item, error) {
	if len(kinds) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(kinds))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, 0, len(kinds)+1)
	args = append(args, string(KindLabor))
	for _, k := range kinds {
		args = append(args, string(k))
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM catalog_items
		WHERE kind = ? AND applies_to IN (`+placeholders+`)
		ORDER BY id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query auto labor items: %w", err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan labor item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate labor items: %w", err)
	}
	return items, nil
}

// Create inserts a new catalog entry and returns its identifier.
func (s *Store) Create(ctx context.Context, item Item) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO catalog_items (kind, name, barcode, price, strip_width, applies_to)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		string(item.Kind),
		item.Name,
		item.Barcode,
		item.Price.String(),
		item.StripWidth.String(),
		string(item.AppliesTo),
	)
	if err != nil {
		return 0, fmt.Errorf("insert %s item: %w", item.Kind, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read %s item id: %w", item.Kind, err)
	}
	return id, nil
}

// Update rewrites an existing catalog entry. Updating a missing row is a
// wrapped ErrNotFound.
func (s *Store) Update(ctx context.Context, item Item) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE catalog_items
		SET
			name = ?,
			barcode = ?,
			price = ?,
			strip_width = ?,
			applies_to = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE kind = ? AND id = ?
	`,
		item.Name,
		item.Barcode,
		item.Price.String(),
		item.StripWidth.String(),
		string(item.AppliesTo),
		string(item.Kind),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update %s %d: %w", item.Kind, item.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s %d: %w", item.Kind, item.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %d: %w", item.Kind, item.ID, ErrNotFound)
	}
	return nil
}

// CurrentSettings reads the settings singleton. The engine calls this at
// the start of every pricing run so administrative edits apply immediately.
func (s *Store) CurrentSettings(ctx context.Context) (Settings, error) {
	var a, b, m string
	err := s.db.QueryRowContext(ctx, `
		SELECT max_side_a, max_side_b, large_multiplier
		FROM pricing_settings
		WHERE id = 1
	`).Scan(&a, &b, &m)
	if errors.Is(err, sql.ErrNoRows) {
		// The loader falls back to defaults when no override exists.
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("query pricing settings: %w", err)
	}

	settings := Settings{}
	if settings.MaxSideA, err = decimal.NewFromString(a); err != nil {
		return Settings{}, fmt.Errorf("parse max_side_a %q: %w", a, err)
	}
	if settings.MaxSideB, err = decimal.NewFromString(b); err != nil {
		return Settings{}, fmt.Errorf("parse max_side_b %q: %w", b, err)
	}
	if settings.LargeMultiplier, err = decimal.NewFromString(m); err != nil {
		return Settings{}, fmt.Errorf("parse large_multiplier %q: %w", m, err)
	}
	return settings, nil
}

// UpdateSettings upserts the singleton row. Deleting settings is not an
// operation anywhere in the system.
func (s *Store) UpdateSettings(ctx context.Context, settings Settings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pricing_settings (id, max_side_a, max_side_b, large_multiplier)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			max_side_a = excluded.max_side_a,
			max_side_b = excluded.max_side_b,
			large_multiplier = excluded.large_multiplier,
			updated_at = CURRENT_TIMESTAMP
	`,
		settings.MaxSideA.String(),
		settings.MaxSideB.String(),
		settings.LargeMultiplier.String(),
	)
	if err != nil {
		return fmt.Errorf("upsert pricing settings: %w", err)
	}
	return nil
}

// EnsureSettings inserts the default settings row if none exists yet.
func (s *Store) EnsureSettings(ctx context.Context) error {
	def := DefaultSettings()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pricing_settings (id, max_side_a, max_side_b, large_multiplier)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		def.MaxSideA.String(),
		def.MaxSideB.String(),
		def.LargeMultiplier.String(),
	)
	if err != nil {
		return fmt.Errorf("insert default pricing settings: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (Item, error) {
	var (
		item              Item
		kind, appliesTo   string
		price, stripWidth string
	)
	if err := row.Scan(&item.ID, &kind, &item.Name, &item.Barcode, &price, &stripWidth, &appliesTo); err != nil {
		return Item{}, err
	}

	item.Kind = Kind(kind)
	item.AppliesTo = Kind(appliesTo)

	var err error
	if item.Price, err = decimal.NewFromString(price); err != nil {
		return Item{}, fmt.Errorf("parse price %q: %w", price, err)
	}
	if item.StripWidth, err = decimal.NewFromString(stripWidth); err != nil {
		return Item{}, fmt.Errorf("parse strip width %q: %w", stripWidth, err)
	}
	return item, nil
}
