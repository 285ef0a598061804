package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/atelierframes/framery/internal/catalog"
)

// ErrInvalidSize rejects pricing calls whose frame dimensions are missing,
// zero or negative. It is raised before any catalog lookup happens.
var ErrInvalidSize = errors.New("frame dimensions must be positive")

// ErrInvalidQuantity rejects negative component quantities. A zero quantity
// is fine (it defaults or suppresses the line); a negative one would turn
// into a negative line total.
var ErrInvalidQuantity = errors.New("component quantity must not be negative")

// Size is one frame's dimensions in centimetres. The pair is unordered:
// (w,h) and (h,w) classify and price identically.
type Size struct {
	W decimal.Decimal `json:"w"`
	H decimal.Decimal `json:"h"`
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.W.IsPositive() && s.H.IsPositive()
}

// Validate returns ErrInvalidSize with the offending values when the size
// cannot price a dimension-dependent component.
func (s Size) Validate() error {
	if !s.Valid() {
		return fmt.Errorf("%w: got %s x %s", ErrInvalidSize, s.W, s.H)
	}
	return nil
}

// CatalogLookup is the slice of the catalog the engine consumes.
// *catalog.Store satisfies it.
type CatalogLookup interface {
	Item(ctx context.Context, kind catalog.Kind, id int64) (catalog.Item, error)
	LaborFor(ctx context.Context, kinds []catalog.Kind) ([]catalog.Item, error)
}

// SettingsSource yields the current pricing-policy settings. The engine
// reads it once per pricing call and never caches across calls.
type SettingsSource interface {
	CurrentSettings(ctx context.Context) (catalog.Settings, error)
}

// Selections is the set of components chosen for one pricing call. Every
// field is optional; a zero ID simply omits that component's line.
type Selections struct {
	MoldingID int64 `json:"molding_id,omitempty"`

	GlazingID int64 `json:"glazing_id,omitempty"`
	BackingID int64 `json:"backing_id,omitempty"`

	HardwareID       int64 `json:"hardware_id,omitempty"`
	HardwareQuantity int64 `json:"hardware_quantity,omitempty"` // defaults to 1

	StretcherBarID int64 `json:"stretcher_bar_id,omitempty"`
	PackagingID    int64 `json:"packaging_id,omitempty"`

	TrimMoldingID     int64           `json:"trim_molding_id,omitempty"`
	TrimMoldingLength decimal.Decimal `json:"trim_molding_length"` // metres; zero suppresses the line

	WireID     int64           `json:"wire_id,omitempty"`
	WireLength decimal.Decimal `json:"wire_length"` // metres; zero suppresses the line

	HangerID       int64 `json:"hanger_id,omitempty"`
	HangerQuantity int64 `json:"hanger_quantity,omitempty"` // zero suppresses the line

	MatBoardID     int64           `json:"mat_board_id,omitempty"`
	MatBoardLength decimal.Decimal `json:"mat_board_length"` // cm, informational
	MatBoardWidth  decimal.Decimal `json:"mat_board_width"`  // cm, informational

	StretchFilmID int64 `json:"stretch_film_id,omitempty"`

	// LaborID prices one explicit labor item and disables auto-attachment.
	LaborID int64 `json:"labor_id,omitempty"`
}

// Line is one priced component in a breakdown. Optional fields are nil when
// the pricing rule for the kind does not produce them.
type Line struct {
	Name         string           `json:"name"`
	Quantity     *decimal.Decimal `json:"quantity,omitempty"`
	Area         *decimal.Decimal `json:"area,omitempty"`
	Length       *decimal.Decimal `json:"length,omitempty"`
	Width        *decimal.Decimal `json:"width,omitempty"`
	UnitPrice    *decimal.Decimal `json:"unit_price,omitempty"`
	BasePrice    *decimal.Decimal `json:"base_price,omitempty"`
	Multiplier   *decimal.Decimal `json:"multiplier,omitempty"`
	IsSmallFrame *bool            `json:"is_small_frame,omitempty"`
	TotalPrice   decimal.Decimal  `json:"total_price"`
}

// Breakdown is the itemized pricing result: one line per priced component
// and a grand total equal to the sum of line totals.
type Breakdown struct {
	Components map[string]Line `json:"components"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

func newBreakdown() Breakdown {
	return Breakdown{Components: make(map[string]Line)}
}

func (b *Breakdown) add(key string, line Line) {
	b.Components[key] = line
	b.TotalPrice = b.TotalPrice.Add(line.TotalPrice)
}

// Engine prices framing orders against an injected catalog and settings
// source. It holds no state of its own; every call is a pure computation
// over freshly fetched inputs.
type Engine struct {
	catalog  CatalogLookup
	settings SettingsSource
}

func NewEngine(lookup CatalogLookup, settings SettingsSource) *Engine {
	return &Engine{catalog: lookup, settings: settings}
}

func dec(d decimal.Decimal) *decimal.Decimal { return &d }
