package catalog

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a catalog identifier does not resolve.
var ErrNotFound = errors.New("catalog item not found")

// Item is one priced catalog entry. The meaning of Price depends on Kind:
// per metre for molding/trim_molding/wire, per square metre for
// glazing/stretch_film, per piece for hardware/hanger, flat otherwise.
type Item struct {
	ID   int64           `json:"id"`
	Kind Kind            `json:"kind"`
	Name string          `json:"name"`
	// Barcode is set for molding strips only; the catalog search matches it.
	Barcode string          `json:"barcode,omitempty"`
	Price   decimal.Decimal `json:"price"`
	// StripWidth is the molding strip width in metres. Zero for other kinds.
	StripWidth decimal.Decimal `json:"strip_width,omitempty"`
	// AppliesTo marks a labor item for automatic attachment whenever a
	// material of that kind is selected in the same pricing call. Empty
	// means the labor item is only priced when explicitly requested.
	AppliesTo Kind `json:"applies_to,omitempty"`
}
