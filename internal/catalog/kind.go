package catalog

import "fmt"

// Kind identifies a priced component category. The set is fixed: pricing
// rules branch on it and labor items reference it via their AppliesTo tag.
type Kind string

const (
	KindMolding      Kind = "molding"       // baguette strip, priced per metre of computed length
	KindGlazing      Kind = "glazing"       // glass, priced per square metre
	KindBacking      Kind = "backing"       // flat price
	KindHardware     Kind = "hardware"      // priced per piece
	KindStretcherBar Kind = "stretcher_bar" // flat price
	KindPackaging    Kind = "packaging"     // flat price
	KindTrimMolding  Kind = "trim_molding"  // priced per metre of supplied consumption
	KindWire         Kind = "wire"          // hanging wire, priced per metre of supplied length
	KindHanger       Kind = "hanger"        // priced per piece
	KindMatBoard     Kind = "mat_board"     // flat price, stated size is informational
	KindStretchFilm  Kind = "stretch_film"  // priced per square metre
	KindLabor        Kind = "labor"         // base price, large-frame multiplier applies
)

// Kinds lists every component kind in catalog display order.
var Kinds = []Kind{
	KindMolding,
	KindGlazing,
	KindBacking,
	KindHardware,
	KindStretcherBar,
	KindPackaging,
	KindTrimMolding,
	KindWire,
	KindHanger,
	KindMatBoard,
	KindStretchFilm,
	KindLabor,
}

// MaterialKinds are the kinds a labor item's AppliesTo tag may reference.
// Packaging is excluded: packing never triggers automatic labor.
var MaterialKinds = []Kind{
	KindMolding,
	KindGlazing,
	KindBacking,
	KindHardware,
	KindStretcherBar,
	KindTrimMolding,
	KindWire,
	KindHanger,
	KindMatBoard,
	KindStretchFilm,
}

// ParseKind validates a kind string coming from a request path or payload.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown component kind %q", s)
}

func (k Kind) String() string { return string(k) }
