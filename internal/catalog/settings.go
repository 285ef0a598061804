package catalog

import "github.com/shopspring/decimal"

// Settings is the single pricing-policy record: the small-frame envelope and
// the multiplier applied to labor prices for frames that exceed it. Exactly
// one row exists (id = 1); UpdateSettings upserts it and nothing deletes it.
type Settings struct {
	// MaxSideA and MaxSideB bound the small-frame envelope in centimetres.
	// The pair is unordered, matching the frame's unordered dimensions.
	MaxSideA decimal.Decimal `json:"max_side_a"`
	MaxSideB decimal.Decimal `json:"max_side_b"`
	// LargeMultiplier scales labor prices for large frames. Always > 1.
	LargeMultiplier decimal.Decimal `json:"large_multiplier"`
}

// DefaultSettings returns the values the settings row is created with when
// no override exists yet: 60x50 cm envelope, x1.5 labor for large frames.
func DefaultSettings() Settings {
	return Settings{
		MaxSideA:        decimal.NewFromInt(60),
		MaxSideB:        decimal.NewFromInt(50),
		LargeMultiplier: decimal.RequireFromString("1.5"),
	}
}
