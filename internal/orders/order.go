package orders

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atelierframes/framery/internal/pricing"
)

// Status tracks an order through the workshop. Orders are created as
// StatusNew and move only via explicit status updates.
type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusReady      Status = "ready"
	StatusIssued     Status = "issued"
)

// ParseStatus validates a status value coming from a request.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusNew, StatusInProgress, StatusReady, StatusIssued:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// Order is one customer purchase: a nominal size, one or more frames with
// their frame-scoped selections, the shared component selections, payment
// bookkeeping and a status. TotalPrice is computed once at creation and is
// authoritative afterwards; nothing recomputes it on edit.
type Order struct {
	ID int64 `json:"id"`

	// Size is the nominal order size in centimetres, the fallback for
	// frames that carry no size of their own.
	Size pricing.Size `json:"size"`

	// Frames round-trips losslessly through frames_json so receipts can be
	// regenerated from storage.
	Frames []pricing.Frame `json:"frames"`

	// Shared holds the order-wide component selections. Frame-scoped
	// fields (molding, mat board, labor) are always zero here.
	Shared pricing.Selections `json:"shared"`

	CustomerName  string `json:"customer_name,omitempty"`
	CustomerPhone string `json:"customer_phone,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Comment       string `json:"comment,omitempty"`

	TotalPrice     decimal.Decimal `json:"total_price"`
	AdvancePayment decimal.Decimal `json:"advance_payment"`
	Debt           decimal.Decimal `json:"debt"`

	FulfillmentDate *time.Time `json:"fulfillment_date,omitempty"`
	Status          Status     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Summary is the order list projection.
type Summary struct {
	ID             int64           `json:"id"`
	Size           pricing.Size    `json:"size"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	AdvancePayment decimal.Decimal `json:"advance_payment"`
	Debt           decimal.Decimal `json:"debt"`
	Status         Status          `json:"status"`
	CustomerName   string          `json:"customer_name,omitempty"`
	CustomerPhone  string          `json:"customer_phone,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}
