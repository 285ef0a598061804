package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atelierframes/framery/internal/pricing"
)

// ErrNotFound is returned for an order identifier with no stored row.
var ErrNotFound = errors.New("order not found")

// Store persists orders in SQLite. Creation is one insert; the stored
// total/advance/debt are never touched again.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create inserts the order and fills in its identifier and timestamps.
func (s *Store) Create(ctx context.Context, order *Order) error {
	framesJSON, err := json.Marshal(order.Frames)
	if err != nil {
		return fmt.Errorf("marshal order frames: %w", err)
	}
	sharedJSON, err := json.Marshal(order.Shared)
	if err != nil {
		return fmt.Errorf("marshal shared selections: %w", err)
	}

	var fulfillment any
	if order.FulfillmentDate != nil {
		fulfillment = order.FulfillmentDate.Format("2006-01-02")
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (
			width, height, frames_json, shared_json,
			customer_name, customer_phone, payment_method, comment,
			total_price, advance_payment, debt,
			fulfillment_date, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		order.Size.W.String(),
		order.Size.H.String(),
		string(framesJSON),
		string(sharedJSON),
		order.CustomerName,
		order.CustomerPhone,
		order.PaymentMethod,
		order.Comment,
		order.TotalPrice.String(),
		order.AdvancePayment.String(),
		order.Debt.String(),
		fulfillment,
		string(order.Status),
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("read order id: %w", err)
	}
	order.ID = id

	var created, updated string
	if err := s.db.QueryRowContext(ctx, `
		SELECT created_at, updated_at FROM orders WHERE id = ?
	`, id).Scan(&created, &updated); err != nil {
		return fmt.Errorf("read order %d timestamps: %w", id, err)
	}
	if order.CreatedAt, err = parseTimestamp(created); err != nil {
		return fmt.Errorf("order %d: %w", id, err)
	}
	if order.UpdatedAt, err = parseTimestamp(updated); err != nil {
		return fmt.Errorf("order %d: %w", id, err)
	}
	return nil
}

// Get loads one order with its frames and shared selections restored from
// their JSON columns.
func (s *Store) Get(ctx context.Context, id int64) (Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT
			id, width, height,
			COALESCE(frames_json, '[]'), COALESCE(shared_json, '{}'),
			COALESCE(customer_name, ''), COALESCE(customer_phone, ''),
			COALESCE(payment_method, ''), COALESCE(comment, ''),
			total_price, advance_payment, debt,
			fulfillment_date, status, created_at, updated_at
		FROM orders
		WHERE id = ?
	`, id)

	var (
		order                      Order
		w, h, total, advance, debt string
		framesJSON, sharedJSON     string
		fulfillment                sql.NullString
		status, created, updated   string
	)
	err := row.Scan(
		&order.ID, &w, &h,
		&framesJSON, &sharedJSON,
		&order.CustomerName, &order.CustomerPhone,
		&order.PaymentMethod, &order.Comment,
		&total, &advance, &debt,
		&fulfillment, &status, &created, &updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Order{}, fmt.Errorf("query order %d: %w", id, err)
	}

	if order.Size, err = parseSize(w, h); err != nil {
		return Order{}, fmt.Errorf("order %d: %w", id, err)
	}
	if order.TotalPrice, err = decimal.NewFromString(total); err != nil {
		return Order{}, fmt.Errorf("order %d: parse total %q: %w", id, total, err)
	}
	if order.AdvancePayment, err = decimal.NewFromString(advance); err != nil {
		return Order{}, fmt.Errorf("order %d: parse advance %q: %w", id, advance, err)
	}
	if order.Debt, err = decimal.NewFromString(debt); err != nil {
		return Order{}, fmt.Errorf("order %d: parse debt %q: %w", id, debt, err)
	}
	if err := json.Unmarshal([]byte(framesJSON), &order.Frames); err != nil {
		return Order{}, fmt.Errorf("order %d: unmarshal frames: %w", id, err)
	}
	if err := json.Unmarshal([]byte(sharedJSON), &order.Shared); err != nil {
		return Order{}, fmt.Errorf("order %d: unmarshal shared selections: %w", id, err)
	}
	if fulfillment.Valid && fulfillment.String != "" {
		t, err := time.Parse("2006-01-02", fulfillment.String)
		if err != nil {
			return Order{}, fmt.Errorf("order %d: parse fulfillment date %q: %w", id, fulfillment.String, err)
		}
		order.FulfillmentDate = &t
	}
	order.Status = Status(status)

	return order, nil
}

// List returns order summaries, newest first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			id, width, height, total_price, advance_payment, debt,
			status, COALESCE(customer_name, ''), COALESCE(customer_phone, ''), created_at
		FROM orders
		ORDER BY datetime(created_at) DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	summaries := make([]Summary, 0)
	for rows.Next() {
		var (
			sum                        Summary
			w, h, total, advance, debt string
			status, created            string
		)
		if err := rows.Scan(&sum.ID, &w, &h, &total, &advance, &debt, &status, &sum.CustomerName, &sum.CustomerPhone, &created); err != nil {
			return nil, fmt.Errorf("scan order summary: %w", err)
		}
		if sum.Size, err = parseSize(w, h); err != nil {
			return nil, fmt.Errorf("order %d: %w", sum.ID, err)
		}
		if sum.TotalPrice, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("order %d: parse total %q: %w", sum.ID, total, err)
		}
		if sum.AdvancePayment, err = decimal.NewFromString(advance); err != nil {
			return nil, fmt.Errorf("order %d: parse advance %q: %w", sum.ID, advance, err)
		}
		if sum.Debt, err = decimal.NewFromString(debt); err != nil {
			return nil, fmt.Errorf("order %d: parse debt %q: %w", sum.ID, debt, err)
		}
		if sum.CreatedAt, err = parseTimestamp(created); err != nil {
			return nil, fmt.Errorf("order %d: %w", sum.ID, err)
		}
		sum.Status = Status(status)
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return summaries, nil
}

// UpdateStatus moves an order to a new status.
func (s *Store) UpdateStatus(ctx context.Context, id int64, status Status) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE orders
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, string(status), id)
	if err != nil {
		return fmt.Errorf("update order %d status: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order %d status: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	return nil
}

func parseTimestamp(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04:05", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", v, err)
	}
	return t, nil
}

func parseSize(w, h string) (pricing.Size, error) {
	width, err := decimal.NewFromString(w)
	if err != nil {
		return pricing.Size{}, fmt.Errorf("parse width %q: %w", w, err)
	}
	height, err := decimal.NewFromString(h)
	if err != nil {
		return pricing.Size{}, fmt.Errorf("parse height %q: %w", h, err)
	}
	return pricing.Size{W: width, H: height}, nil
}
