package receipt

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"better-being/internal/model"
)

// Receipt is the archived record of a placed order.
type Receipt struct {
	OrderNumber string       `json:"orderNumber"`
	IssuedAt    time.Time    `json:"issuedAt"`
	Order       *model.Order `json:"order"`
}

// Store archives receipts. Save returns the location the receipt was written to.
type Store interface {
	Save(ctx context.Context, order *model.Order) (string, error)
}

// New builds a receipt for the order.
func New(order *model.Order) *Receipt {
	return &Receipt{
		OrderNumber: order.OrderNumber,
		IssuedAt:    time.Now().UTC(),
		Order:       order,
	}
}

// Key returns the object name used for an order's receipt.
func Key(orderNumber string) string {
	return orderNumber + ".json.gz"
}

// Encode serialises a receipt as gzipped JSON.
func Encode(r *Receipt) ([]byte, error) {
	var buf bytes.Buffer

	gz := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gz).Encode(r); err != nil {
		return nil, fmt.Errorf("failed to encode receipt: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress receipt: %w", err)
	}

	return buf.Bytes(), nil
}

// Decode reads a gzipped JSON receipt.
func Decode(r io.Reader) (*Receipt, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	var out Receipt
	if err := json.NewDecoder(gz).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode receipt: %w", err)
	}

	return &out, nil
}
