package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"
)

// OrderNumberFunc produces a human-readable order number.
type OrderNumberFunc func() (string, error)

// NewOrderNumber returns "ORD-<unix millis>-<6 uppercase hex>".
func NewOrderNumber() (string, error) {
	return orderNumber(time.Now(), rand.Reader)
}

func orderNumber(now time.Time, random io.Reader) (string, error) {
	suffix := make([]byte, 3)
	if _, err := io.ReadFull(random, suffix); err != nil {
		return "", fmt.Errorf("failed to generate order number: %w", err)
	}
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), strings.ToUpper(hex.EncodeToString(suffix))), nil
}
