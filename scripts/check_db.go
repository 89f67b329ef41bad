//go:build ignore

package main

import (
	"context"
	"fmt"
	"os"

	"better-being/internal/config"
	"better-being/internal/database"

	"github.com/rs/zerolog"
)

// Connects with the configured credentials, applies the schema and prints
// row counts for every checkout table:
//
//	go run scripts/check_db.go
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logger := zerolog.Nop()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	var dbName string
	if err := pool.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully connected to database: %s\n", dbName)

	if err := database.Migrate(ctx, pool, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nTable row counts:")
	for _, table := range []string{"users", "products", "cart", "orders", "order_items", "loyalty_transactions", "order_idempotency_keys"} {
		var n int64
		if err := pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
			fmt.Fprintf(os.Stderr, "Count of %s failed: %v\n", table, err)
			os.Exit(1)
		}
		fmt.Printf("  - %-24s %d\n", table, n)
	}
}
