//go:build ignore

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"better-being/internal/config"
	"better-being/internal/middleware"
)

// Issues a bearer token for local testing:
//
//	go run scripts/dev_token.go -user 1 -ttl 24h
func main() {
	userID := flag.Int64("user", 1, "user id placed in the token's id claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load configuration: %v\n", err)
		os.Exit(1)
	}

	token, err := middleware.NewToken(cfg.Auth.JWTSecret, *userID, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to sign token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
