// Package main provides a CLI tool for generating test tokens for the
// tokengate API. These tokens use the dev signing key and will NOT work
// against a production deployment.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	jwttoken "tokengate/internal/jwt_token"
	"tokengate/pkg/domain"
)

const (
	// Dev signing key - matches config.go when JWT_SIGNING_KEY is not set
	devSigningKey = "dev-secret-key-change-in-production"

	defaultTokenTTL = 15 * time.Minute
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Account   string            `json:"account"`
	ExpiresIn string            `json:"expires_in"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	var (
		account    = flag.String("account", "", "Caller account address (0x + 40 hex chars). Required.")
		signingKey = flag.String("signing-key", devSigningKey, "HS256 signing key; must match the server's JWT_SIGNING_KEY")
		ttl        = flag.Duration("ttl", defaultTokenTTL, "Token time-to-live")
		jsonOutput = flag.Bool("json", false, "Output as JSON")
	)
	flag.Usage = printUsage
	flag.Parse()

	if *account == "" {
		printUsage()
		os.Exit(1)
	}

	addr, err := domain.ParseAddress(*account)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid account address: %v\n", err)
		os.Exit(1)
	}

	manager, err := jwttoken.NewManager(*signingKey, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building token manager: %v\n", err)
		os.Exit(1)
	}
	token, err := manager.Issue(addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	if *jsonOutput {
		printJSON(tokenOutput{
			Token:     token,
			Account:   addr.String(),
			ExpiresIn: ttl.String(),
			Usage: map[string]string{
				"header": "Authorization: Bearer <token>",
			},
		})
		return
	}

	fmt.Println("Caller Token (JWT)")
	fmt.Println("==================")
	fmt.Printf("Account:    %s\n", addr)
	fmt.Printf("Expires In: %s\n", ttl)
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:8080/ledger/supply")
}

func printUsage() {
	fmt.Println(`tokengen - Generate test caller tokens for the tokengate API

WARNING: Tokens signed with the dev key will NOT work in production.
         Only use for local development and testing.

Usage:
  tokengen -account <address> [flags]

Examples:
  # Token for the dev owner account
  tokengen -account 0x00000000000000000000000000000000000000aa

  # Token with a custom TTL, as JSON
  tokengen -account 0x00000000000000000000000000000000000000aa -ttl 1h -json`)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
