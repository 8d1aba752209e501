// Command ledgerctl runs ledger maintenance from a shell: the overdue sweep,
// exchange rate updates and a dashboard summary. It shares configuration and
// wiring with the HTTP server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
