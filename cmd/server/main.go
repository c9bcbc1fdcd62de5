// Package main is the entry point for the taskflow API server. It exposes
// the HTTP and websocket server plus the operator commands for schema
// migrations, user provisioning and token issuance.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
