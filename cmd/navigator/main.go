// Package main is the entry point for the navigator CLI.
//
// Usage:
//
//	navigator [flags] <command> [args]
//
// Commands:
//
//	tree     - Print the part-whole hierarchy
//	events   - Print events under their type concepts
//	details  - Show the properties of one node
//	query    - Run a SPARQL query against the configured endpoint
//	export   - Write the asserted or inferred graph as N-Triples
//	version  - Show version information
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ritualgrammar/navigator/cmd/navigator/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
