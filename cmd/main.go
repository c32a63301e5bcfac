// ats-ingest polls public ATS job boards, deduplicates the offers by URL and
// keeps the jobs table current.
//
//	ats-ingest scrape [--source S] [--target SLUG] [--limit N] [--dry-run] [--resume|--fresh]
//	ats-ingest daemon
//	ats-ingest sweep
//	ats-ingest targets import FILE
package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
)

const version = "1.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if hint := errors.FlattenHints(err); hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
}
