// Command gqlselect compiles selection bundles into GraphQL documents and
// generates persisted document manifests.
//
// Usage:
//
//	gqlselect compile bundle.json --schema schema.graphql
//	gqlselect manifest bundle.json -o documents.go
//	gqlselect check documents.go
//	gqlselect checksum
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
