// Package main provides the lobbyreg command line.
//
// Usage:
//
//	lobbyreg crawl --site fd --runtime date --from 2024-01-01 --to 2024-01-31
//	lobbyreg extract --input pages.ndjson
//
// See --help for all available options.
package main

func main() {
	Execute()
}
