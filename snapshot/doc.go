// Package snapshot provides consistent, read-only views of the book:
// an epoch reader that pins retired orders while a query runs, and a
// depth snapshot built from the top levels of both sides for the
// market-data feed. Nothing here is persisted.
package snapshot
