// Package service orchestrates the core components of the engine:
// the book, the sequencer, memory reclamation, the feed outbox and
// metrics. OrderService is the only write entry point; all reads run
// under a reader epoch so reclamation never frees an order a query
// can still see.
package service
