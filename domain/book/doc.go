// Package book implements the in-memory matching engine for a single
// instrument. It maintains two red-black trees of price levels (bids
// descending-best, asks ascending-best), a FIFO queue of resting orders
// per level, and an order-id index for O(1) cancellation lookup.
//
// Matching follows price-time priority: better prices fill first, and
// among equal prices the earlier arrival fills first. Trades always
// execute at the resting (maker) order's price.
//
// The package is single-writer and deterministic: it performs no
// logging and no I/O, and given the same submission sequence it always
// produces the same trades and final state. Callers needing concurrent
// access must serialize externally (see the service package).
package book
