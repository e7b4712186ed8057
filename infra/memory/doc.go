// Package memory provides the primitives for object reuse and safe
// reclamation: a typed order pool, a lock-free retire ring, and global
// epoch tracking. Orders leaving the book (filled or cancelled) are
// retired into the ring and returned to the pool only once no reader
// epoch can still observe them.
//
// The package is dependency-free and knows nothing about orders or
// matching.
package memory
