// Package loopback provides an in-memory stand-in for the JNET queue.
//
// A Queue accepts submissions, makes their answers visible after a
// configurable delay, and consumes files on retrieval, which is enough to run
// the whole cce protocol without network access.
package loopback
