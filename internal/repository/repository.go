// Package repository holds the data-access layer.
//
// Every operation checks one connection out of the pool, runs a single
// statement, and releases the connection on the way out, success or
// failure. Methods here block on database I/O; callers are expected to
// run them through the offload executor, never directly on a request
// goroutine.
package repository
