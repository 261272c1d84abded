// File: pool/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package pool provides a pooled byte-buffer allocator for the read
// path (§4.I "Acceptor", §6 "Client facade"): every per-wakeup raw read
// chunk is borrowed from here instead of allocated fresh, cutting one
// allocation per readiness notification under load.
//
// Grounded on the teacher's pool/base_bufferpool.go (a channel-backed
// free list keyed by size class, falling back to a fresh allocation on a
// miss), trimmed of NUMA-node keying — this module's reactor has no
// NUMA/cgo affinity layer for a per-node pool to serve (see DESIGN.md).
package pool
