// File: api/buffer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Buffer is a pooled byte slice used by the acceptor's and client's read
// path to avoid an allocation per readiness wakeup. Adapted from the teacher's NUMA-aware
// Buffer; NUMA placement itself is dropped (see DESIGN.md) but the
// pool-release contract is kept verbatim.

package api

// Releaser returns a Buffer to its owning pool.
type Releaser interface {
	Put(Buffer)
}

// Buffer is a pooled byte slice.
type Buffer struct {
	Data []byte
	Pool Releaser
}

// Bytes returns the byte slice backing this Buffer.
func (b Buffer) Bytes() []byte { return b.Data }

// Slice returns a new Buffer view sharing the same underlying memory.
func (b Buffer) Slice(from, to int) Buffer {
	if from < 0 || to > len(b.Data) || from > to {
		return Buffer{Pool: b.Pool}
	}
	return Buffer{Data: b.Data[from:to], Pool: b.Pool}
}

// Release returns the buffer to its pool, a no-op if unpooled.
func (b Buffer) Release() {
	if b.Pool != nil {
		b.Pool.Put(b)
	}
}

// BufferPool hands out reusable byte buffers sized at least `size`.
type BufferPool interface {
	Get(size int) Buffer
	Put(b Buffer)
	Stats() BufferPoolStats
}

// BufferPoolStats summarizes pool usage.
type BufferPoolStats struct {
	TotalAlloc int64
	TotalFree  int64
	InUse      int64
}
