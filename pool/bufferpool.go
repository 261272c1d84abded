// File: pool/bufferpool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"sync/atomic"

	"github.com/momentics/topic-fabric/api"
)

// ChannelPool implements api.BufferPool with a single channel-backed
// free list: Get returns a pooled buffer of at least size bytes,
// allocating a fresh one on a miss or an undersized hit; Put returns any
// buffer to the free list while it has room, so an undersized buffer is
// only dropped later, when Get takes it for a larger request.
type ChannelPool struct {
	free chan []byte

	alloc int64
	freed int64
	inUse int64
}

// NewChannelPool builds a pool holding at most capacity free buffers.
func NewChannelPool(capacity int) *ChannelPool {
	return &ChannelPool{
		free: make(chan []byte, capacity),
	}
}

var _ api.BufferPool = (*ChannelPool)(nil)

// Get returns a Buffer of at least size bytes.
func (p *ChannelPool) Get(size int) api.Buffer {
	select {
	case b := <-p.free:
		atomic.AddInt64(&p.freed, -1)
		if cap(b) < size {
			break
		}
		atomic.AddInt64(&p.inUse, 1)
		return api.Buffer{Data: b[:size], Pool: p}
	default:
	}
	atomic.AddInt64(&p.alloc, 1)
	atomic.AddInt64(&p.inUse, 1)
	return api.Buffer{Data: make([]byte, size), Pool: p}
}

// Put returns b to the free list, a no-op once the list is full.
func (p *ChannelPool) Put(b api.Buffer) {
	atomic.AddInt64(&p.inUse, -1)
	select {
	case p.free <- b.Data[:0:cap(b.Data)]:
		atomic.AddInt64(&p.freed, 1)
	default:
	}
}

// Stats reports pool usage counters.
func (p *ChannelPool) Stats() api.BufferPoolStats {
	return api.BufferPoolStats{
		TotalAlloc: atomic.LoadInt64(&p.alloc),
		TotalFree:  atomic.LoadInt64(&p.freed),
		InUse:      atomic.LoadInt64(&p.inUse),
	}
}
