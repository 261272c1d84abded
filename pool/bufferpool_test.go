// File: pool/bufferpool_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetAllocatesOnMiss(t *testing.T) {
	p := NewChannelPool(4)
	buf := p.Get(128)
	require.Len(t, buf.Data, 128)
	require.Equal(t, int64(1), p.Stats().TotalAlloc)
	require.Equal(t, int64(1), p.Stats().InUse)
}

func TestPutThenGetReusesBuffer(t *testing.T) {
	p := NewChannelPool(4)
	buf := p.Get(256)
	buf.Release()

	require.Equal(t, int64(0), p.Stats().InUse)
	require.Equal(t, int64(1), p.Stats().TotalFree)

	reused := p.Get(128)
	require.Equal(t, int64(1), p.Stats().TotalAlloc)
	require.Len(t, reused.Data, 128)
}

func TestGetAllocatesFreshWhenTooSmall(t *testing.T) {
	p := NewChannelPool(4)
	small := p.Get(8)
	small.Release()

	bigger := p.Get(64)
	require.Equal(t, int64(2), p.Stats().TotalAlloc)
	require.Len(t, bigger.Data, 64)
}

func TestPutDropsOnFullFreeList(t *testing.T) {
	p := NewChannelPool(1)
	a := p.Get(16)
	b := p.Get(16)
	a.Release()
	b.Release()

	require.Equal(t, int64(1), p.Stats().TotalFree)
}
