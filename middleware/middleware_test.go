// File: middleware/middleware_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package middleware

import (
	"testing"

	"github.com/momentics/topic-fabric/api"
	"github.com/stretchr/testify/require"
)

type fakeConn struct{ fd uintptr }

func (f fakeConn) Read(p []byte) (int, error)  { return 0, nil }
func (f fakeConn) Write(p []byte) (int, error) { return len(p), nil }
func (f fakeConn) Close() error                { return nil }
func (f fakeConn) RawFD() uintptr              { return f.fd }

type fakeState struct{}

func (fakeState) Set(string, any)           {}
func (fakeState) Get(string) (any, bool)    { return nil, false }
func (fakeState) Delete(string)             {}

func TestChainOrdersOuterToInner(t *testing.T) {
	var order []string
	mkMW := func(name string) Middleware {
		return func(next api.Handler) api.Handler {
			return api.HandlerFuncs{
				Open: func(c api.NetConn, h map[string][]string, s api.State) {
					order = append(order, name)
					next.OnOpen(c, h, s)
				},
			}
		}
	}
	base := api.HandlerFuncs{Open: func(api.NetConn, map[string][]string, api.State) {
		order = append(order, "base")
	}}

	h := Chain(base, mkMW("A"), mkMW("B"))
	h.OnOpen(fakeConn{}, nil, fakeState{})

	require.Equal(t, []string{"A", "B", "base"}, order)
}

func TestRecoveryConvertsPanicToException(t *testing.T) {
	var gotErr error
	base := api.HandlerFuncs{
		Message: func(api.NetConn, api.State, string) { panic("boom") },
		Exception: func(_ api.NetConn, _ api.State, err error) {
			gotErr = err
		},
	}

	h := Recovery()(base)
	h.OnMessage(fakeConn{}, fakeState{}, "hi")

	require.Error(t, gotErr)
}

func TestMetricsTracksConnectionLifecycle(t *testing.T) {
	counters := &Counters{}
	base := api.HandlerFuncs{}
	h := Metrics(counters)(base)

	h.OnOpen(fakeConn{}, nil, fakeState{})
	h.OnMessage(fakeConn{}, fakeState{}, "hello")
	h.OnClose(fakeConn{}, fakeState{})

	snap := counters.Snapshot()
	require.Equal(t, int64(0), snap.ActiveConnections)
	require.Equal(t, int64(1), snap.MessagesReceived)
	require.Equal(t, int64(5), snap.BytesReceived)
}
