// File: server/control_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestControlStatsIncludesRegisteredProbe(t *testing.T) {
	srv := New(DefaultConfig("127.0.0.1:0"))
	srv.Control().RegisterDebugProbe("answer", func() any { return 42 })

	stats := srv.Control().Stats()
	require.Equal(t, 42, stats["debug.answer"])
	require.Contains(t, stats, "metrics")
}
