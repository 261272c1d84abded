// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package fiber implements the pool fiber (§4.B): a single-consumer task
// queue tied to a shared bounded worker pool, used to serialize per-session
// handler callbacks without pinning a whole goroutine to an idle session.
package fiber
