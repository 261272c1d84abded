// File: middleware/logging.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Logging mirrors the teacher's LoggingMiddleware (log connection start
// and end), extended to every lifecycle callback and using logrus.

package middleware

import (
	"github.com/momentics/topic-fabric/api"
	"github.com/sirupsen/logrus"
)

// Logging logs every lifecycle and message event through log at debug
// level, and OnError/OnException at warn/error level.
func Logging(log *logrus.Entry) Middleware {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return func(next api.Handler) api.Handler {
		return api.HandlerFuncs{
			Open: func(c api.NetConn, hdr map[string][]string, s api.State) {
				log.WithField("fd", c.RawFD()).Debug("connection opened")
				next.OnOpen(c, hdr, s)
			},
			Message: func(c api.NetConn, s api.State, text string) {
				log.WithField("fd", c.RawFD()).WithField("len", len(text)).Debug("text message")
				next.OnMessage(c, s, text)
			},
			Binary: func(c api.NetConn, s api.State, data []byte) {
				log.WithField("fd", c.RawFD()).WithField("len", len(data)).Debug("binary message")
				next.OnBinaryMessage(c, s, data)
			},
			Close: func(c api.NetConn, s api.State) {
				log.WithField("fd", c.RawFD()).Debug("connection closed")
				next.OnClose(c, s)
			},
			Error: func(c api.NetConn, s api.State, reason string) {
				log.WithField("fd", c.RawFD()).WithField("reason", reason).Warn("connection error")
				next.OnError(c, s, reason)
			},
			Exception: func(c api.NetConn, s api.State, err error) {
				log.WithField("fd", c.RawFD()).WithError(err).Error("handler exception")
				next.OnException(c, s, err)
			},
		}
	}
}
