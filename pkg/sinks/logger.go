package sinks

import "github.com/amba-hq/amba/pkg/httpclient"

// Logger is the logging surface sinks share with the transports they send through.
type Logger = httpclient.Logger

func ensureLogger(log Logger) Logger {
	if log == nil {
		return httpclient.NopLogger{}
	}
	return log
}
