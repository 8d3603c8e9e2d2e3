package monitoring

import "log"

// Logf is the process-wide operational logger used for session lifecycle and
// persistence fault lines. It defaults to log.Printf; replace it with
// SetLogger to redirect or silence output.
var Logf func(format string, v ...any) = log.Printf

// SetLogger swaps the package logger. A nil argument installs a no-op so
// callers never have to nil-check Logf.
func SetLogger(f func(format string, v ...any)) {
	if f == nil {
		Logf = func(string, ...any) {}
		return
	}
	Logf = f
}
