package cache

import "go.uber.org/zap"

// Fatalf escalates a structural invariant violation the way the reference
// engines' ERROR(...) macro does: a dangling marker, a node the index
// should contain but doesn't, or an unsupported operation being invoked.
// These are programmer errors, not user input (absent keys and capacity
// pressure are handled without ever reaching here), so Fatalf logs at fatal
// level and terminates the process via the logger's fatal hook.
//
// Tests that must exercise this path configure logger with
// zap.OnFatal(zapcore.WriteThenPanic) so the termination can be observed
// with recover() instead of killing the test binary.
func Fatalf(logger *zap.SugaredLogger, format string, args ...any) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	logger.Fatalf(format, args...)
}
