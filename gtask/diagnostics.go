package gtask

import (
	"log"
	"sync/atomic"
)

// Severity classifies a diagnostic emitted by the task core, mirroring spec.md §7's distinction between a critical
// (callback attached) and a debug (no callback) drop-without-return diagnostic.
type Severity int

const (
	// SeverityDebug is used for diagnostics that are merely unusual, not a caller-visible bug.
	SeverityDebug Severity = iota

	// SeverityCritical is used for diagnostics that indicate a broken contract: a double terminal call, or a Task
	// dropped without ever returning while a callback was attached.
	SeverityCritical
)

// String implements [fmt.Stringer].
func (s Severity) String() string {
	if s == SeverityCritical {
		return "CRITICAL"
	}

	return "DEBUG"
}

// diagnosticLogger is the package-level hook every contract-violation and drop-without-return diagnostic is routed
// through. It defaults to the standard [log] package, the same fallback the teacher would reach for since
// go-safeconcurrency itself pulls in no third-party logger (see DESIGN.md); tests install their own hook with
// [SetDiagnosticLogger] to make an otherwise-unobservable internal diagnostic assertable, the same role a test-only
// callback plays in the teacher's workpool/pool_test.go.
var diagnosticLogger atomic.Pointer[func(Severity, error)]

// SetDiagnosticLogger installs fn as the sink for every diagnostic the task core emits, replacing the default
// [log.Default] sink. Passing nil restores the default. It is intended primarily for tests that need to observe a
// diagnostic that would otherwise only be visible as a log line.
func SetDiagnosticLogger(fn func(severity Severity, err error)) {
	if fn == nil {
		diagnosticLogger.Store(nil)

		return
	}
	diagnosticLogger.Store(&fn)
}

// reportDiagnostic routes err to the installed diagnostic logger, or to the standard logger if none is installed.
func reportDiagnostic(severity Severity, err error) {
	if fn := diagnosticLogger.Load(); fn != nil {
		(*fn)(severity, err)

		return
	}

	log.Printf("gtask: %s: %v", severity, err)
}
