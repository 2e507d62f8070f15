package arpahost

// A FaultLogger receives log-and-continue fault reports from the
// protocol core, tagged with the fault class taxonomy of spec.md §7
// ("framing", "ncp", "resource") or with the reporting component
// ("loop", "router", "telemetry"). The core never treats a fault as
// fatal, and nothing in cmd/arpahost exits the process because of a
// reported fault.
//
// internal/logging provides the logrus-backed implementation used by
// cmd/arpahost; tests typically use a slice-collecting stub.
type FaultLogger interface {
	Fault(class, message string)
}

// FaultLoggerFunc adapts a function to a FaultLogger.
type FaultLoggerFunc func(class, message string)

// Fault implements FaultLogger.
func (f FaultLoggerFunc) Fault(class, message string) { f(class, message) }

// discardLogger drops every fault; used when no logger is supplied.
type discardLogger struct{}

func (discardLogger) Fault(string, string) {}
