package execshell

const (
	executionModeLiveStringConstant     = "live"
	executionModeSimulateStringConstant = "simulate"
)

// ExecutionMode selects between performing side effects and announcing them.
type ExecutionMode string

// Supported execution modes.
const (
	// ExecutionModeLive performs every external side effect.
	ExecutionModeLive ExecutionMode = ExecutionMode(executionModeLiveStringConstant)
	// ExecutionModeSimulate announces mutating operations without performing them.
	ExecutionModeSimulate ExecutionMode = ExecutionMode(executionModeSimulateStringConstant)
)

// Simulated reports whether mutating operations must be skipped.
func (mode ExecutionMode) Simulated() bool {
	return mode == ExecutionModeSimulate
}
