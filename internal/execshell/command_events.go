package execshell

// CommandEventObserver receives lifecycle notifications for every command the
// executor runs. The ui package implements it to surface progress to users.
type CommandEventObserver interface {
	CommandStarted(command ShellCommand)
	CommandCompleted(command ShellCommand, result ExecutionResult)
	CommandExecutionFailed(command ShellCommand, failure error)
}

// noopCommandEventObserver is installed until a real observer is configured.
type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand)                  {}
func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}
func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error)   {}
