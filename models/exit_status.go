package models

import "fmt"

// ExitStatus is an error carrying a process exit code. The quit
// command uses it to exit 130 for shell job-control semantics.
type ExitStatus int

func (e ExitStatus) Error() string {
	return fmt.Sprintf("exit %d", e)
}
