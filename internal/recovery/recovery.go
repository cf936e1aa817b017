// internal/recovery/recovery.go
package recovery

import (
	"fmt"
	"os"
	"runtime/debug"
)

// HandlePanic should be deferred at the top of main() or long-lived
// goroutines. It logs the panic with a stack trace and exits with
// code 1 after running any cleanup functions, last registered first.
func HandlePanic(cleanup ...func()) {
	if r := recover(); r != nil {
		_, _ = fmt.Fprintf(os.Stderr, "FATAL: %v\n\nStack trace:\n%s\n", r, debug.Stack())
		for i := len(cleanup) - 1; i >= 0; i-- {
			if cleanup[i] != nil {
				cleanup[i]()
			}
		}
		os.Exit(1)
	}
}
