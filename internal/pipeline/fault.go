package pipeline

import "fmt"

// FaultError is a program error (spec.md §7): a misaligned or
// out-of-range branch target, a misaligned fetch PC, integer division by
// zero, or an out-of-range data address. It is fatal — only a broken
// program produces it — and is raised as a panic out of Tick/Run; unlike
// the original C simulator's bare assert(), the CLI recovers it, reports
// the faulting PC, and exits with partial state rather than crashing the
// process outright.
type FaultError struct {
	PC      int
	Message string
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("program error at pc(%d): %s", e.PC, e.Message)
}

func fault(pc int, format string, args ...any) {
	panic(&FaultError{PC: pc, Message: fmt.Sprintf(format, args...)})
}
