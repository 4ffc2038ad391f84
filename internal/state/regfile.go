// Package state holds the architectural state touched by the pipeline:
// the integer register file with its producer-validity bitmap, and data
// memory. Both are written/read only from the stages spec.md §5 grants
// exclusive access to; there is no locking because the driver loop is
// single-threaded and cycle-driven.
package state

import "github.com/binghamton-arch/apexsim/internal/isa"

// RegFile is the APEX integer register file: 32 signed 32-bit words and a
// per-register validity bit (true = no producer in flight, matching
// spec.md §3's regs_valid_check convention). All 32 slots exist so a
// destination register index can always be used directly, but only the
// first isa.NumArchRegs are ever addressed by a real instruction.
type RegFile struct {
	regs  [32]int32
	valid [32]bool
}

// NewRegFile returns a register file with every register valid (no
// producer in flight) and zeroed, matching cold-reset semantics.
func NewRegFile() *RegFile {
	rf := &RegFile{}
	for i := range rf.valid {
		rf.valid[i] = true
	}
	return rf
}

// Read returns the current value of r.
func (rf *RegFile) Read(r isa.Reg) int32 {
	return rf.regs[r]
}

// IsValid reports whether r currently has no producer in flight.
func (rf *RegFile) IsValid(r isa.Reg) bool {
	return rf.valid[r]
}

// MarkInFlight clears r's validity bit: a producer for r has just entered
// Execute. spec.md §4.2 allows clearing at Decode-exit or Execute-entry;
// this implementation clears at Execute-entry exclusively (see DESIGN.md).
func (rf *RegFile) MarkInFlight(r isa.Reg) {
	rf.valid[r] = false
}

// Commit writes value into r and marks it valid again: Writeback has
// retired r's producer.
func (rf *RegFile) Commit(r isa.Reg, value int32) {
	rf.regs[r] = value
	rf.valid[r] = true
}

// Snapshot returns a copy of the architectural register values and
// validity bits for the first n registers, used by the trace dump.
func (rf *RegFile) Snapshot(n int) (values []int32, valid []bool) {
	values = make([]int32, n)
	valid = make([]bool, n)
	for i := 0; i < n; i++ {
		values[i] = rf.regs[i]
		valid[i] = rf.valid[i]
	}
	return values, valid
}
