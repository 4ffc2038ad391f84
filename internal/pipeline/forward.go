package pipeline

import "github.com/binghamton-arch/apexsim/internal/isa"

// tapEX and tapMEM index the two-entry forwarding-tap table (spec.md §3:
// "forwarding-tap array of length 2").
const (
	tapEX = iota
	tapMEM
)

// tap is one forwarding-network entry: a (register, value) pair, or the
// invalid sentinel when Reg == isa.NoReg. A tap entry is valid for exactly
// one cycle (spec.md §3 invariant 5) — ForwardingNetwork.clear resets both
// entries at the end of every Decode step that holds an instruction.
type tap struct {
	Reg   isa.Reg
	Value int32
}

// ForwardingNetwork is the two-tap-point bypass network described in
// spec.md §4.2: an EX tap (position 0) and a MEM tap (position 1). Decode
// consults it, in priority order, only after the register file itself
// reports an in-flight producer (validity bit cleared).
type ForwardingNetwork struct {
	taps [2]tap
}

// publishEX records the value Execute just computed for rd.
func (f *ForwardingNetwork) publishEX(rd isa.Reg, value int32) {
	if rd.Architectural() {
		f.taps[tapEX] = tap{Reg: rd, Value: value}
	}
}

// publishMEM records the value Memory just produced (or passed through)
// for rd.
func (f *ForwardingNetwork) publishMEM(rd isa.Reg, value int32) {
	if rd.Architectural() {
		f.taps[tapMEM] = tap{Reg: rd, Value: value}
	}
}

// clear invalidates both taps. Called at the end of every Decode step that
// holds an instruction, regardless of whether Decode stalled (spec.md
// §4.2); a cycle with an empty Decode leaves the taps as they are.
func (f *ForwardingNetwork) clear() {
	f.taps[tapEX] = tap{Reg: isa.NoReg}
	f.taps[tapMEM] = tap{Reg: isa.NoReg}
}

// resolve looks up r in priority order: EX tap (unless its producer is a
// load — a load's result is not available until Memory, spec.md §4.2),
// then MEM tap. It reports ok=false if neither tap currently carries r,
// meaning the caller must fall back to the register file or stall.
func (f *ForwardingNetwork) resolve(r isa.Reg, exProducerIsLoad bool) (value int32, ok bool) {
	if ex := f.taps[tapEX]; ex.Reg == r && !exProducerIsLoad {
		return ex.Value, true
	}
	if mem := f.taps[tapMEM]; mem.Reg == r {
		return mem.Value, true
	}
	return 0, false
}
