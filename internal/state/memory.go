package state

// DataMemorySize is the number of addressable words in data memory
// (spec.md §3: "data memory of 4096 signed 32-bit words (configurable
// constant)").
const DataMemorySize = 4096

// Memory is APEX's word-addressed data memory. Addresses are simulator
// internal indices produced by address-computation opcodes, not byte
// addresses (spec.md §6). Only the Memory stage touches it.
type Memory struct {
	words [DataMemorySize]int32
}

// NewMemory returns a zeroed data memory.
func NewMemory() *Memory {
	return &Memory{}
}

// InRange reports whether addr is a valid data memory index.
func (m *Memory) InRange(addr int32) bool {
	return addr >= 0 && int(addr) < DataMemorySize
}

// Read returns the word at addr.
func (m *Memory) Read(addr int32) int32 {
	return m.words[addr]
}

// Write stores value at addr.
func (m *Memory) Write(addr int32, value int32) {
	m.words[addr] = value
}

// Dump returns the first n words, for the trace's final data-memory dump.
func (m *Memory) Dump(n int) []int32 {
	out := make([]int32, n)
	copy(out, m.words[:n])
	return out
}
