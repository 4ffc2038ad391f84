package state_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/binghamton-arch/apexsim/internal/state"
)

var _ = Describe("Memory", func() {
	It("reads back what was written", func() {
		m := state.NewMemory()
		m.Write(4000, 77)
		Expect(m.Read(4000)).To(Equal(int32(77)))
	})

	It("reports range membership", func() {
		m := state.NewMemory()
		Expect(m.InRange(0)).To(BeTrue())
		Expect(m.InRange(state.DataMemorySize - 1)).To(BeTrue())
		Expect(m.InRange(state.DataMemorySize)).To(BeFalse())
		Expect(m.InRange(-1)).To(BeFalse())
	})

	It("dumps the first n words", func() {
		m := state.NewMemory()
		m.Write(0, 1)
		m.Write(1, 2)
		dump := m.Dump(3)
		Expect(dump).To(Equal([]int32{1, 2, 0}))
	})
})
