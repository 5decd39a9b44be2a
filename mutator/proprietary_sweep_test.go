package mutator_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/blorticus-go/diafuzzer/mutator"
)

var _ = Describe("ProprietarySweep", func() {
	It("yields one AppendSynthetic descriptor per candidate code, anchored to the outgoing message", func() {
		msg := plainMessage()
		captured := []mutator.CapturedMessage{{Message: msg, IsOutgoing: true}}

		var codes []uint32
		mutator.ProprietarySweep(captured, 10415, []byte{0xaa}, 100, 103, func(d *mutator.Descriptor) bool {
			Expect(d.Tag).To(Equal(mutator.AppendSynthetic))
			Expect(d.AvpVendorID).To(Equal(uint32(10415)))
			Expect(d.Anchor.OutgoingIndex).To(Equal(0))
			codes = append(codes, d.AvpCode)
			return true
		})

		Expect(codes).To(Equal([]uint32{100, 101, 102}))
	})

	It("stops as soon as yield returns false", func() {
		msg := plainMessage()
		captured := []mutator.CapturedMessage{{Message: msg, IsOutgoing: true}}

		count := 0
		mutator.ProprietarySweep(captured, 0, nil, 0, 1000000, func(d *mutator.Descriptor) bool {
			count++
			return count < 5
		})

		Expect(count).To(Equal(5))
	})

	It("skips received messages when anchoring", func() {
		sentMsg := plainMessage()
		recvMsg := plainMessage()
		captured := []mutator.CapturedMessage{
			{Message: recvMsg, IsOutgoing: false},
			{Message: sentMsg, IsOutgoing: true},
		}

		var anchors []int
		mutator.ProprietarySweep(captured, 0, nil, 0, 1, func(d *mutator.Descriptor) bool {
			anchors = append(anchors, d.Anchor.OutgoingIndex)
			return true
		})

		Expect(anchors).To(Equal([]int{0}))
	})
})
