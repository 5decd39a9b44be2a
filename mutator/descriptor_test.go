package mutator_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/blorticus-go/diafuzzer/diameter"
	"github.com/blorticus-go/diafuzzer/mutator"
)

func plainMessage() *diameter.Message {
	return diameter.NewMessage(8388622, 16777251, true, true,
		diameter.NewUTF8StringAVP(264, 0, true, false, "host.example.com"),
		diameter.NewUTF8StringAVP(296, 0, true, false, "example.com"),
	)
}

var _ = Describe("Descriptor.Apply", func() {
	It("removes the matching AVP for an Absent descriptor", func() {
		msg := plainMessage()
		d := &mutator.Descriptor{Tag: mutator.Absent, Path: "/code=264"}

		out, err := d.Apply(msg, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HaveLen(1))
		Expect(out[0].FirstAvpMatching(264, 0)).To(BeNil())
	})

	It("clones the last match up to Count for an Overpresent descriptor", func() {
		msg := plainMessage()
		d := &mutator.Descriptor{Tag: mutator.Overpresent, Path: "/code=264", Count: 3}

		out, err := d.Apply(msg, nil)
		Expect(err).NotTo(HaveOccurred())

		count := 0
		for _, a := range out[0].Avps {
			if a.Code == 264 {
				count++
			}
		}
		Expect(count).To(Equal(3))
	})

	It("replaces the value for a SetValue descriptor", func() {
		msg := plainMessage()
		d := &mutator.Descriptor{Tag: mutator.SetValue, Path: "/code=264", Value: []byte("")}

		out, err := d.Apply(msg, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(out[0].FirstAvpMatching(264, 0).Data).To(BeEmpty())
	})

	It("returns no messages for an Omit descriptor", func() {
		msg := plainMessage()
		d := &mutator.Descriptor{Tag: mutator.Omit}

		out, err := d.Apply(msg, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(BeEmpty())
	})

	It("transmits the message twice with fresh IDs on the second copy for a Stutter descriptor", func() {
		msg := plainMessage()
		msg.HopByHopID = 1
		msg.EndToEndID = 2
		d := &mutator.Descriptor{Tag: mutator.Stutter}

		calls := 0
		out, err := d.Apply(msg, func() (uint32, uint32) {
			calls++
			return 100, 200
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HaveLen(2))
		Expect(calls).To(Equal(1))
		Expect(out[0].HopByHopID).To(Equal(uint32(1)))
		Expect(out[1].HopByHopID).To(Equal(uint32(100)))
		Expect(out[1].EndToEndID).To(Equal(uint32(200)))
	})

	It("appends a new synthetic AVP as a sibling for an AppendSynthetic descriptor", func() {
		msg := plainMessage()
		d := &mutator.Descriptor{
			Tag: mutator.AppendSynthetic, Path: "/code=264",
			AvpCode: 9999, AvpVendorID: 0, Value: []byte{9, 9},
		}

		out, err := d.Apply(msg, nil)
		Expect(err).NotTo(HaveOccurred())
		synthetic := out[0].FirstAvpMatching(9999, 0)
		Expect(synthetic).NotTo(BeNil())
		Expect(synthetic.Data).To(Equal([]byte{9, 9}))
	})

	It("reports a MutationError when the path does not resolve", func() {
		msg := plainMessage()
		d := &mutator.Descriptor{Tag: mutator.Absent, Path: "/code=1/code=2"}

		_, err := d.Apply(msg, nil)
		Expect(err).To(HaveOccurred())
		Expect(err).To(BeAssignableToTypeOf(&mutator.MutationError{}))
	})
})
