package diameter_test

import (
	"encoding/hex"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/blorticus-go/diafuzzer/diameter"
)

var _ = Describe("AVP", func() {
	When("decoding an unpadded AVP", func() {
		It("re-encodes to the identical bytes", func() {
			raw, err := hex.DecodeString("0000012b4000000c00000000")
			Expect(err).NotTo(HaveOccurred())

			avp, err := diameter.DecodeAVP(raw)
			Expect(err).NotTo(HaveOccurred())
			Expect(avp.Code).To(Equal(uint32(299)))
			Expect(avp.Mandatory).To(BeTrue())
			Expect(avp.VendorSpecific).To(BeFalse())
			Expect(avp.Encode()).To(Equal(raw))
		})
	})

	When("decoding a padded AVP carrying an ASCII string", func() {
		It("re-encodes to the identical bytes", func() {
			raw, err := hex.DecodeString("0000010d400000334d75205365727669636520416e616c797a6572204469616d6574657220496d706c656d656e746174696f6e00")
			Expect(err).NotTo(HaveOccurred())

			avp, err := diameter.DecodeAVP(raw)
			Expect(err).NotTo(HaveOccurred())
			Expect(avp.Code).To(Equal(uint32(269)))
			Expect(string(avp.Data)).To(Equal("Mu Service Analyzer Diameter Implementation"))
			Expect(avp.Encode()).To(Equal(raw))
		})
	})

	When("an AVP's value is too short to hold nested AVPs", func() {
		It("leaves Avps nil and keeps the raw Data", func() {
			raw, err := hex.DecodeString("0000012b4000000c00000000")
			Expect(err).NotTo(HaveOccurred())

			avp, err := diameter.DecodeAVP(raw)
			Expect(err).NotTo(HaveOccurred())
			Expect(avp.Avps).To(BeNil())
		})
	})

	When("an AVP's value is a valid sequence of nested AVPs", func() {
		It("populates Avps and still re-encodes identically", func() {
			inner := diameter.NewUnsigned32AVP(266, 0, true, false, 10415)
			outer := diameter.NewGroupedAVP(909, 0, true, false, []*diameter.AVP{inner})

			encoded := outer.Encode()
			decoded, err := diameter.DecodeAVP(encoded)
			Expect(err).NotTo(HaveOccurred())
			Expect(decoded.Avps).To(HaveLen(1))
			Expect(decoded.Avps[0].Code).To(Equal(uint32(266)))
			Expect(decoded.Encode()).To(Equal(encoded))
		})
	})

	When("Clone is called", func() {
		It("produces a structurally equal but independent copy", func() {
			original := diameter.NewUTF8StringAVP(264, 0, true, false, "host.example.com")
			clone := original.Clone()

			Expect(clone.Equal(original)).To(BeTrue())

			clone.Data[0] = 'X'
			Expect(clone.Equal(original)).To(BeFalse())
		})
	})

	When("AllowsStacking is checked", func() {
		It("reports true only once the AVP has at least one child", func() {
			scalar := diameter.NewUnsigned32AVP(1, 0, true, false, 1)
			Expect(scalar.AllowsStacking()).To(BeFalse())

			grouped := diameter.NewGroupedAVP(2, 0, true, false, []*diameter.AVP{scalar})
			Expect(grouped.AllowsStacking()).To(BeTrue())
		})
	})
})
