package mutator_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/blorticus-go/diafuzzer/dictionary"
	"github.com/blorticus-go/diafuzzer/diameter"
	"github.com/blorticus-go/diafuzzer/mutator"
	"github.com/blorticus-go/diafuzzer/tagger"
)

const enumerateFixtureDia = `
@id 16777251
@name mutator-fixture

@avp_types
Origin-Host                                 264        DiamIdent            M
Origin-Realm                                296        DiamIdent            M
Subscription-Id-Type                        450        Enumerated           M
Subscription-Id-Data                        444        UTF8String           M
Subscription-Id                             443        Grouped              M
Stackable                                   9001       Grouped              M

@grouped
Subscription-Id ::= < AVP Header: 443 >
  { Subscription-Id-Type }
  { Subscription-Id-Data }

Stackable ::= < AVP Header: 9001 >
  *[ AVP ]

@enum Subscription-Id-Type
END_USER_IMSI                               1
END_USER_SIP_URI                            6

@messages
ER-Request ::= <Diameter Header: 8388622, REQ, PXY, 16777251>
  { Origin-Host }
  { Origin-Realm }
  0*3{ Subscription-Id }
  [ Stackable ]
`

func loadFixtureDirectory() *dictionary.Directory {
	tmp := GinkgoT().TempDir()
	path := filepath.Join(tmp, "fixture.dia")
	Expect(os.WriteFile(path, []byte(enumerateFixtureDia), 0o644)).To(Succeed())

	dir, err := dictionary.LoadDirectory([]string{path})
	Expect(err).NotTo(HaveOccurred())
	return dir
}

func taggedFixtureMessage() *diameter.Message {
	msg := diameter.NewMessage(8388622, 16777251, true, true,
		diameter.NewUTF8StringAVP(diameter.AvpCodeOriginHost, 0, true, false, "host.example.com"),
		diameter.NewUTF8StringAVP(diameter.AvpCodeOriginRealm, 0, true, false, "example.com"),
		diameter.NewGroupedAVP(443, 0, true, false, []*diameter.AVP{
			diameter.NewUnsigned32AVP(450, 0, true, false, 1),
			diameter.NewUTF8StringAVP(444, 0, true, false, "001010000000001"),
		}),
		diameter.NewGroupedAVP(9001, 0, true, false, []*diameter.AVP{
			diameter.NewAVP(70000, 0, false, false, []byte{1, 2, 3, 4}),
		}),
	)

	Expect(tagger.Tag(msg, loadFixtureDirectory())).To(Succeed())
	return msg
}

var _ = Describe("Enumerate", func() {
	It("produces top-level structural mutations for every tagged qualified-AVP slot", func() {
		msg := taggedFixtureMessage()
		descriptors := mutator.Enumerate([]mutator.CapturedMessage{{Message: msg, IsOutgoing: true}})

		var absentOriginHost, overpresentSubscription bool
		for _, d := range descriptors {
			if d.Tag == mutator.Absent && d.Path == "/code=264" {
				absentOriginHost = true
			}
			if d.Tag == mutator.Overpresent && d.Path == "/code=443" && d.Count == 64 {
				overpresentSubscription = true
			}
		}
		Expect(absentOriginHost).To(BeTrue())
		Expect(overpresentSubscription).To(BeTrue())
	})

	It("emits a present-more-than-max-allowed variant only when the slot declares a max", func() {
		msg := taggedFixtureMessage()
		descriptors := mutator.Enumerate([]mutator.CapturedMessage{{Message: msg, IsOutgoing: true}})

		found := false
		for _, d := range descriptors {
			if d.Tag == mutator.Overpresent && d.Path == "/code=443" && d.Description == "present more than max allowed" {
				Expect(d.Count).To(Equal(4))
				found = true
			}
		}
		Expect(found).To(BeTrue())
	})

	It("produces leaf value mutations labelled with the AVP's model name", func() {
		msg := taggedFixtureMessage()
		descriptors := mutator.Enumerate([]mutator.CapturedMessage{{Message: msg, IsOutgoing: true}})

		foundEmpty := false
		for _, d := range descriptors {
			if d.Tag == mutator.SetValue && d.Path == "/code=264" && d.Description == "Origin-Host empty value" {
				Expect(d.Value).To(BeEmpty())
				foundEmpty = true
			}
		}
		Expect(foundEmpty).To(BeTrue())
	})

	It("produces enumerated out-of-range mutations from the directory's value table", func() {
		msg := taggedFixtureMessage()
		descriptors := mutator.Enumerate([]mutator.CapturedMessage{{Message: msg, IsOutgoing: true}})

		var lower, upper bool
		for _, d := range descriptors {
			if d.Path != "/code=443/code=450" {
				continue
			}
			if d.Description == "Subscription-Id-Type Enumerated lower than allowed" {
				Expect(d.Value).To(Equal([]byte{0x00, 0x00, 0x00, 0x00}))
				lower = true
			}
			if d.Description == "Subscription-Id-Type Enumerated bigger than allowed" {
				Expect(d.Value).To(Equal([]byte{0x00, 0x00, 0x00, 0x07}))
				upper = true
			}
		}
		Expect(lower).To(BeTrue())
		Expect(upper).To(BeTrue())
	})

	It("produces a self-stacking mutation for a Grouped AVP whose model allows it", func() {
		msg := taggedFixtureMessage()
		descriptors := mutator.Enumerate([]mutator.CapturedMessage{{Message: msg, IsOutgoing: true}})

		found := false
		for _, d := range descriptors {
			if d.Tag == mutator.SetValue && d.Path == "/code=9001" {
				Expect(d.Description).To(ContainSubstring("self-stacked"))
				Expect(len(d.Value)).To(BeNumerically(">", 0))
				found = true
			}
		}
		Expect(found).To(BeTrue())
	})

	It("skips received messages and only counts outgoing ones toward the anchor index", func() {
		first := taggedFixtureMessage()
		received := taggedFixtureMessage()
		second := taggedFixtureMessage()

		descriptors := mutator.Enumerate([]mutator.CapturedMessage{
			{Message: first, IsOutgoing: true},
			{Message: received, IsOutgoing: false},
			{Message: second, IsOutgoing: true},
		})

		indices := map[int]bool{}
		for _, d := range descriptors {
			indices[d.Anchor.OutgoingIndex] = true
		}
		Expect(indices).To(HaveKey(0))
		Expect(indices).To(HaveKey(1))
		Expect(indices).NotTo(HaveKey(2))
	})

	It("is deterministic across repeated runs on the same input", func() {
		msg := taggedFixtureMessage()
		captured := []mutator.CapturedMessage{{Message: msg, IsOutgoing: true}}

		first := mutator.Enumerate(captured)
		second := mutator.Enumerate(captured)

		Expect(len(first)).To(Equal(len(second)))
		for i := range first {
			Expect(first[i].Path).To(Equal(second[i].Path))
			Expect(first[i].Description).To(Equal(second[i].Description))
			Expect(first[i].Tag).To(Equal(second[i].Tag))
		}
	})
})
