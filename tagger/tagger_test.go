package tagger_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/blorticus-go/diafuzzer/dictionary"
	"github.com/blorticus-go/diafuzzer/diameter"
	"github.com/blorticus-go/diafuzzer/tagger"
)

const testDia = `
@id 16777251
@name tagger-fixture

@avp_types
Origin-Host                                 264        DiamIdent            M
Origin-Realm                                296        DiamIdent            M
Result-Code                                 268        Unsigned32           M
Subscription-Id-Type                        450        Enumerated           M
Subscription-Id-Data                        444        UTF8String           M
Subscription-Id                             443        Grouped              M

@grouped
Subscription-Id ::= < AVP Header: 443 >
  { Subscription-Id-Type }
  { Subscription-Id-Data }

@enum Subscription-Id-Type
END_USER_IMSI                               1

@messages
ER-Request ::= <Diameter Header: 8388622, REQ, PXY, 16777251>
  { Origin-Host }
  { Origin-Realm }
  *[ Subscription-Id ]
  [ AVP ]
`

var _ = Describe("Tag", func() {
	var dir *dictionary.Directory

	BeforeEach(func() {
		tmp := GinkgoT().TempDir()
		path := filepath.Join(tmp, "fixture.dia")
		Expect(os.WriteFile(path, []byte(testDia), 0o644)).To(Succeed())

		var err error
		dir, err = dictionary.LoadDirectory([]string{path})
		Expect(err).NotTo(HaveOccurred())
	})

	It("annotates top-level and nested AVPs with their model and qualified-AVP slots", func() {
		msg := diameter.NewMessage(8388622, 16777251, true, true,
			diameter.NewUTF8StringAVP(diameter.AvpCodeOriginHost, 0, true, false, "host.example.com"),
			diameter.NewUTF8StringAVP(diameter.AvpCodeOriginRealm, 0, true, false, "example.com"),
			diameter.NewGroupedAVP(443, 0, true, false, []*diameter.AVP{
				diameter.NewUnsigned32AVP(450, 0, true, false, 1),
				diameter.NewUTF8StringAVP(444, 0, true, false, "001010000000001"),
			}),
		)

		Expect(tagger.Tag(msg, dir)).To(Succeed())

		Expect(tagger.ModelOf(msg)).NotTo(BeNil())
		Expect(tagger.ModelOf(msg).Name).To(Equal("ER-Request"))

		subId := msg.Avps[2]
		Expect(tagger.ModelAvpOf(subId)).NotTo(BeNil())
		Expect(tagger.ModelAvpOf(subId).Name).To(Equal("Subscription-Id"))

		nestedType := subId.Avps[0]
		Expect(tagger.ModelAvpOf(nestedType)).NotTo(BeNil())
		Expect(tagger.ModelAvpOf(nestedType).Name).To(Equal("Subscription-Id-Type"))
		Expect(tagger.QualifiedAvpOf(nestedType)).NotTo(BeNil())
	})

	It("leaves an unknown AVP's ModelAvp nil when the directory has no match", func() {
		msg := diameter.NewMessage(8388622, 16777251, true, true,
			diameter.NewUTF8StringAVP(diameter.AvpCodeOriginHost, 0, true, false, "host.example.com"),
			diameter.NewUTF8StringAVP(diameter.AvpCodeOriginRealm, 0, true, false, "example.com"),
			diameter.NewAVP(99999, 0, false, false, []byte{1, 2, 3, 4}),
		)

		Expect(tagger.Tag(msg, dir)).To(Succeed())
		Expect(tagger.ModelAvpOf(msg.Avps[2])).To(BeNil())
	})

	It("fails when no command matches the message's app_id/code/direction", func() {
		msg := diameter.NewMessage(99, 16777251, true, false)
		Expect(tagger.Tag(msg, dir)).To(HaveOccurred())
	})
})
