package dictionary_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/blorticus-go/diafuzzer/dictionary"
)

const baseDia = `
@id 0
@name base test

@avp_types
Origin-Host                                 264        DiamIdent            M
Origin-Realm                                296        DiamIdent            M
Result-Code                                 268        Unsigned32           M
Vendor-Id                                   266        Unsigned32           M
Session-Id                                  263        UTF8String           M
Subscription-Id-Type                        450        Enumerated           M
Subscription-Id-Data                        444        UTF8String           M
Subscription-Id                             443        Grouped              M

@grouped
Subscription-Id ::= < AVP Header: 443 >
  { Subscription-Id-Type }
  { Subscription-Id-Data }
  *[ AVP ]

@enum Subscription-Id-Type
END_USER_E164                               0
END_USER_IMSI                               1
`

const extensionDia = `
@id 16777251
@name ext test
@vendor 10415 3GPP
@inherits base

@avp_types
Example-Proprietary-Avp                     9001       UTF8String           MV

@avp_vendor_id 10415
Example-Proprietary-Avp

@messages
ER-Request ::= <Diameter Header: 8388622, REQ, PXY, 16777251>
  { Origin-Host }
  { Origin-Realm }
  *[ Subscription-Id ]
  [ Example-Proprietary-Avp ]

ER-Answer ::= <Diameter Header: 8388622, PXY, 16777251>
  { Origin-Host }
  { Origin-Realm }
  { Result-Code }
`

func writeFixtures(dir string) {
	Expect(os.WriteFile(filepath.Join(dir, "base.dia"), []byte(baseDia), 0o644)).To(Succeed())
	Expect(os.WriteFile(filepath.Join(dir, "ext.dia"), []byte(extensionDia), 0o644)).To(Succeed())
}

var _ = Describe("LoadApplication", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		writeFixtures(dir)
	})

	When("loading a module with no @inherits", func() {
		It("resolves its own AVPs, grouped layout, and enum values", func() {
			app, err := dictionary.LoadApplication(filepath.Join(dir, "base.dia"))
			Expect(err).NotTo(HaveOccurred())

			subId := app.FindAvps(func(a *dictionary.Avp) bool { return a.Name == "Subscription-Id" })
			Expect(subId).To(HaveLen(1))
			Expect(subId[0].DataType).To(Equal(dictionary.DataTypeGrouped))
			Expect(subId[0].Grouped).To(HaveLen(3))
			Expect(subId[0].AllowsStacking()).To(BeTrue())

			subType := app.FindAvps(func(a *dictionary.Avp) bool { return a.Name == "Subscription-Id-Type" })
			Expect(subType).To(HaveLen(1))
			Expect(subType[0].DescriptionToValue).To(HaveKeyWithValue("END_USER_IMSI", int64(1)))
		})
	})

	When("loading a module that inherits another", func() {
		It("pulls in the base module's AVPs and messages, and resolves its own vendor AVP", func() {
			app, err := dictionary.LoadApplication(filepath.Join(dir, "ext.dia"), dictionary.WithSearchPath([]string{dir}))
			Expect(err).NotTo(HaveOccurred())

			Expect(app.InheritedAvps).NotTo(BeEmpty())
			Expect(app.FindAvps(func(a *dictionary.Avp) bool { return a.Name == "Origin-Host" })).To(HaveLen(1))

			prop := app.FindAvps(func(a *dictionary.Avp) bool { return a.Name == "Example-Proprietary-Avp" })
			Expect(prop).To(HaveLen(1))
			Expect(prop[0].VendorSpecific).To(BeTrue())
			Expect(prop[0].VendorID).To(Equal(uint32(10415)))

			msgs := app.FindMsgs(func(m *dictionary.Msg) bool { return m.Name == "ER-Request" })
			Expect(msgs).To(HaveLen(1))
			Expect(msgs[0].R).To(BeTrue())
			Expect(msgs[0].Avps[2].Avp.Name).To(Equal("Subscription-Id"))
		})
	})

	When("an @inherits reference cannot be found on the search path", func() {
		It("returns a DictionaryError", func() {
			_, err := dictionary.LoadApplication(filepath.Join(dir, "ext.dia"), dictionary.WithSearchPath([]string{"/nonexistent"}))
			Expect(err).To(HaveOccurred())

			var dictErr *dictionary.DictionaryError
			Expect(err).To(BeAssignableToTypeOf(dictErr))
		})
	})
})

var _ = Describe("Directory", func() {
	It("indexes loaded applications by application ID and resolves messages across them", func() {
		dir := GinkgoT().TempDir()
		writeFixtures(dir)

		d, err := dictionary.LoadDirectory(
			[]string{filepath.Join(dir, "ext.dia")},
			dictionary.WithSearchPath([]string{dir}),
		)
		Expect(err).NotTo(HaveOccurred())

		msgs, err := d.FindMsgs(16777251, 8388622, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(HaveLen(1))

		_, err = d.FindMsgs(999, 1, true)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Application.String", func() {
	It("round-trips through a fresh load with the same resolved AVPs", func() {
		dir := GinkgoT().TempDir()
		writeFixtures(dir)

		app, err := dictionary.LoadApplication(filepath.Join(dir, "base.dia"))
		Expect(err).NotTo(HaveOccurred())

		rendered := app.String()
		Expect(os.WriteFile(filepath.Join(dir, "roundtrip.dia"), []byte(rendered), 0o644)).To(Succeed())

		reloaded, err := dictionary.LoadApplication(filepath.Join(dir, "roundtrip.dia"))
		Expect(err).NotTo(HaveOccurred())
		Expect(reloaded.Avps).To(HaveLen(len(app.Avps)))
	})
})
