package diameter

// Diameter base protocol AVP codes and application/command codes used
// to build the handful of base-protocol messages the replay driver
// needs directly: CER and DWA. RFC 6733 §6.
const (
	AvpCodeOriginHost        uint32 = 264
	AvpCodeOriginRealm       uint32 = 296
	AvpCodeHostIPAddress     uint32 = 257
	AvpCodeVendorID          uint32 = 266
	AvpCodeProductName       uint32 = 269
	AvpCodeOriginStateID     uint32 = 278
	AvpCodeResultCode        uint32 = 268
	AvpCodeAuthApplicationID uint32 = 258

	ResultCodeSuccess uint32 = 2001

	CommandCodeCapabilitiesExchange uint32 = 257
	CommandCodeDeviceWatchdog       uint32 = 280
)

// A DiameterEntity holds the identity AVPs a local or peer node
// presents in capabilities exchange: Origin-Host/Realm, an Origin-
// State-Id, and the vendor/application IDs it supports.
type DiameterEntity struct {
	OriginHost   string
	OriginRealm  string
	OriginStateID uint32
	VendorID     uint32
	ProductName  string
	ApplicationIDs []uint32
}

// CapabilitiesExchangeRequest builds a CER for this entity, addressed
// with the given hop-by-hop and end-to-end identifiers.
func (e *DiameterEntity) CapabilitiesExchangeRequest(hopByHopID, endToEndID uint32) *Message {
	avps := []*AVP{
		NewUTF8StringAVP(AvpCodeOriginHost, 0, true, false, e.OriginHost),
		NewUTF8StringAVP(AvpCodeOriginRealm, 0, true, false, e.OriginRealm),
		NewUnsigned32AVP(AvpCodeVendorID, 0, true, false, e.VendorID),
		NewUTF8StringAVP(AvpCodeProductName, 0, false, false, e.ProductName),
		NewUnsigned32AVP(AvpCodeOriginStateID, 0, false, false, e.OriginStateID),
	}
	for _, appID := range e.ApplicationIDs {
		avps = append(avps, NewUnsigned32AVP(AvpCodeAuthApplicationID, 0, true, false, appID))
	}

	m := NewMessage(CommandCodeCapabilitiesExchange, 0, true, false, avps...)
	m.HopByHopID = hopByHopID
	m.EndToEndID = endToEndID
	return m
}

// DeviceWatchdogAnswer builds a DWA in response to req, echoing its
// hop-by-hop/end-to-end identifiers and reporting success.
func (e *DiameterEntity) DeviceWatchdogAnswer(req *Message) *Message {
	m := NewMessage(CommandCodeDeviceWatchdog, req.AppID, false, false,
		NewUnsigned32AVP(AvpCodeResultCode, 0, true, false, ResultCodeSuccess),
		NewUTF8StringAVP(AvpCodeOriginHost, 0, true, false, e.OriginHost),
		NewUTF8StringAVP(AvpCodeOriginRealm, 0, true, false, e.OriginRealm),
		NewUnsigned32AVP(AvpCodeOriginStateID, 0, false, false, e.OriginStateID),
	)
	m.HopByHopID = req.HopByHopID
	m.EndToEndID = req.EndToEndID
	return m
}

// IsDeviceWatchdogRequest reports whether m is a DWR.
func (m *Message) IsDeviceWatchdogRequest() bool {
	return m.Code == CommandCodeDeviceWatchdog && m.IsRequest()
}
