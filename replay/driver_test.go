package replay_test

import (
	"net"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/blorticus-go/diafuzzer/diameter"
	"github.com/blorticus-go/diafuzzer/replay"
)

func testEntity() *diameter.DiameterEntity {
	return &diameter.DiameterEntity{
		OriginHost:  "scenario.example.com",
		OriginRealm: "example.com",
		VendorID:    99999,
	}
}

// cerAckScenario sends one CER and waits for exactly one reply.
func cerAckScenario(session replay.Session) error {
	ids := diameter.NewSequenceGeneratorSet()
	cer := testEntity().CapabilitiesExchangeRequest(ids.NextHopByHopId(), ids.NextEndToEndId())

	if err := session.Send(cer); err != nil {
		return err
	}

	_, err := session.Recv()
	return err
}

var _ = Describe("Run", func() {
	It("captures the sent and received messages in wall-clock order", func() {
		driverSide, peerSide := net.Pipe()

		peerDone := make(chan error, 1)
		go func() {
			reader := replay.NewMessageStreamReader(peerSide)
			_, err := reader.ReadNextMessage()
			if err != nil {
				peerDone <- err
				return
			}

			cea := diameter.NewMessage(257, 0, false, false,
				diameter.NewUTF8StringAVP(264, 0, true, false, "peer.example.com"),
			)
			_, err = peerSide.Write(cea.Encode())
			peerDone <- err
		}()

		captured, err := replay.Run(driverSide, testEntity(), cerAckScenario, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(<-peerDone).NotTo(HaveOccurred())

		Expect(captured).To(HaveLen(2))
		Expect(captured[0].IsOutgoing).To(BeTrue())
		Expect(captured[0].Message.Code).To(Equal(uint32(257)))
		Expect(captured[1].IsOutgoing).To(BeFalse())
		Expect(captured[1].Message.FirstAvpMatching(264, 0).UTF8String()).To(Equal("peer.example.com"))
	})

	It("auto-answers a Device-Watchdog-Request without forwarding it to the scenario", func() {
		driverSide, peerSide := net.Pipe()

		peerDone := make(chan error, 1)
		go func() {
			reader := replay.NewMessageStreamReader(peerSide)
			if _, err := reader.ReadNextMessage(); err != nil {
				peerDone <- err
				return
			}

			dwr := diameter.NewMessage(280, 0, true, false)
			if _, err := peerSide.Write(dwr.Encode()); err != nil {
				peerDone <- err
				return
			}

			dwa, err := reader.ReadNextMessage()
			if err != nil {
				peerDone <- err
				return
			}
			if dwa.Code != 280 || dwa.IsRequest() {
				peerDone <- errAssertion("expected a DWA, got something else")
				return
			}

			cea := diameter.NewMessage(257, 0, false, false)
			_, err = peerSide.Write(cea.Encode())
			peerDone <- err
		}()

		captured, err := replay.Run(driverSide, testEntity(), cerAckScenario, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(<-peerDone).NotTo(HaveOccurred())

		for _, c := range captured {
			Expect(c.Message.Code).NotTo(Equal(uint32(280)))
		}
	})

	It("passes an outgoing message through the MutateFunc before writing it", func() {
		driverSide, peerSide := net.Pipe()

		var received []*diameter.Message
		peerDone := make(chan error, 1)
		go func() {
			reader := replay.NewMessageStreamReader(peerSide)
			msg, err := reader.ReadNextMessage()
			if err != nil {
				peerDone <- err
				return
			}
			received = append(received, msg)

			cea := diameter.NewMessage(257, 0, false, false)
			_, err = peerSide.Write(cea.Encode())
			peerDone <- err
		}()

		mutate := func(index int, msg *diameter.Message) ([]*diameter.Message, error) {
			clone := msg.Clone()
			clone.AppID = 42
			return []*diameter.Message{clone}, nil
		}

		_, err := replay.Run(driverSide, testEntity(), cerAckScenario, mutate)
		Expect(err).NotTo(HaveOccurred())
		Expect(<-peerDone).NotTo(HaveOccurred())

		Expect(received).To(HaveLen(1))
		Expect(received[0].AppID).To(Equal(uint32(42)))
	})
})

type errAssertion string

func (e errAssertion) Error() string { return string(e) }
