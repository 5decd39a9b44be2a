package replay_test

import (
	"errors"
	"net"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/blorticus-go/diafuzzer/diameter"
	"github.com/blorticus-go/diafuzzer/mutator"
	"github.com/blorticus-go/diafuzzer/replay"
)

func handshakePeer(peerSide net.Conn) {
	reader := replay.NewMessageStreamReader(peerSide)
	if _, err := reader.ReadNextMessage(); err != nil {
		return
	}
	cea := diameter.NewMessage(257, 0, false, false)
	peerSide.Write(cea.Encode())
}

var _ = Describe("Sweep", func() {
	It("replays one connection per descriptor and reports ok on each", func() {
		dial := func() (replay.Transport, error) {
			driverSide, peerSide := net.Pipe()
			go handshakePeer(peerSide)
			return driverSide, nil
		}

		descriptors := []*mutator.Descriptor{
			{Tag: mutator.SetValue, Path: "/code=264", Value: []byte("a"),
				Anchor: mutator.Anchor{OutgoingIndex: 0, Code: 257, IsRequest: true}},
			{Tag: mutator.SetValue, Path: "/code=264", Value: []byte("b"),
				Anchor: mutator.Anchor{OutgoingIndex: 0, Code: 257, IsRequest: true}},
		}

		results, err := replay.Sweep(dial, testEntity(), cerAckScenario, descriptors, zap.NewNop().Sugar())
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(2))
		for _, r := range results {
			Expect(r.Err).NotTo(HaveOccurred())
		}
	})

	It("aborts after two consecutive baseline failures following a broken connection", func() {
		dialErr := errors.New("connection refused")
		dial := func() (replay.Transport, error) {
			return nil, dialErr
		}

		descriptors := []*mutator.Descriptor{
			{Tag: mutator.SetValue, Path: "/code=264", Value: []byte("a")},
			{Tag: mutator.SetValue, Path: "/code=264", Value: []byte("b")},
		}

		results, err := replay.Sweep(dial, testEntity(), cerAckScenario, descriptors, zap.NewNop().Sugar())
		Expect(err).To(HaveOccurred())
		Expect(results).To(HaveLen(2))
		for _, r := range results {
			Expect(r.Err).To(HaveOccurred())
		}
	})
})
