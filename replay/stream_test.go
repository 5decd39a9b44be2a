package replay_test

import (
	"io"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/blorticus-go/diafuzzer/diameter"
	"github.com/blorticus-go/diafuzzer/replay"
)

// chunkedReader hands back the bytes of data in fixed-size pieces, one
// per Read call, so tests can exercise ReadNextMessage's handling of a
// message split across multiple underlying reads.
type chunkedReader struct {
	data      []byte
	chunkSize int
	offset    int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if r.offset >= len(r.data) {
		return 0, io.EOF
	}
	n := r.chunkSize
	if remaining := len(r.data) - r.offset; n > remaining {
		n = remaining
	}
	copy(p, r.data[r.offset:r.offset+n])
	r.offset += n
	return n, nil
}

var _ = Describe("MessageStreamReader", func() {
	It("reassembles a message split across many small reads", func() {
		msg := diameter.NewMessage(257, 0, true, false,
			diameter.NewUTF8StringAVP(264, 0, true, false, "host.example.com"),
		)
		wire := msg.Encode()

		reader := replay.NewMessageStreamReader(&chunkedReader{data: wire, chunkSize: 3})

		decoded, err := reader.ReadNextMessage()
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded.Code).To(Equal(uint32(257)))
		Expect(decoded.FirstAvpMatching(264, 0).UTF8String()).To(Equal("host.example.com"))
	})

	It("reads consecutive messages from the same stream in order", func() {
		first := diameter.NewMessage(257, 0, true, false)
		second := diameter.NewMessage(280, 0, true, false)
		wire := append(first.Encode(), second.Encode()...)

		reader := replay.NewMessageStreamReader(&chunkedReader{data: wire, chunkSize: 7})

		m1, err := reader.ReadNextMessage()
		Expect(err).NotTo(HaveOccurred())
		Expect(m1.Code).To(Equal(uint32(257)))

		m2, err := reader.ReadNextMessage()
		Expect(err).NotTo(HaveOccurred())
		Expect(m2.Code).To(Equal(uint32(280)))
	})

	It("returns io.EOF once the stream is exhausted", func() {
		reader := replay.NewMessageStreamReader(&chunkedReader{data: nil, chunkSize: 4})

		_, err := reader.ReadNextMessage()
		Expect(err).To(Equal(io.EOF))
	})
})
