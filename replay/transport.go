package replay

import (
	"io"
	"net"

	"github.com/ishidawataru/sctp"
)

// A Transport is the byte-stream connection a replay runs over.
// Diameter's own length-prefixed framing (RFC 6733 §4.1) rides on top
// of it directly; unlike the scenario-to-driver channel used
// internally by Run, nothing wraps it in extra framing.
type Transport interface {
	io.Reader
	io.Writer
	io.Closer
}

// DialTCP connects to addr ("host:port") over TCP.
func DialTCP(addr string) (Transport, error) {
	return net.Dial("tcp", addr)
}

// DialSCTP connects to addr ("host:port") over SCTP, the transport
// RFC 6733 recommends for Diameter.
func DialSCTP(addr string) (Transport, error) {
	raddr, err := sctp.ResolveSCTPAddr("sctp", addr)
	if err != nil {
		return nil, err
	}
	return sctp.DialSCTP("sctp", nil, raddr)
}

// ListenTCP starts a TCP listener on addr, for fuzzing a Diameter
// client by standing in as its server peer and accepting the
// connection it initiates.
func ListenTCP(addr string) (net.Listener, error) {
	return net.Listen("tcp", addr)
}
