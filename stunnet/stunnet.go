// Package stunnet hands raw byte slices to and from the wire: a UDP
// datagram reader, a length-prefixed frame reader for stream
// transports (TCP/TLS), and a DTLS listener constructor. None of it
// understands STUN message semantics - that's the codec's job.
package stunnet

import (
	"encoding/binary"
	"errors"
	"io"
	"net"

	"github.com/pion/dtls/v2"
)

// MaxUDPMessageSize is large enough for any STUN datagram; RFC 8489
// messages are bounded by the 16-bit length field (max 65535 + 20
// header bytes), but in practice UDP payloads never approach that.
const MaxUDPMessageSize = 65535

// messageHeaderSize mirrors the codec's header size: 2 bytes type,
// 2 bytes length, 16 bytes magic cookie + transaction id.
const messageHeaderSize = 20

// ErrShortFrame indicates a stream transport closed before a full
// header, or a full frame, could be read.
var ErrShortFrame = errors.New("stunnet: short frame")

// ReadUDP reads a single datagram from conn, returning its bytes and
// the sender's address. The codec rejects anything that doesn't parse
// as a STUN message; this function only moves bytes.
func ReadUDP(conn net.PacketConn) ([]byte, net.Addr, error) {
	buf := make([]byte, MaxUDPMessageSize)
	n, addr, err := conn.ReadFrom(buf)
	if err != nil {
		return nil, nil, err
	}

	return buf[:n], addr, nil
}

// FrameReader reads exactly one STUN message per call to Read from a
// stream transport (TCP or TLS), using the 2-byte length field at
// header offset 2 to derive the frame size (20 + length), per RFC 8489
// Section 7.2.2.
type FrameReader struct {
	r io.Reader
}

// NewFrameReader wraps r.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: r}
}

// Read blocks until one full message has been read, returning its
// bytes. io.EOF is returned unwrapped if the stream closes cleanly
// before any header bytes arrive; a stream that closes mid-frame
// returns ErrShortFrame.
func (fr *FrameReader) Read() ([]byte, error) {
	header := make([]byte, messageHeaderSize)
	if _, err := io.ReadFull(fr.r, header); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrShortFrame
		}

		return nil, err
	}

	length := binary.BigEndian.Uint16(header[2:4])
	frame := make([]byte, messageHeaderSize+int(length))
	copy(frame, header)
	if length > 0 {
		if _, err := io.ReadFull(fr.r, frame[messageHeaderSize:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, ErrShortFrame
			}

			return nil, err
		}
	}

	return frame, nil
}

// NewDTLSListener listens on addr with DTLS termination using config. The
// DTLS handshake and record protocol themselves are entirely
// pion/dtls's concern; this is construction only.
func NewDTLSListener(network string, addr *net.UDPAddr, config *dtls.Config) (net.Listener, error) {
	return dtls.Listen(network, addr, config)
}
