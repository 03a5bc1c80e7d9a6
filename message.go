package stun

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
)

const (
	// magicCookie distinguishes STUN packets from other protocols when
	// STUN is multiplexed with them on the same port.
	//
	// RFC 8489 Section 5.
	magicCookie         = 0x2112A442
	attributeHeaderSize = 4
	messageHeaderSize   = 20

	// TransactionIDSize is the size of a STUN transaction id, in bytes.
	TransactionIDSize = 12 // 96 bit
)

// MaxPacketSize is the largest UDP datagram this package will attempt to
// decode as a single STUN message.
const MaxPacketSize = 65535

// NewTransactionID returns a new random transaction ID using crypto/rand
// as its source. Transaction id bytes are opaque; no endianness applies.
func NewTransactionID() (b [TransactionIDSize]byte) {
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}

	return b
}

// IsMessage reports whether b looks like a STUN message. Useful for
// multiplexing; it does not guarantee that Decode will succeed.
func IsMessage(b []byte) bool {
	return len(b) >= messageHeaderSize && bin.Uint32(b[4:8]) == magicCookie
}

// New returns a *Message with a pre-allocated Raw buffer.
func New() *Message {
	const defaultRawCapacity = 120

	return &Message{
		Raw: make([]byte, messageHeaderSize, defaultRawCapacity),
	}
}

// Message represents a single STUN packet: a 20-byte header followed by
// zero or more TLV attributes. It uses aggressive internal buffering for
// low-allocation encoding and decoding.
//
// A Message value is not safe for concurrent mutation (Add/Encode/Decode
// on the same value), but distinct Message values are fully independent:
// any number of goroutines may each build or parse their own Message.
type Message struct {
	Type          MessageType
	Length        uint32 // len(Raw) after the header, including padding
	TransactionID [TransactionIDSize]byte
	Attributes    Attributes
	Raw           []byte
}

// NewTransactionID sets m.TransactionID to a random value from
// crypto/rand.
func (m *Message) NewTransactionID() error {
	_, err := rand.Read(m.TransactionID[:])

	return err
}

func (m Message) String() string {
	return fmt.Sprintf("%s l=%d attrs=%d id=%s",
		m.Type,
		m.Length,
		len(m.Attributes),
		base64.StdEncoding.EncodeToString(m.TransactionID[:]),
	)
}

// Reset resets the Message, its attributes, and the underlying buffer
// length (capacity is retained).
func (m *Message) Reset() {
	m.Raw = m.Raw[:0]
	m.Length = 0
	m.Attributes = m.Attributes[:0]
}

// grow ensures the internal buffer can hold v more bytes.
func (m *Message) grow(v int) {
	n := len(m.Raw) + v
	for cap(m.Raw) < n {
		m.Raw = append(m.Raw, 0)
	}
	m.Raw = m.Raw[:n]
}

// Add appends a new attribute to the message. Not goroutine-safe.
//
// Add advances m.Length by the attribute's padded TLV size and rewrites
// the header length field (bytes 2..4) to match, so the header always
// declares every attribute appended so far. MESSAGE-INTEGRITY and
// FINGERPRINT, whose MAC/CRC input must already declare their own size,
// bump and restore the length field themselves before calling Add
// (RFC 8489 Section 14.5-14.7).
//
// Value of attribute is copied to the internal buffer, so it is safe to
// reuse v after the call returns.
func (m *Message) Add(t AttrType, v []byte) {
	allocSize := attributeHeaderSize + len(v)
	first := messageHeaderSize + int(m.Length)
	last := first + allocSize
	m.grow(last)
	m.Raw = m.Raw[:last]
	m.Length += uint32(allocSize) //nolint:gosec // bounded by 16-bit wire length

	buf := m.Raw[first:last]
	value := buf[attributeHeaderSize:]
	attr := RawAttribute{
		Type:   t,
		Length: uint16(len(v)), //nolint:gosec // bounded by caller
		Value:  value,
	}

	bin.PutUint16(buf[0:2], attr.Type.Value())
	bin.PutUint16(buf[2:4], attr.Length)
	copy(value, v)

	if attr.Length%padding != 0 {
		bytesToAdd := nearestPaddedValueLength(len(v)) - len(v)
		last += bytesToAdd
		m.grow(last)
		buf = m.Raw[last-bytesToAdd : last]
		for i := range buf {
			buf[i] = 0
		}
		m.Raw = m.Raw[:last]
		m.Length += uint32(bytesToAdd)
	}

	m.Attributes = append(m.Attributes, attr)
	m.WriteLength()
}

// Get returns the value of the first attribute of type t, or
// ErrAttributeNotFound if none is present.
func (m *Message) Get(t AttrType) ([]byte, error) {
	v, ok := m.Attributes.Get(t)
	if !ok {
		return nil, ErrAttributeNotFound
	}

	return v.Value, nil
}

// Equal reports whether b is structurally equal to m: same type,
// transaction id, length, and attribute set (order-independent).
func (m *Message) Equal(b *Message) bool {
	if m.Type != b.Type {
		return false
	}
	if m.TransactionID != b.TransactionID {
		return false
	}
	if m.Length != b.Length {
		return false
	}
	for _, a := range m.Attributes {
		aB, ok := b.Attributes.Get(a.Type)
		if !ok {
			return false
		}
		if !aB.Equal(a) {
			return false
		}
	}

	return true
}

// WriteLength writes m.Length into m.Raw[2:4]. Valid only once
// len(m.Raw) >= messageHeaderSize.
func (m *Message) WriteLength() {
	_ = m.Raw[4] // bounds check hint
	bin.PutUint16(m.Raw[2:4], uint16(m.Length)) //nolint:gosec // bounded by 16-bit wire length
}

// WriteHeader writes the 20-byte STUN header into the underlying buffer.
// Not goroutine-safe.
func (m *Message) WriteHeader() {
	if len(m.Raw) < messageHeaderSize {
		m.grow(messageHeaderSize)
	}
	_ = m.Raw[:messageHeaderSize] // bounds check hint

	bin.PutUint16(m.Raw[0:2], m.Type.Value())
	bin.PutUint16(m.Raw[2:4], uint16(len(m.Raw)-messageHeaderSize)) //nolint:gosec // bounded
	bin.PutUint32(m.Raw[4:8], magicCookie)
	copy(m.Raw[8:messageHeaderSize], m.TransactionID[:])
}

// WriteAttributes re-encodes all m.Attributes into m.Raw.
func (m *Message) WriteAttributes() {
	attrs := m.Attributes
	m.Attributes = nil
	for _, a := range attrs {
		m.Add(a.Type, a.Value)
	}
}

// Encode resets m.Raw and writes the header followed by all attributes.
func (m *Message) Encode() {
	m.Raw = m.Raw[:0]
	m.WriteHeader()
	m.Length = 0
	m.WriteAttributes()
}

// WriteTo implements io.WriterTo.
func (m *Message) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(m.Raw)

	return int64(n), err
}

// Append appends m.Raw to v. Useful after encoding a message.
func (m *Message) Append(v []byte) []byte {
	return append(v, m.Raw...)
}

// ReadFrom implements io.ReaderFrom: reads a message from r into m.Raw
// and decodes it.
func (m *Message) ReadFrom(r io.Reader) (int64, error) {
	tBuf := m.Raw[:cap(m.Raw)]

	n, err := r.Read(tBuf)
	if err != nil {
		return int64(n), err
	}
	m.Raw = tBuf[:n]

	return int64(n), m.Decode()
}

// ErrUnexpectedHeaderEOF means there were not enough bytes in m.Raw to
// read the 20-byte header.
const ErrUnexpectedHeaderEOF Error = "unexpected EOF: not enough bytes to read header"

// Decode parses the STUN header and attribute TLV framing out of m.Raw
// into m. It performs only wire-framing validation (RFC 8489 Section 5):
// length, 32-bit alignment, magic cookie, and the attribute walk.
// Attribute-semantic decoding happens in each attribute's Getter, and
// class/method classification happens in IncomingMessage.
func (m *Message) Decode() error {
	buf := m.Raw
	if len(buf) < messageHeaderSize {
		return ErrUnexpectedHeaderEOF
	}
	if len(buf)%4 != 0 {
		return &DecodeErr{Kind: BadLength, Reason: "message length must be a multiple of 4"}
	}

	t := bin.Uint16(buf[0:2])
	if t&0xC000 != 0 {
		return &DecodeErr{Kind: BadFormat, Reason: "the top two bits of the type field must be zero"}
	}

	size := int(bin.Uint16(buf[2:4]))
	cookie := bin.Uint32(buf[4:8])
	fullSize := messageHeaderSize + size

	if cookie != magicCookie {
		return &DecodeErr{
			Kind:   BadMagic,
			Reason: fmt.Sprintf("%#x is not the STUN magic cookie (want %#x)", cookie, uint32(magicCookie)),
		}
	}
	if len(buf) < fullSize {
		return &DecodeErr{
			Kind:   BadLength,
			Reason: fmt.Sprintf("buffer length %d is less than declared message size %d", len(buf), fullSize),
		}
	}

	m.Type.ReadValue(t)
	m.Length = uint32(size) //nolint:gosec // size is a uint16 on the wire
	copy(m.TransactionID[:], buf[8:messageHeaderSize])
	m.Attributes = m.Attributes[:0]

	var (
		offset = 0
		b      = buf[messageHeaderSize:fullSize]
	)
	for offset < size {
		if len(b) < attributeHeaderSize {
			return &DecodeErr{Kind: BadLength, Reason: "truncated attribute header"}
		}

		a := RawAttribute{
			Type:   AttrType(bin.Uint16(b[0:2])),
			Length: bin.Uint16(b[2:4]),
		}
		aLen := int(a.Length)
		aBufLen := nearestPaddedValueLength(aLen)

		b = b[attributeHeaderSize:]
		offset += attributeHeaderSize
		if len(b) < aBufLen {
			return &DecodeErr{Kind: BadLength, Reason: "attribute value overruns declared message length"}
		}

		a.Value = b[:aLen]
		offset += aBufLen
		b = b[aBufLen:]

		m.Attributes = append(m.Attributes, a)
	}
	if offset != size {
		return &DecodeErr{Kind: BadLength, Reason: "attribute walk did not land exactly on declared length"}
	}

	return nil
}

// Write decodes tBuf into m, copying it first. Any error is
// unrecoverable, but m could be partially decoded.
func (m *Message) Write(tBuf []byte) (int, error) {
	m.Raw = append(m.Raw[:0], tBuf...)

	return len(tBuf), m.Decode()
}

// MessageClass is the 2-bit class of a STUN message.
type MessageClass byte

// Possible values for a STUN message class.
const (
	ClassRequest         MessageClass = 0x00 // 0b00
	ClassIndication      MessageClass = 0x01 // 0b01
	ClassSuccessResponse MessageClass = 0x02 // 0b10
	ClassErrorResponse   MessageClass = 0x03 // 0b11
)

// Known reports whether c is one of the four class values RFC 8489
// defines. Since class is a 2-bit field, this is always true for any
// value that made it through Decode's bit-unpacking - kept for
// completeness with the decode error Kind registry (Section 7).
func (c MessageClass) Known() bool {
	switch c {
	case ClassRequest, ClassIndication, ClassSuccessResponse, ClassErrorResponse:
		return true
	default:
		return false
	}
}

func (c MessageClass) String() string {
	switch c {
	case ClassRequest:
		return "request"
	case ClassIndication:
		return "indication"
	case ClassSuccessResponse:
		return "success response"
	case ClassErrorResponse:
		return "error response"
	default:
		return fmt.Sprintf("unknown class 0x%x", byte(c))
	}
}

// Method is the 12-bit method of a STUN message.
type Method uint16

// MethodBinding is the only method this package's core codec mandates
// (RFC 8489 Section 3). Additional methods (e.g. TURN's Allocate) can be
// added by any caller that wants to tag its own Method values; the codec
// itself does not special-case any method beyond bit-packing it.
const MethodBinding Method = 0x001

// Known reports whether m is a method this package's registry
// recognizes. Only MethodBinding is known at this scope (TURN/ICE
// methods are out of scope); a caller extending the registry with its
// own methods should classify them before treating Decode's
// UnknownMethod rejection as final.
func (m Method) Known() bool {
	return m == MethodBinding
}

func (m Method) String() string {
	if m == MethodBinding {
		return "binding"
	}

	return "0x" + strconv.FormatUint(uint64(m), 16)
}

// MessageType is the STUN message type field: a class and a method
// packed into 14 significant bits (RFC 8489 Section 5).
type MessageType struct {
	Class  MessageClass
	Method Method
}

const (
	methodABits = 0xf   // 0b0000000000001111
	methodBBits = 0x70  // 0b0000000001110000
	methodDBits = 0xf80 // 0b0000111110000000

	methodBShift = 1
	methodDShift = 2

	firstBit  = 0x1
	secondBit = 0x2

	c0Bit = firstBit
	c1Bit = secondBit

	classC0Shift = 4
	classC1Shift = 7
)

// Value returns the bit-packed representation of t.
//
//	 0                 1
//	 2  3  4 5 6 7 8 9 0 1 2 3 4 5
//	+--+--+-+-+-+-+-+-+-+-+-+-+-+-+
//	|M |M |M|M|M|C|M|M|M|C|M|M|M|M|
//	|11|10|9|8|7|1|6|5|4|0|3|2|1|0|
//	+--+--+-+-+-+-+-+-+-+-+-+-+-+-+
//
// Splits the method M into A (M0-M3), B (M4-M6), D (M7-M11) and inserts
// two holes for the class bits C0 (bit 4) and C1 (bit 8).
func (t MessageType) Value() uint16 {
	m := uint16(t.Method)
	a := m & methodABits
	b := m & methodBBits
	d := m & methodDBits

	m = a + (b << methodBShift) + (d << methodDShift)

	c := uint16(t.Class)
	c0 := (c & c0Bit) << classC0Shift
	c1 := (c & c1Bit) << classC1Shift

	return m + c0 + c1
}

// ReadValue decodes v into t, inverting Value.
func (t *MessageType) ReadValue(v uint16) {
	c0 := (v >> classC0Shift) & c0Bit
	c1 := (v >> classC1Shift) & c1Bit
	t.Class = MessageClass(c0 + c1)

	a := v & methodABits
	b := (v >> methodBShift) & methodBBits
	d := (v >> methodDShift) & methodDBits
	t.Method = Method(a + b + d)
}

func (t MessageType) String() string {
	return fmt.Sprintf("%s %s", t.Method, t.Class)
}
