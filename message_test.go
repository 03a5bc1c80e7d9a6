package stun

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Law 1: round-trip. Law 2: alignment. Law 3: length field. Law 4: magic.
func TestOutgoingIncomingRoundTrip(t *testing.T) {
	out := OutgoingMessage{
		Class:       ClassRequest,
		Method:      MethodBinding,
		Attributes:  []Setter{NewUsername("alice")},
		Software:    "test-agent",
		Fingerprint: true,
	}
	raw, err := out.Encode()
	require.NoError(t, err)

	assert.Equal(t, 0, len(raw)%4, "encoded message must be 4-byte aligned")
	assert.Equal(t, len(raw)-messageHeaderSize, int(bin.Uint16(raw[2:4])), "length field must equal len(raw)-20")
	assert.Equal(t, uint32(magicCookie), bin.Uint32(raw[4:8]))

	in, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, ClassRequest, in.Class)
	assert.Equal(t, MethodBinding, in.Method)
	assert.Equal(t, out.TransactionID, [TransactionIDSize]byte{}, "a zero TransactionID in OutgoingMessage means Encode must generate one")
	assert.NotEqual(t, [TransactionIDSize]byte{}, in.TransactionID)
	require.NotNil(t, in.Software)
	assert.Equal(t, "test-agent", in.Software.String())
	assert.True(t, in.FingerprintSeen)
	assert.NoError(t, Fingerprint.Check(in.Message()))

	u := new(Username)
	require.NoError(t, u.GetFrom(in.Message()))
	assert.Equal(t, "alice", u.String())
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	raw := []byte{
		0x00, 0x01, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
	_, err := Decode(raw)
	require.Error(t, err)
	var decErr *DecodeErr
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, BadMagic, decErr.Kind)
}

func TestDecodeRejectsShortBuffer(t *testing.T) {
	_, err := Decode([]byte{0x00, 0x01, 0x00, 0x00})
	assert.ErrorIs(t, err, ErrUnexpectedHeaderEOF)
}

func TestDecodeRejectsUnalignedLength(t *testing.T) {
	raw := []byte{
		0x00, 0x01, 0x00, 0x00,
		0x21, 0x12, 0xa4, 0x42,
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
		0xAB,
	}
	_, err := Decode(raw)
	require.Error(t, err)
	var decErr *DecodeErr
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, BadLength, decErr.Kind)
}

func TestDecodeRejectsUnknownMethod(t *testing.T) {
	out := OutgoingMessage{Class: ClassRequest, Method: Method(0x002)} // not MethodBinding
	raw, err := out.Encode()
	require.NoError(t, err)

	_, err = Decode(raw)
	require.Error(t, err)
	var decErr *DecodeErr
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, UnknownMethod, decErr.Kind)
}

// Law 9 (bit-flip rejection): flipping any payload bit after FINGERPRINT
// is appended must make either FINGERPRINT or MESSAGE-INTEGRITY fail.
func TestFingerprintDetectsBitFlip(t *testing.T) {
	out := OutgoingMessage{
		Class:       ClassRequest,
		Method:      MethodBinding,
		Attributes:  []Setter{NewUsername("bob")},
		Fingerprint: true,
	}
	raw, err := out.Encode()
	require.NoError(t, err)

	raw[messageHeaderSize] ^= 0x01 // flip a bit in USERNAME's TLV type field

	in, err := Decode(raw)
	require.NoError(t, err, "bit-flips inside the message don't break framing")
	assert.Error(t, Fingerprint.Check(in.Message()))
}

func TestMessageTypeBitPacking(t *testing.T) {
	for _, tc := range []struct {
		class  MessageClass
		method Method
	}{
		{ClassRequest, MethodBinding},
		{ClassIndication, MethodBinding},
		{ClassSuccessResponse, MethodBinding},
		{ClassErrorResponse, MethodBinding},
	} {
		mt := MessageType{Class: tc.class, Method: tc.method}
		var got MessageType
		got.ReadValue(mt.Value())
		assert.Equal(t, mt, got)
	}
}

func TestUnknownComprehensionRequiredAttributeCollected(t *testing.T) {
	m := New()
	m.Type = MessageType{Class: ClassRequest, Method: MethodBinding}
	m.TransactionID = NewTransactionID()
	m.WriteHeader()
	m.Add(AttrType(0x0002), []byte("x")) // RESERVED, comprehension-required, unknown here

	in, err := Decode(m.Raw)
	require.NoError(t, err)
	unknown := in.Unknown()
	require.Len(t, unknown, 1)
	assert.Equal(t, AttrType(0x0002), unknown[0])
}
