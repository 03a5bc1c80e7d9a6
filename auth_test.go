package stun

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S1 - short-term Binding request, SHA-1 integrity, with FINGERPRINT.
func TestScenarioShortTermBindingRequest(t *testing.T) {
	out := OutgoingMessage{
		Class:         ClassRequest,
		Method:        MethodBinding,
		TransactionID: [TransactionIDSize]byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x20},
		Credentials:   ShortTermCredentials{Username: "Alice", Password: "Password"},
		Integrity:     IntegritySha1,
		Fingerprint:   true,
	}
	raw, err := out.Encode()
	require.NoError(t, err)
	assert.Equal(t, 0, len(raw)%4)

	in, err := Decode(raw)
	require.NoError(t, err)
	assert.True(t, in.Auth.HasIntegrity)
	require.NotNil(t, in.Auth.Username)
	assert.Equal(t, "Alice", in.Auth.Username.String())
	assert.NoError(t, VerifyShortTerm(in.Message(), "Password"))
	assert.NoError(t, Fingerprint.Check(in.Message()))
}

// S2/S3 - long-term Binding request with USERHASH + SHA-256 (RFC 8489
// Section B.1 shape: anonymized username, NONCE/REALM challenge,
// PASSWORD-ALGORITHM, SHA-256-only integrity, no SOFTWARE/FINGERPRINT).
func buildScenarioS2(t *testing.T) []byte {
	t.Helper()
	const (
		username = "マトリックス"
		realm    = "example.org"
		nonce    = "obMatJos2AAACf//499k954d6OL34oL9FSTvy64sA"
		password = "TheMatrIX"
	)
	out := OutgoingMessage{
		Class:  ClassRequest,
		Method: MethodBinding,
		TransactionID: [TransactionIDSize]byte{
			0x78, 0xad, 0x34, 0x33, 0xc6, 0xad, 0x72, 0xc0, 0x29, 0xda, 0x41, 0x2e,
		},
		Credentials: LongTermCredentials{
			Username:  username,
			Nonce:     nonce,
			Realm:     realm,
			Password:  password,
			Anonymity: true,
			Algorithm: AlgorithmSHA256,
		},
		Integrity: IntegritySha256,
	}
	raw, err := out.Encode()
	require.NoError(t, err)

	return raw
}

func TestScenarioLongTermUserhashSHA256(t *testing.T) {
	raw := buildScenarioS2(t)

	in, err := Decode(raw)
	require.NoError(t, err)
	assert.Nil(t, in.Auth.Username, "anonymity requests USERHASH in place of USERNAME")
	require.NotNil(t, in.Auth.Userhash)
	assert.Equal(t, NewUserhash("マトリックス", "example.org"), *in.Auth.Userhash)
	require.NotNil(t, in.Auth.Nonce)
	assert.Equal(t, "obMatJos2AAACf//499k954d6OL34oL9FSTvy64sA", in.Auth.Nonce.String())
	require.NotNil(t, in.Auth.Realm)
	assert.Equal(t, "example.org", in.Auth.Realm.String())
	require.NotNil(t, in.Auth.PasswordAlgo)
	assert.Equal(t, AlgorithmSHA256, in.Auth.PasswordAlgo.Algorithm)
	assert.True(t, in.Auth.HasIntegritySHA)
	assert.False(t, in.Auth.HasIntegrity)

	assert.NoError(t, VerifyLongTerm(in.Message(), "マトリックス", "example.org", "TheMatrIX", AlgorithmSHA256))

	// S3: decode of S2 yields a structurally equal message to a fresh
	// build from the same inputs.
	raw2 := buildScenarioS2(t)
	in2, err := Decode(raw2)
	require.NoError(t, err)
	assert.True(t, in.Message().Equal(in2.Message()))
}

// S4 - BadMagic: mutate the magic cookie byte.
func TestScenarioBadMagic(t *testing.T) {
	raw := buildScenarioS2(t)
	raw[4] = 0x00

	_, err := Decode(raw)
	require.Error(t, err)
	var decErr *DecodeErr
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, BadMagic, decErr.Kind)
}

// S5 - BadLength: truncate the message.
func TestScenarioBadLength(t *testing.T) {
	raw := buildScenarioS2(t)
	raw = raw[:40]

	_, err := Decode(raw)
	require.Error(t, err)
	var decErr *DecodeErr
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, BadLength, decErr.Kind)
}

// S6 - integrity rejection: flip one bit in the USERHASH value.
func TestScenarioIntegrityRejection(t *testing.T) {
	raw := buildScenarioS2(t)

	in, err := Decode(raw)
	require.NoError(t, err)
	userhashAttr, ok := in.Message().Attributes.Get(AttrUserhash)
	require.True(t, ok)

	// Decode copied raw, so userhashAttr.Value aliases the decoded
	// message's own buffer; flip its first byte there and re-decode it.
	userhashAttr.Value[0] ^= 0x01

	tampered, err := Decode(in.Message().Raw)
	require.NoError(t, err, "bit flip inside an attribute value doesn't break framing")
	err = VerifyLongTerm(tampered.Message(), "マトリックス", "example.org", "TheMatrIX", AlgorithmSHA256)
	require.Error(t, err)
	var decErr *DecodeErr
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, IntegrityMismatch, decErr.Kind)
}
