package stun

import (
	"fmt"
	"hash/crc32"
)

// FingerprintAttr represents the FINGERPRINT attribute: a CRC-32 over the
// message prefix ending at this attribute's own TLV header, XORed with a
// constant so it doesn't collide with other protocols that also use
// CRC-32 over the same bytes. Must be the last attribute (invariant 3).
//
// RFC 8489 Section 14.7.
type FingerprintAttr byte

// CRCMismatch is returned by FingerprintAttr.Check when the recomputed
// CRC-32 doesn't match the attribute's value.
type CRCMismatch struct {
	Expected uint32
	Actual   uint32
}

func (m CRCMismatch) Error() string {
	return fmt.Sprintf("CRC mismatch: %x (expected) != %x (actual)", m.Expected, m.Actual)
}

// Fingerprint is the zero-value FingerprintAttr, usable directly as a
// Setter/Checker:
//
//	m.Build(..., Fingerprint)
var Fingerprint FingerprintAttr

const (
	fingerprintXORValue uint32 = 0x5354554e
	fingerprintSize            = 4
)

// FingerprintValue returns CRC-32(b) XOR 0x5354554e.
func FingerprintValue(b []byte) uint32 {
	return crc32.ChecksumIEEE(b) ^ fingerprintXORValue
}

// AddTo adds FINGERPRINT to message. Must be called last: any Setter
// applied after it would violate invariant 3.
func (FingerprintAttr) AddTo(m *Message) error {
	length := m.Length
	// Pre-bump the length field so the CRC covers a prefix whose declared
	// length already names FINGERPRINT's own size, matching the
	// length-before-value contract MESSAGE-INTEGRITY also relies on.
	m.Length += fingerprintSize + attributeHeaderSize
	m.WriteLength()
	val := FingerprintValue(m.Raw)
	m.Length = length
	m.WriteLength()

	b := make([]byte, fingerprintSize)
	bin.PutUint32(b, val)
	m.Add(AttrFingerprint, b)

	return nil
}

// Check recomputes FINGERPRINT's CRC-32 over the prefix preceding it and
// compares.
func (FingerprintAttr) Check(m *Message) error {
	b, err := m.Get(AttrFingerprint)
	if err != nil {
		return err
	}
	if len(b) != fingerprintSize {
		return &DecodeErr{Kind: BadLength, Reason: "FINGERPRINT value must be 4 bytes"}
	}
	val := bin.Uint32(b)
	attrStart := len(m.Raw) - (fingerprintSize + attributeHeaderSize)
	expected := FingerprintValue(m.Raw[:attrStart])
	if expected != val {
		return &DecodeErr{
			Kind:   FingerprintMismatch,
			Reason: fmt.Sprintf("FINGERPRINT %x does not match recomputed %x", val, expected),
		}
	}

	return nil
}
