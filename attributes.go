package stun

import "fmt"

// AttrType is the 16-bit type field of a STUN attribute TLV.
//
// Values 0x0000-0x7FFF are comprehension-required: an agent that doesn't
// recognize one MUST NOT process the message (and, for a request, MUST
// report it via UNKNOWN-ATTRIBUTES). Values 0x8000-0xFFFF are
// comprehension-optional and may be silently ignored.
//
// RFC 8489 Section 14.
type AttrType uint16

// Known attribute types, per RFC 8489 Section 14 and the subset this
// package implements.
const (
	AttrMappedAddress          AttrType = 0x0001
	AttrUsername               AttrType = 0x0006
	AttrMessageIntegrity       AttrType = 0x0008
	AttrErrorCode              AttrType = 0x0009
	AttrUnknownAttributes      AttrType = 0x000A
	AttrRealm                  AttrType = 0x0014
	AttrNonce                  AttrType = 0x0015
	AttrMessageIntegritySHA256 AttrType = 0x001C
	AttrPasswordAlgorithm      AttrType = 0x001D
	AttrUserhash               AttrType = 0x001E
	AttrXORMappedAddress       AttrType = 0x0020
	AttrPasswordAlgorithms     AttrType = 0x8002
	AttrAlternateDomain        AttrType = 0x8003
	AttrSoftware               AttrType = 0x8022
	AttrAlternateServer        AttrType = 0x8023
	AttrFingerprint            AttrType = 0x8028
)

// comprehensionOptionalBit is the top bit of the attribute type field.
const comprehensionOptionalBit = 0x8000

// Value returns the wire representation of t.
func (t AttrType) Value() uint16 {
	return uint16(t)
}

// Optional reports whether t is comprehension-optional (top bit set).
func (t AttrType) Optional() bool {
	return uint16(t)&comprehensionOptionalBit != 0
}

// Known reports whether t is one of the attribute types this package's
// registry recognizes.
func (t AttrType) Known() bool {
	switch t {
	case AttrMappedAddress, AttrUsername, AttrMessageIntegrity, AttrErrorCode,
		AttrUnknownAttributes, AttrRealm, AttrNonce, AttrMessageIntegritySHA256,
		AttrPasswordAlgorithm, AttrUserhash, AttrXORMappedAddress, AttrPasswordAlgorithms,
		AttrAlternateDomain, AttrSoftware, AttrAlternateServer, AttrFingerprint:
		return true
	default:
		return false
	}
}

//nolint:cyclop
func (t AttrType) String() string {
	switch t {
	case AttrMappedAddress:
		return "MAPPED-ADDRESS"
	case AttrUsername:
		return "USERNAME"
	case AttrMessageIntegrity:
		return "MESSAGE-INTEGRITY"
	case AttrErrorCode:
		return "ERROR-CODE"
	case AttrUnknownAttributes:
		return "UNKNOWN-ATTRIBUTES"
	case AttrRealm:
		return "REALM"
	case AttrNonce:
		return "NONCE"
	case AttrMessageIntegritySHA256:
		return "MESSAGE-INTEGRITY-SHA256"
	case AttrPasswordAlgorithm:
		return "PASSWORD-ALGORITHM"
	case AttrUserhash:
		return "USERHASH"
	case AttrXORMappedAddress:
		return "XOR-MAPPED-ADDRESS"
	case AttrPasswordAlgorithms:
		return "PASSWORD-ALGORITHMS"
	case AttrAlternateDomain:
		return "ALTERNATE-DOMAIN"
	case AttrSoftware:
		return "SOFTWARE"
	case AttrAlternateServer:
		return "ALTERNATE-SERVER"
	case AttrFingerprint:
		return "FINGERPRINT"
	default:
		return fmt.Sprintf("0x%x", uint16(t))
	}
}

// RawAttribute is the decoded TLV framing of one attribute: its type,
// declared value length, and a slice of the value bytes (never including
// padding). Decoding it further into a typed attribute is the job of
// that attribute's Getter.
type RawAttribute struct {
	Type   AttrType
	Length uint16
	Value  []byte
}

// Equal reports whether a and b carry the same type and value bytes.
func (a RawAttribute) Equal(b RawAttribute) bool {
	if a.Type != b.Type {
		return false
	}
	if a.Length != b.Length {
		return false
	}

	if len(a.Value) != len(b.Value) {
		return false
	}
	for i, v := range a.Value {
		if v != b.Value[i] {
			return false
		}
	}

	return true
}

// Attributes is an ordered collection of the raw attributes of a
// Message, in wire order.
type Attributes []RawAttribute

// Get returns the first attribute of type t, if present.
func (a Attributes) Get(t AttrType) (RawAttribute, bool) {
	for _, candidate := range a {
		if candidate.Type == t {
			return candidate, true
		}
	}

	return RawAttribute{}, false
}

// GetAll returns every attribute of type t, in wire order.
func (a Attributes) GetAll(t AttrType) []RawAttribute {
	var out []RawAttribute
	for _, candidate := range a {
		if candidate.Type == t {
			out = append(out, candidate)
		}
	}

	return out
}
