package stun

import (
	"crypto/md5"  //nolint:gosec
	"crypto/sha256"
	"fmt"
)

// PasswordAlgorithm identifies the hash used to derive a long-term key
// from username, realm, and password (RFC 8489 Section 14.12).
type PasswordAlgorithm uint16

// Defined password algorithms. No other ids carry parameters in this
// package; an algorithm value carries its own params as an opaque tail.
const (
	// AlgorithmMD5 is the default when PASSWORD-ALGORITHM is absent.
	AlgorithmMD5 PasswordAlgorithm = 0x0001
	// AlgorithmSHA256 is RFC 8489's SASLprep-free upgrade over MD5.
	AlgorithmSHA256 PasswordAlgorithm = 0x0002
)

func (a PasswordAlgorithm) String() string {
	switch a {
	case AlgorithmMD5:
		return "MD5"
	case AlgorithmSHA256:
		return "SHA256"
	default:
		return fmt.Sprintf("0x%x", uint16(a))
	}
}

// Hash returns H(b) where H is the algorithm a names.
func (a PasswordAlgorithm) Hash(b []byte) []byte {
	switch a {
	case AlgorithmSHA256:
		sum := sha256.Sum256(b)

		return sum[:]
	case AlgorithmMD5:
		fallthrough
	default:
		sum := md5.Sum(b) //nolint:gosec

		return sum[:]
	}
}

// PasswordAlgorithmAttr represents one PASSWORD-ALGORITHM value: a 2-byte
// algorithm id, a 2-byte parameter length, and that many bytes of opaque
// parameters (zero for the algorithms this package defines).
//
// RFC 8489 Section 14.12.
type PasswordAlgorithmAttr struct {
	Algorithm PasswordAlgorithm
	Params    []byte
}

// paddedSize returns the number of bytes encode writes into dst (always a
// multiple of 4; PASSWORD-ALGORITHMS packs these back to back without a
// surrounding TLV of its own).
func (p PasswordAlgorithmAttr) paddedSize() int {
	return 4 + nearestPaddedValueLength(len(p.Params))
}

func (p PasswordAlgorithmAttr) encode(dst []byte) {
	bin.PutUint16(dst[0:2], uint16(p.Algorithm))
	bin.PutUint16(dst[2:4], uint16(len(p.Params))) //nolint:gosec // params are tiny
	copy(dst[4:], p.Params)
}

func decodePasswordAlgorithm(b []byte) (PasswordAlgorithmAttr, int, error) {
	if len(b) < 4 {
		return PasswordAlgorithmAttr{}, 0, &DecodeErr{Kind: BadLength, Reason: "truncated PASSWORD-ALGORITHM entry"}
	}
	paramLen := int(bin.Uint16(b[2:4]))
	padded := nearestPaddedValueLength(paramLen)
	if len(b) < 4+padded {
		return PasswordAlgorithmAttr{}, 0, &DecodeErr{
			Kind:   BadLength,
			Reason: "PASSWORD-ALGORITHM parameter overruns attribute value",
		}
	}

	return PasswordAlgorithmAttr{
		Algorithm: PasswordAlgorithm(bin.Uint16(b[0:2])),
		Params:    append([]byte(nil), b[4:4+paramLen]...),
	}, 4 + padded, nil
}

// PasswordAlgorithms represents the PASSWORD-ALGORITHM attribute when sent
// standalone (response to a request), and the PASSWORD-ALGORITHMS
// attribute when advertising a server's supported set: both are a
// back-to-back sequence of PasswordAlgorithmAttr values, each individually
// padded to 4-byte alignment.
type PasswordAlgorithms struct {
	Algorithms []PasswordAlgorithmAttr
}

func (p PasswordAlgorithms) addToAs(m *Message, t AttrType) error {
	size := 0
	for _, a := range p.Algorithms {
		size += a.paddedSize()
	}
	buf := make([]byte, size)
	off := 0
	for _, a := range p.Algorithms {
		a.encode(buf[off:])
		off += a.paddedSize()
	}
	m.Add(t, buf)

	return nil
}

func (p *PasswordAlgorithms) getFromAs(m *Message, t AttrType) error {
	v, err := m.Get(t)
	if err != nil {
		return err
	}
	p.Algorithms = p.Algorithms[:0]
	for len(v) > 0 {
		a, n, err := decodePasswordAlgorithm(v)
		if err != nil {
			return err
		}
		p.Algorithms = append(p.Algorithms, a)
		v = v[n:]
	}

	return nil
}

// AddTo adds PASSWORD-ALGORITHM to message (single-value form, used in a
// request or a response naming the one algorithm that was used).
func (p PasswordAlgorithms) AddTo(m *Message) error {
	return p.addToAs(m, AttrPasswordAlgorithm)
}

// GetFrom decodes PASSWORD-ALGORITHM from message.
func (p *PasswordAlgorithms) GetFrom(m *Message) error {
	return p.getFromAs(m, AttrPasswordAlgorithm)
}

// PasswordAlgorithmsServer represents the server-advertised
// PASSWORD-ALGORITHMS attribute (the supported-set form).
type PasswordAlgorithmsServer PasswordAlgorithms

// AddTo adds PASSWORD-ALGORITHMS to message.
func (p PasswordAlgorithmsServer) AddTo(m *Message) error {
	return PasswordAlgorithms(p).addToAs(m, AttrPasswordAlgorithms)
}

// GetFrom decodes PASSWORD-ALGORITHMS from message.
func (p *PasswordAlgorithmsServer) GetFrom(m *Message) error {
	return (*PasswordAlgorithms)(p).getFromAs(m, AttrPasswordAlgorithms)
}
