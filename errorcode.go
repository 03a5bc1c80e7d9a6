package stun

import (
	"errors"
	"fmt"
)

// ErrorCode is the numeric STUN error code carried in ERROR-CODE, e.g.
// 401 (Unauthorized). It decomposes on the wire into a class (code/100,
// 3-6) and a number (code%100, 0-99).
type ErrorCode int

// Recommended error codes, RFC 8489 Section 17.2.
const (
	CodeTryAlternate     ErrorCode = 300
	CodeBadRequest       ErrorCode = 400
	CodeUnauthorized     ErrorCode = 401
	CodeUnknownAttribute ErrorCode = 420
	CodeStaleNonce       ErrorCode = 438
	CodeRoleConflict     ErrorCode = 478
	CodeServerError      ErrorCode = 500
)

// Reason returns the recommended reason phrase for c.
func (c ErrorCode) Reason() string {
	switch c {
	case CodeTryAlternate:
		return "Try Alternate"
	case CodeBadRequest:
		return "Bad Request"
	case CodeUnauthorized:
		return "Unauthorized"
	case CodeUnknownAttribute:
		return "Unknown Attribute"
	case CodeStaleNonce:
		return "Stale Nonce"
	case CodeServerError:
		return "Server Error"
	case CodeRoleConflict:
		return "Role Conflict"
	default:
		return "Unknown Error"
	}
}

// ErrErrorCodeClassRange means an ErrorCode's class digit (code/100) is
// outside the [3,6] range ERROR-CODE reserves.
var ErrErrorCodeClassRange = errors.New("ERROR-CODE class must be in [3,6]")

// ErrorCodeAttribute represents the ERROR-CODE attribute: a 4-byte header
// (top 21 bits reserved and zero, then a 3-bit class and an 8-bit number)
// followed by a UTF-8 reason phrase.
//
// RFC 8489 Section 14.8. The reserved bits and the reason-phrase slice
// bounds are easy to get wrong: the value after the 4-byte header is
// exactly len(Reason) bytes, not a slice computed from the attribute's
// total declared length.
type ErrorCodeAttribute struct {
	Code   ErrorCode
	Reason []byte
}

// AddTo adds ERROR-CODE to message.
func (c ErrorCodeAttribute) AddTo(m *Message) error {
	class := int(c.Code) / 100
	number := int(c.Code) % 100
	if class < 3 || class > 6 {
		return ErrErrorCodeClassRange
	}

	v := make([]byte, 4+len(c.Reason))
	// First 21 bits are reserved and must be zero; v[0:3] covers them
	// along with the low 3 bits of the class, so only v[2] and v[3] carry
	// real content.
	v[0], v[1] = 0, 0
	v[2] = byte(class) //nolint:gosec // class is in [3,6]
	v[3] = byte(number) //nolint:gosec // number is in [0,99]
	copy(v[4:], c.Reason)
	m.Add(AttrErrorCode, v)

	return nil
}

// GetFrom decodes ERROR-CODE from message.
func (c *ErrorCodeAttribute) GetFrom(m *Message) error {
	v, err := m.Get(AttrErrorCode)
	if err != nil {
		return err
	}
	if len(v) < 4 {
		return &DecodeErr{Kind: BadLength, Reason: "ERROR-CODE value shorter than its 4-byte header"}
	}
	if v[0] != 0 || v[1] != 0 || v[2]&0xF8 != 0 {
		return &DecodeErr{Kind: BadFormat, Reason: "ERROR-CODE reserved bits must be zero"}
	}
	class := int(v[2] & 0x07)
	number := int(v[3])
	if class < 3 || class > 6 {
		return &DecodeErr{Kind: BadFormat, Reason: fmt.Sprintf("ERROR-CODE class %d out of range [3,6]", class)}
	}
	reason := v[4:]
	if err := checkUTF8("ERROR-CODE reason", reason); err != nil {
		return err
	}
	c.Code = ErrorCode(class*100 + number)
	c.Reason = reason

	return nil
}
