package stun

import "fmt"

// Error is the type for constant errors in this package.
//
// See http://dave.cheney.net/2016/04/07/constant-errors for more info.
type Error string

func (e Error) Error() string {
	return string(e)
}

// ErrAttributeNotFound is returned by a Getter when the message carries
// no attribute of the requested type.
const ErrAttributeNotFound Error = "attribute not found"

// Kind classifies why Decode (or a Getter it drives) rejected a message.
type Kind int

// Decode error kinds.
const (
	// BadLength covers: length not 4-byte aligned, declared length
	// exceeds buffer, attribute walk overshoots the declared length. A
	// buffer shorter than 20 bytes is not reported as BadLength: Decode
	// returns the sentinel ErrUnexpectedHeaderEOF for it.
	BadLength Kind = iota
	// BadFormat covers: top two bits of the type field nonzero,
	// reserved byte in an address attribute nonzero.
	BadFormat
	// BadMagic: magic cookie does not equal 0x2112A442.
	BadMagic
	// UnknownClass: class value does not map to a known class.
	UnknownClass
	// UnknownMethod: method value does not map to a known method.
	UnknownMethod
	// UnknownComprehensionRequiredAttribute: a comprehension-required
	// attribute type (top bit clear) was not in the registry.
	UnknownComprehensionRequiredAttribute
	// IntegrityMismatch: recomputed MAC differs from the attribute value.
	IntegrityMismatch
	// FingerprintMismatch: recomputed CRC differs from the attribute value.
	FingerprintMismatch
	// BadUTF8: a textual attribute contains invalid UTF-8.
	BadUTF8
)

func (k Kind) String() string {
	switch k {
	case BadLength:
		return "BadLength"
	case BadFormat:
		return "BadFormat"
	case BadMagic:
		return "BadMagic"
	case UnknownClass:
		return "UnknownClass"
	case UnknownMethod:
		return "UnknownMethod"
	case UnknownComprehensionRequiredAttribute:
		return "UnknownComprehensionRequiredAttribute"
	case IntegrityMismatch:
		return "IntegrityMismatch"
	case FingerprintMismatch:
		return "FingerprintMismatch"
	case BadUTF8:
		return "BadUtf8"
	default:
		return "Unknown"
	}
}

// DecodeErr is a classified decode failure with a human-readable reason.
// The codec never panics; every rejection is returned as a *DecodeErr (or
// the sentinel ErrUnexpectedHeaderEOF for a short buffer).
type DecodeErr struct {
	Kind   Kind
	Reason string
}

func (e *DecodeErr) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Is reports whether target is a *DecodeErr of the same Kind as e, for
// use with errors.Is.
func (e *DecodeErr) Is(target error) bool {
	other, ok := target.(*DecodeErr) //nolint:errorlint
	if !ok {
		return false
	}

	return e.Kind == other.Kind
}
