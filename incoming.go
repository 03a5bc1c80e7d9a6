package stun

import "fmt"

// IncomingMessage is the structured result of decoding a byte slice: the
// source buffer is copied once during decode and not retained (the
// wrapped Message owns its own buffer).
//
// RFC 8489 Section 6.
type IncomingMessage struct {
	Class         MessageClass
	Method        Method
	TransactionID [TransactionIDSize]byte

	Software        *Software
	FingerprintSeen bool
	Auth            AuthenticationView

	// MappedAddress/XORMappedAddress/AlternateServer/ErrorCode are
	// decoded lazily by the caller via the Message accessor below: most
	// messages carry only one or two of these, and eagerly decoding all
	// of them would mean treating "attribute absent" the same as
	// "attribute present but malformed".
	message *Message
}

// Message returns the underlying decoded Message, for attribute types
// IncomingMessage doesn't surface directly (e.g. MappedAddress) and for
// passing to VerifyShortTerm/VerifyLongTerm.
func (in *IncomingMessage) Message() *Message {
	return in.message
}

// Unknown returns the comprehension-required attribute types present in
// the message that this package's registry doesn't recognize - the set
// to echo back in an error response's UNKNOWN-ATTRIBUTES (RFC 8489
// Section 7.3.1). Attributes after MESSAGE-INTEGRITY other than
// MESSAGE-INTEGRITY-SHA256 and FINGERPRINT are excluded, per RFC 8489
// Section 14.5-14.6: they fall outside the MAC's coverage and a receiver
// must not act on them.
func (in *IncomingMessage) Unknown() UnknownAttributes {
	var out UnknownAttributes
	for _, a := range authenticatedAttributes(in.message) {
		if !a.Type.Optional() && !a.Type.Known() {
			out = append(out, a.Type)
		}
	}

	return out
}

// Decode parses b into an IncomingMessage: wire-framing validation
// (Message.Decode), then classification and decode of the attributes
// this package knows how to interpret. Attributes after MESSAGE-INTEGRITY
// other than MESSAGE-INTEGRITY-SHA256 and FINGERPRINT are available via
// Message() but excluded from Auth/Unknown, per RFC 8489 Section
// 14.5-14.6 - the caller authenticating a request should not trust
// anything past the MAC.
func Decode(b []byte) (*IncomingMessage, error) {
	m := new(Message)
	if _, err := m.Write(b); err != nil {
		return nil, err
	}
	if !m.Type.Class.Known() {
		return nil, &DecodeErr{Kind: UnknownClass, Reason: fmt.Sprintf("0x%x is not a known message class", byte(m.Type.Class))}
	}
	if !m.Type.Method.Known() {
		return nil, &DecodeErr{Kind: UnknownMethod, Reason: fmt.Sprintf("0x%x is not a known method", uint16(m.Type.Method))}
	}

	in := &IncomingMessage{
		Class:         m.Type.Class,
		Method:        m.Type.Method,
		TransactionID: m.TransactionID,
		message:       m,
	}

	if _, ok := m.Attributes.Get(AttrSoftware); ok {
		var s Software
		if err := s.GetFrom(m); err != nil {
			return nil, err
		}
		in.Software = &s
	}
	_, in.FingerprintSeen = m.Attributes.Get(AttrFingerprint)

	auth, err := authenticationViewFrom(m)
	if err != nil {
		return nil, err
	}
	in.Auth = auth

	return in, nil
}
