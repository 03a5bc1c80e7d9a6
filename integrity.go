// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package stun

import (
	"crypto/hmac"
	"crypto/sha1"   //nolint:gosec
	"crypto/sha256"
	"errors"
	"fmt"
)

// credentialsSep separates username/realm/password components when
// assembling a long-term key, and username/realm for USERHASH.
const credentialsSep = ":"

// NewLongTermIntegrityMD5 returns the MESSAGE-INTEGRITY setter/checker for
// long-term credentials using the default (MD5) password algorithm.
// Username, realm, and password must be SASL-prepared by the caller.
func NewLongTermIntegrityMD5(username, realm, password string) MessageIntegrity {
	return NewLongTermIntegrity(username, realm, password, AlgorithmMD5)
}

// NewLongTermIntegrity returns the MESSAGE-INTEGRITY setter/checker for
// long-term credentials, keyed with algorithm.Hash(username:realm:password).
func NewLongTermIntegrity(username, realm, password string, algorithm PasswordAlgorithm) MessageIntegrity {
	k := username + credentialsSep + realm + credentialsSep + password

	return MessageIntegrity(algorithm.Hash([]byte(k)))
}

// NewShortTermIntegrity returns the MESSAGE-INTEGRITY setter/checker for
// short-term credentials: the raw (SASL-prepared) password is the key.
func NewShortTermIntegrity(password string) MessageIntegrity {
	return MessageIntegrity(password)
}

// MessageIntegrity represents the MESSAGE-INTEGRITY attribute: an
// HMAC-SHA1 over the message prefix ending at this attribute's own TLV
// header, keyed by the short- or long-term credential key.
//
// RFC 8489 Section 14.5.
type MessageIntegrity []byte

func (i MessageIntegrity) String() string {
	return fmt.Sprintf("KEY: 0x%x", []byte(i))
}

const messageIntegritySize = sha1.Size

// ErrFingerprintBeforeIntegrity means FINGERPRINT is already present, so
// MESSAGE-INTEGRITY (which must precede it) cannot be added.
var ErrFingerprintBeforeIntegrity = errors.New("FINGERPRINT before MESSAGE-INTEGRITY attribute")

// hmacOf returns HMAC-SHA1(key, message). A fresh hash.Hash is allocated
// per call: this codec keeps no pooled/global cryptographic state.
func hmacOf(key, message []byte) []byte {
	mac := hmac.New(sha1.New, key) //nolint:gosec
	mac.Write(message)             //nolint:errcheck,gosec

	return mac.Sum(nil)
}

// AddTo adds MESSAGE-INTEGRITY to message. It must be called after every
// attribute the MAC is meant to cover and before FINGERPRINT; RFC 8489
// Section 14.5 requires the length-before-value contract this relies on.
func (i MessageIntegrity) AddTo(msg *Message) error {
	for _, a := range msg.Attributes {
		if a.Type == AttrFingerprint {
			return ErrFingerprintBeforeIntegrity
		}
	}

	length := msg.Length
	// Pre-bump the header length field to already include this
	// attribute's TLV before hashing: the MAC must cover a prefix whose
	// declared length names its own eventual size.
	msg.Length += messageIntegritySize + attributeHeaderSize
	msg.WriteLength()
	mac := hmacOf(i, msg.Raw)
	msg.Length = length
	msg.WriteLength()

	msg.Add(AttrMessageIntegrity, mac)

	return nil
}

// ErrIntegrityMismatch means the recomputed MAC differs from the
// attribute's value.
var ErrIntegrityMismatch = errors.New("integrity check failed")

// Check recomputes MESSAGE-INTEGRITY's MAC over the prefix preceding it
// and compares in constant time.
func (i MessageIntegrity) Check(msg *Message) error {
	val, err := msg.Get(AttrMessageIntegrity)
	if err != nil {
		return err
	}

	prefix, restoreLength, err := integrityPrefix(msg, AttrMessageIntegrity, messageIntegritySize)
	if err != nil {
		return err
	}
	expected := hmacOf(i, prefix)
	restoreLength()

	if !checkHMAC(val, expected) {
		return &DecodeErr{Kind: IntegrityMismatch, Reason: "MESSAGE-INTEGRITY does not match recomputed HMAC-SHA1"}
	}

	return nil
}

// NewShortTermIntegritySHA256 returns the MESSAGE-INTEGRITY-SHA256
// setter/checker for short-term credentials.
func NewShortTermIntegritySHA256(password string) MessageIntegritySHA256 {
	return MessageIntegritySHA256(password)
}

// NewLongTermIntegritySHA256 returns the MESSAGE-INTEGRITY-SHA256
// setter/checker for long-term credentials, keyed the same way as
// NewLongTermIntegrity.
func NewLongTermIntegritySHA256(username, realm, password string, algorithm PasswordAlgorithm) MessageIntegritySHA256 {
	k := username + credentialsSep + realm + credentialsSep + password

	return MessageIntegritySHA256(algorithm.Hash([]byte(k)))
}

// MessageIntegritySHA256 represents the MESSAGE-INTEGRITY-SHA256
// attribute: same coverage rule as MessageIntegrity, HMAC-SHA256 instead.
//
// RFC 8489 Section 14.6. When both MESSAGE-INTEGRITY and
// MESSAGE-INTEGRITY-SHA256 are present, the SHA-1 attribute precedes the
// SHA-256 one, so the SHA-256 MAC also covers the SHA-1 attribute.
type MessageIntegritySHA256 []byte

const messageIntegritySHA256Size = sha256.Size

func hmacSHA256Of(key, message []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(message) //nolint:errcheck,gosec

	return mac.Sum(nil)
}

// AddTo adds MESSAGE-INTEGRITY-SHA256 to message.
func (i MessageIntegritySHA256) AddTo(msg *Message) error {
	for _, a := range msg.Attributes {
		if a.Type == AttrFingerprint {
			return ErrFingerprintBeforeIntegrity
		}
	}

	length := msg.Length
	msg.Length += messageIntegritySHA256Size + attributeHeaderSize
	msg.WriteLength()
	mac := hmacSHA256Of(i, msg.Raw)
	msg.Length = length
	msg.WriteLength()

	msg.Add(AttrMessageIntegritySHA256, mac)

	return nil
}

// Check recomputes MESSAGE-INTEGRITY-SHA256's MAC and compares in
// constant time.
func (i MessageIntegritySHA256) Check(msg *Message) error {
	val, err := msg.Get(AttrMessageIntegritySHA256)
	if err != nil {
		return err
	}

	prefix, restoreLength, err := integrityPrefix(msg, AttrMessageIntegritySHA256, messageIntegritySHA256Size)
	if err != nil {
		return err
	}
	expected := hmacSHA256Of(i, prefix)
	restoreLength()

	if !checkHMAC(val, expected) {
		return &DecodeErr{
			Kind:   IntegrityMismatch,
			Reason: "MESSAGE-INTEGRITY-SHA256 does not match recomputed HMAC-SHA256",
		}
	}

	return nil
}

// integrityPrefix returns msg.Raw sliced to end exactly at integrityType's
// TLV header (discarding that attribute, its value, and anything after
// it - invariant 5), with msg.Length temporarily rewritten to match so
// the recomputed MAC sees the same header the sender's MAC saw. The
// returned restore func must be called once the caller is done hashing.
func integrityPrefix(msg *Message, integrityType AttrType, macSize int) ([]byte, func(), error) {
	length := msg.Length
	var sizeAfter uint32
	seen := false
	for _, a := range msg.Attributes {
		if a.Type == integrityType {
			seen = true

			continue
		}
		if seen {
			sizeAfter += uint32(attributeHeaderSize + nearestPaddedValueLength(int(a.Length))) //nolint:gosec
		}
	}
	if !seen {
		return nil, nil, ErrAttributeNotFound
	}

	// Rewrite the length field to what it held when the sender computed
	// the MAC: the prefix size plus this attribute's own (pre-bumped)
	// TLV size, excluding anything after it.
	msg.Length -= sizeAfter
	msg.WriteLength()
	prefixEnd := messageHeaderSize + int(msg.Length) - attributeHeaderSize - macSize

	return msg.Raw[:prefixEnd], func() {
		msg.Length = length
		msg.WriteLength()
	}, nil
}
