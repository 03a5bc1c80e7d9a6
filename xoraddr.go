// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package stun

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/pion/transport/v3/utils/xor"
)

const (
	familyIPv4 uint16 = 0x01
	familyIPv6 uint16 = 0x02
)

// XORMappedAddress represents the XOR-MAPPED-ADDRESS attribute: a
// transport address obfuscated by XORing it with the magic cookie (and,
// for IPv6, the transaction id too), so that NATs rewriting addresses in
// flight can't accidentally mangle the attribute value.
//
// RFC 8489 Section 14.2.
type XORMappedAddress struct {
	IP   net.IP
	Port int
}

func (a XORMappedAddress) String() string {
	return net.JoinHostPort(a.IP.String(), strconv.Itoa(a.Port))
}

// isIPv4 returns true if ip with len of net.IPv6Len seems to be ipv4.
func isIPv4(ip net.IP) bool {
	// Optimized for performance. Copied from net.IP.To4.
	return isZeros(ip[0:10]) && ip[10] == 0xff && ip[11] == 0xff
}

func isZeros(p net.IP) bool {
	for i := 0; i < len(p); i++ {
		if p[i] != 0 {
			return false
		}
	}

	return true
}

// ErrBadIPLength means that len(IP) is not net.{IPv6len,IPv4len}.
var ErrBadIPLength = errors.New("invalid length of IP value")

// xorOperand builds the 16-byte XOR mask for an IPv6 XOR-MAPPED-ADDRESS:
// the 4-byte magic cookie concatenated with the enclosing message's
// 12-byte transaction id, per RFC 8489 Section 14.2 - this is a literal
// magic||transaction_id value, never a slice of the buffer being encoded.
func xorOperand(tid [TransactionIDSize]byte) []byte {
	v := make([]byte, net.IPv6len)
	bin.PutUint32(v[0:4], magicCookie)
	copy(v[4:], tid[:])

	return v
}

// AddToAs adds an XOR-MAPPED-ADDRESS-shaped value to msg as attribute attr.
func (a XORMappedAddress) AddToAs(msg *Message, attr AttrType) error {
	var (
		family = familyIPv4
		ip     = a.IP
	)
	if len(a.IP) == net.IPv6len {
		if isIPv4(ip) {
			ip = ip[12:16] // like in ip.To4()
		} else {
			family = familyIPv6
		}
	} else if len(ip) != net.IPv4len {
		return ErrBadIPLength
	}
	value := make([]byte, 4+net.IPv6len)
	value[0] = 0 // first 8 bits are reserved, zero
	bin.PutUint16(value[0:2], family)
	bin.PutUint16(value[2:4], uint16(a.Port^int(magicCookie>>16))) //nolint:gosec // bounded port
	xor.XorBytes(value[4:4+len(ip)], ip, xorOperand(msg.TransactionID))
	msg.Add(attr, value[:4+len(ip)])

	return nil
}

// AddTo adds XOR-MAPPED-ADDRESS to m. Can return ErrBadIPLength if
// len(a.IP) is invalid.
func (a XORMappedAddress) AddTo(m *Message) error {
	return a.AddToAs(m, AttrXORMappedAddress)
}

// GetFromAs decodes an XOR-MAPPED-ADDRESS-shaped value from msg attribute
// attr, unmasking it with msg's own transaction id.
func (a *XORMappedAddress) GetFromAs(msg *Message, attr AttrType) error {
	value, err := msg.Get(attr)
	if err != nil {
		return err
	}
	if len(value) <= 4 {
		return io.ErrUnexpectedEOF
	}
	if value[0] != 0 {
		return &DecodeErr{Kind: BadFormat, Reason: "address attribute's reserved byte must be zero"}
	}
	family := bin.Uint16(value[0:2])
	if family != familyIPv6 && family != familyIPv4 {
		return &DecodeErr{Kind: BadFormat, Reason: fmt.Sprintf("unknown address family %d", family)}
	}
	ipLen := net.IPv4len
	if family == familyIPv6 {
		ipLen = net.IPv6len
	}
	// Ensuring len(a.IP) == ipLen and reusing a.IP.
	if len(a.IP) < ipLen {
		a.IP = make(net.IP, ipLen)
	} else {
		a.IP = a.IP[:ipLen]
		for i := range a.IP {
			a.IP[i] = 0
		}
	}
	if len(value[4:]) != ipLen {
		return &DecodeErr{
			Kind:   BadLength,
			Reason: fmt.Sprintf("xor-mapped address value length %d does not match family", len(value[4:])),
		}
	}
	a.Port = int(bin.Uint16(value[2:4])) ^ int(magicCookie>>16)
	xor.XorBytes(a.IP, value[4:], xorOperand(msg.TransactionID))

	return nil
}

// GetFrom decodes XOR-MAPPED-ADDRESS from message, unmasking with the
// message's own transaction id. a.IP is reused if possible; be careful
// mixing IPv4 and IPv6 decodes into the same XORMappedAddress value.
func (a *XORMappedAddress) GetFrom(m *Message) error {
	return a.GetFromAs(m, AttrXORMappedAddress)
}
