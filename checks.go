package stun

import (
	"crypto/hmac"
	"fmt"
	"unicode/utf8"
)

// checkHMAC reports whether got and expected are equal, comparing in
// constant time so mismatches don't leak timing information.
func checkHMAC(got, expected []byte) bool {
	return hmac.Equal(got, expected)
}

// checkUTF8 returns a *DecodeErr of kind BadUTF8 if v is not valid UTF-8
// text for the named attribute.
func checkUTF8(attr string, v []byte) error {
	if !utf8.Valid(v) {
		return &DecodeErr{Kind: BadUTF8, Reason: fmt.Sprintf("%s value is not valid UTF-8", attr)}
	}

	return nil
}
