package internal

import (
	"encoding/base64"
	"fmt"
	"strings"

	"gitee.com/golang-module/dongle"
	"golang.org/x/text/encoding/charmap"
)

// The gateway accepts and signs text in windows-1251 only. Every payload and
// the secret key pass through this code page before any digest is computed.

// EncodeText transforms a string into the gateway code page. A rune without
// a windows-1251 representation is rejected, not replaced: the gateway
// recomputes the checksum over the exact bytes, so a substituted character
// would produce a signature mismatch on the far end.
func EncodeText(s string) ([]byte, error) {
	b, err := charmap.Windows1251.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("text not representable in cp1251: %v", err)}
	}
	return b, nil
}

// DecodeText transforms gateway code-page bytes back into a string.
func DecodeText(b []byte) (string, error) {
	out, err := charmap.Windows1251.NewDecoder().Bytes(b)
	if err != nil {
		return "", &FormatError{Reason: "decode cp1251", Err: err}
	}
	return string(out), nil
}

// Base64Encode wraps raw bytes in standard Base64.
func Base64Encode(b []byte) string {
	return dongle.Encode.FromBytes(b).ByBase64().ToString()
}

// Base64Decode unwraps standard Base64, failing on malformed input.
func Base64Decode(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, &FormatError{Reason: "decode base64", Err: err}
	}
	return b, nil
}

// HexEncode renders bytes as uppercase two-digit hex with no separators,
// the exact format the gateway uses for signature comparison.
func HexEncode(b []byte) string {
	return strings.ToUpper(dongle.Encode.FromBytes(b).ByHex().ToString())
}
